// Package store persists backup and restore history in PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/snapback/internal/model"
)

// DB defines the database operations used by the store.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads from and updates the backup history database.
type Store struct {
	db DB
}

// NewStore creates a new Store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// CreateBackupRecord inserts a new backup record.
func (s *Store) CreateBackupRecord(ctx context.Context, r *model.BackupRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO backup_records (id, environment, triggered_by, db_name, local_path, drive_folder_id, drive_file_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Environment, r.TriggeredBy, r.DBName, r.LocalPath, r.DriveFolderID, r.DriveFileID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create backup record: %w", err)
	}
	return nil
}

// SetBackupDriveLocation records where a backup archive landed in remote
// storage. Both ids are set together; a record never carries one without
// the other.
func (s *Store) SetBackupDriveLocation(ctx context.Context, id, folderID, fileID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE backup_records SET drive_folder_id = $1, drive_file_id = $2 WHERE id = $3`,
		folderID, fileID, id,
	)
	if err != nil {
		return fmt.Errorf("set backup drive location: %w", err)
	}
	return nil
}

// GetBackupRecord retrieves a backup record by its ID. Returns nil without
// error when no record exists.
func (s *Store) GetBackupRecord(ctx context.Context, id string) (*model.BackupRecord, error) {
	var r model.BackupRecord
	err := s.db.QueryRow(ctx,
		`SELECT id, environment, triggered_by, db_name, local_path, drive_folder_id, drive_file_id, created_at
		 FROM backup_records WHERE id = $1`, id,
	).Scan(&r.ID, &r.Environment, &r.TriggeredBy, &r.DBName, &r.LocalPath, &r.DriveFolderID, &r.DriveFileID, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get backup record by id: %w", err)
	}
	return &r, nil
}

// ListBackupRecords retrieves all backup records, newest first.
func (s *Store) ListBackupRecords(ctx context.Context) ([]model.BackupRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, environment, triggered_by, db_name, local_path, drive_folder_id, drive_file_id, created_at
		 FROM backup_records ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list backup records: %w", err)
	}
	defer rows.Close()

	var records []model.BackupRecord
	for rows.Next() {
		var r model.BackupRecord
		if err := rows.Scan(&r.ID, &r.Environment, &r.TriggeredBy, &r.DBName, &r.LocalPath, &r.DriveFolderID, &r.DriveFileID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup record row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountBackupRecords returns the total number of backup records.
func (s *Store) CountBackupRecords(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM backup_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count backup records: %w", err)
	}
	return count, nil
}

// CreateRestoreRecord inserts a new restore record in pending state.
func (s *Store) CreateRestoreRecord(ctx context.Context, r *model.RestoreRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO restore_records (id, backup_id, status, created_at)
		 VALUES ($1, $2, $3, $4)`,
		r.ID, r.BackupID, model.RestoreStatusPending, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create restore record: %w", err)
	}
	return nil
}

// FinishRestore moves a pending restore record to its terminal status.
// A record that already reached a terminal status is left untouched.
func (s *Store) FinishRestore(ctx context.Context, id, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE restore_records SET status = $1 WHERE id = $2 AND status = $3`,
		status, id, model.RestoreStatusPending,
	)
	if err != nil {
		return fmt.Errorf("finish restore %s: %w", id, err)
	}
	return nil
}

// GetRestoreRecord retrieves a restore record by its ID. Returns nil without
// error when no record exists.
func (s *Store) GetRestoreRecord(ctx context.Context, id string) (*model.RestoreRecord, error) {
	var r model.RestoreRecord
	err := s.db.QueryRow(ctx,
		`SELECT id, backup_id, status, created_at
		 FROM restore_records WHERE id = $1`, id,
	).Scan(&r.ID, &r.BackupID, &r.Status, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get restore record by id: %w", err)
	}
	return &r, nil
}
