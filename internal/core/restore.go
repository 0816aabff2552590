package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edvin/snapback/internal/archive"
	"github.com/edvin/snapback/internal/metrics"
	"github.com/edvin/snapback/internal/model"
	"github.com/edvin/snapback/internal/mongotool"
	"github.com/edvin/snapback/internal/platform"
)

// RestoreService coordinates one backup's restore: locate, download,
// extract, full or per-collection restore, record, cleanup. The restore
// record always reaches a terminal status before the error surfaces.
type RestoreService struct {
	logs     ChannelLogger
	store    RecordStore
	drive    Drive
	mongo    MongoTool
	archiver Archiver

	stagingDir string
}

// NewRestoreService creates a restore orchestrator staging downloads
// under stagingDir.
func NewRestoreService(logs ChannelLogger, store RecordStore, drive Drive, mongo MongoTool, archiver Archiver, stagingDir string) *RestoreService {
	return &RestoreService{
		logs:       logs,
		store:      store,
		drive:      drive,
		mongo:      mongo,
		archiver:   archiver,
		stagingDir: stagingDir,
	}
}

// RestoreParams describes one restore run. An empty Collections list
// restores the full database; otherwise each named collection is
// restored individually, skipping any without a dump file.
type RestoreParams struct {
	BackupID    string
	MongoURI    string
	Collections []string
}

// RestoreOne runs the full restore pipeline for one backup. The restore
// record transitions exactly once, to SUCCESS or FAILED; on failure the
// original error is re-raised after the record is marked.
func (s *RestoreService) RestoreOne(ctx context.Context, p RestoreParams) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveRestore(err, started) }()

	rec := &model.RestoreRecord{
		ID:        platform.NewID(),
		BackupID:  p.BackupID,
		Status:    model.RestoreStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.store.CreateRestoreRecord(ctx, rec); err != nil {
		s.logs.Error(ctx, err.Error())
		return err
	}

	if err = s.run(ctx, p); err != nil {
		s.logs.Error(ctx, err.Error())
		if ferr := s.store.FinishRestore(ctx, rec.ID, model.RestoreStatusFailed); ferr != nil {
			s.logs.Error(ctx, fmt.Sprintf("mark restore %s failed: %v", rec.ID, ferr))
		}
		return err
	}

	if err = s.store.FinishRestore(ctx, rec.ID, model.RestoreStatusSuccess); err != nil {
		s.logs.Error(ctx, err.Error())
		return err
	}
	s.logs.Info(ctx, fmt.Sprintf("Restore completed for backup %s", p.BackupID))
	return nil
}

func (s *RestoreService) run(ctx context.Context, p RestoreParams) error {
	s.logs.Info(ctx, fmt.Sprintf("Starting restore for backup %s", p.BackupID))

	backup, err := s.store.GetBackupRecord(ctx, p.BackupID)
	if err != nil {
		return err
	}
	if backup == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p.BackupID)
	}
	if backup.DriveFileID == nil {
		return fmt.Errorf("%w: backup %s", ErrMissingStorage, p.BackupID)
	}

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging directory %s: %w", s.stagingDir, err)
	}

	// Fixed staging names per backup id; stale leftovers from an earlier
	// attempt are removed rather than failed on.
	archivePath := filepath.Join(s.stagingDir, p.BackupID+"-restore"+archive.Ext)
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale archive %s: %w", archivePath, err)
	}
	extractDir := filepath.Join(s.stagingDir, p.BackupID+"-extracted")
	if err := os.RemoveAll(extractDir); err != nil {
		return fmt.Errorf("remove stale extract directory %s: %w", extractDir, err)
	}

	if err := s.drive.Download(ctx, *backup.DriveFileID, archivePath); err != nil {
		return err
	}
	s.logs.Info(ctx, fmt.Sprintf("Downloaded archive for backup %s to %s", p.BackupID, archivePath))

	if err := s.archiver.Extract(archivePath, extractDir); err != nil {
		return err
	}
	s.logs.Info(ctx, fmt.Sprintf("Extracted archive to %s", extractDir))

	if len(p.Collections) == 0 {
		if err := s.mongo.Restore(ctx, p.MongoURI, backup.DBName, extractDir); err != nil {
			return err
		}
	} else {
		for _, collection := range p.Collections {
			bsonPath := mongotool.CollectionDumpPath(extractDir, backup.DBName, collection)
			if _, err := os.Stat(bsonPath); err != nil {
				s.logs.Warning(ctx, fmt.Sprintf("Skipping collection %s: no dump file at %s", collection, bsonPath))
				continue
			}
			if err := s.mongo.RestoreCollection(ctx, p.MongoURI, backup.DBName, collection, bsonPath); err != nil {
				return err
			}
			s.logs.Info(ctx, fmt.Sprintf("Restored collection %s", collection))
		}
	}

	s.cleanup(ctx, archivePath, extractDir)
	return nil
}

// cleanup removes staging artifacts; failures are logged and swallowed.
func (s *RestoreService) cleanup(ctx context.Context, archivePath, extractDir string) {
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		s.logs.Warning(ctx, fmt.Sprintf("cleanup: remove archive %s: %v", archivePath, err))
	}
	if err := os.RemoveAll(extractDir); err != nil {
		s.logs.Warning(ctx, fmt.Sprintf("cleanup: remove extract directory %s: %v", extractDir, err))
	}
}
