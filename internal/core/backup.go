package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edvin/snapback/internal/drive"
	"github.com/edvin/snapback/internal/metrics"
	"github.com/edvin/snapback/internal/model"
	"github.com/edvin/snapback/internal/platform"
)

// BackupTarget is one database covered by the daily run.
type BackupTarget struct {
	Environment string
	DBName      string
	MongoURI    string
}

// BackupService coordinates one database's backup: dump, archive,
// optional upload, record, cleanup. Steps run in order with no retries;
// a failed run leaves its record in whatever partial state it reached.
type BackupService struct {
	logs     ChannelLogger
	store    RecordStore
	drive    Drive
	mongo    MongoTool
	archiver Archiver

	baseDir      string
	saveToRemote bool
	rootFolderID string
	targets      []BackupTarget
}

// NewBackupService creates a backup orchestrator. The targets are backed
// up in order by RunDaily; sequential on purpose, to bound concurrent
// load on the source databases and the remote store.
func NewBackupService(logs ChannelLogger, store RecordStore, drive Drive, mongo MongoTool, archiver Archiver,
	baseDir string, saveToRemote bool, rootFolderID string, targets []BackupTarget) *BackupService {
	return &BackupService{
		logs:         logs,
		store:        store,
		drive:        drive,
		mongo:        mongo,
		archiver:     archiver,
		baseDir:      baseDir,
		saveToRemote: saveToRemote,
		rootFolderID: rootFolderID,
		targets:      targets,
	}
}

// BackupParams describes one backup run.
type BackupParams struct {
	Environment  string
	DBName       string
	MongoURI     string
	DestDir      string
	SaveToRemote bool
	RootFolderID string
	DateLabel    string
	IsManual     bool
}

// BackupOne runs the full pipeline for a single database. Any step's
// failure is logged, observed in metrics, and propagated to the caller.
func (s *BackupService) BackupOne(ctx context.Context, p BackupParams) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveBackup(p.Environment, err, started) }()

	s.logs.Info(ctx, fmt.Sprintf("Starting backup for %s database: %s", strings.ToLower(p.Environment), p.DBName))

	if p.SaveToRemote && p.RootFolderID == "" {
		err = fmt.Errorf("%w: remote root folder id is not set", ErrConfig)
		s.logs.Error(ctx, err.Error())
		return err
	}

	triggeredBy := model.TriggeredByCron
	if p.IsManual {
		triggeredBy = model.TriggeredByManual
	}
	rec := &model.BackupRecord{
		ID:          platform.NewID(),
		Environment: p.Environment,
		TriggeredBy: triggeredBy,
		DBName:      p.DBName,
		CreatedAt:   time.Now().UTC(),
	}
	if !p.SaveToRemote {
		dest := p.DestDir
		rec.LocalPath = &dest
	}
	if err = s.store.CreateBackupRecord(ctx, rec); err != nil {
		s.logs.Error(ctx, err.Error())
		return err
	}

	if err = os.MkdirAll(p.DestDir, 0o755); err != nil {
		err = fmt.Errorf("create backup directory %s: %w", p.DestDir, err)
		s.logs.Error(ctx, err.Error())
		return err
	}

	if err = s.mongo.Dump(ctx, p.MongoURI, p.DBName, p.DestDir); err != nil {
		s.logs.Error(ctx, err.Error())
		return err
	}
	s.logs.Info(ctx, fmt.Sprintf("Dump finished for %s into %s", p.DBName, p.DestDir))

	var archivePath string
	archivePath, err = s.archiver.Archive(p.DestDir)
	if err != nil {
		s.logs.Error(ctx, err.Error())
		return err
	}
	s.logs.Info(ctx, fmt.Sprintf("Archive created at %s", archivePath))

	if p.SaveToRemote {
		var folderID string
		folderID, err = s.drive.FindOrCreateFolder(ctx, p.RootFolderID, p.DateLabel)
		if err != nil {
			s.logs.Error(ctx, err.Error())
			return err
		}
		if p.IsManual {
			folderID, err = s.drive.FindOrCreateFolder(ctx, folderID, drive.ManualFolderName)
			if err != nil {
				s.logs.Error(ctx, err.Error())
				return err
			}
		}

		var fileID string
		fileID, err = s.drive.Upload(ctx, archivePath, folderID)
		if err != nil {
			s.logs.Error(ctx, err.Error())
			return err
		}
		if err = s.store.SetBackupDriveLocation(ctx, rec.ID, folderID, fileID); err != nil {
			s.logs.Error(ctx, err.Error())
			return err
		}
		s.logs.Info(ctx, fmt.Sprintf("Uploaded archive for %s to remote folder %s", p.DBName, folderID))
	}

	s.cleanup(ctx, archivePath, p.DestDir, !p.SaveToRemote)

	s.logs.Info(ctx, fmt.Sprintf("Backup completed for %s database: %s", strings.ToLower(p.Environment), p.DBName))
	return nil
}

// cleanup removes the run's local artifacts. In local mode the dump
// directory is the recorded storage location and stays in place.
// Failures here never fail an otherwise-successful run.
func (s *BackupService) cleanup(ctx context.Context, archivePath, destDir string, keepDest bool) {
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		s.logs.Warning(ctx, fmt.Sprintf("cleanup: remove archive %s: %v", archivePath, err))
	}
	if keepDest {
		return
	}
	if err := os.RemoveAll(destDir); err != nil {
		s.logs.Warning(ctx, fmt.Sprintf("cleanup: remove backup directory %s: %v", destDir, err))
	}
}

// RunDaily backs up every configured target under a shared date bucket.
// Manual runs nest their output one level deeper. A failure aborts the
// remaining targets and propagates.
func (s *BackupService) RunDaily(ctx context.Context, isManual bool) error {
	dateLabel := time.Now().UTC().Format("2006-01-02")
	dayDir := filepath.Join(s.baseDir, dateLabel)
	if isManual {
		dayDir = filepath.Join(dayDir, drive.ManualFolderName)
	}

	for _, target := range s.targets {
		p := BackupParams{
			Environment:  target.Environment,
			DBName:       target.DBName,
			MongoURI:     target.MongoURI,
			DestDir:      filepath.Join(dayDir, target.DBName),
			SaveToRemote: s.saveToRemote,
			RootFolderID: s.rootFolderID,
			DateLabel:    dateLabel,
			IsManual:     isManual,
		}
		if err := s.BackupOne(ctx, p); err != nil {
			return fmt.Errorf("backup %s: %w", target.DBName, err)
		}
	}
	return nil
}
