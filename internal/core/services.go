package core

import (
	"path/filepath"

	"github.com/edvin/snapback/internal/config"
	"github.com/edvin/snapback/internal/model"
)

// Services bundles the two orchestrators for wiring into the API and the
// scheduler.
type Services struct {
	Backup  *BackupService
	Restore *RestoreService
}

// NewServices wires the orchestrators from configuration and their
// shared collaborators. Restore staging lives next to the backup
// working directory.
func NewServices(cfg *config.Config, backupLogs, restoreLogs ChannelLogger,
	store RecordStore, drive Drive, mongo MongoTool, archiver Archiver) *Services {

	targets := []BackupTarget{
		{Environment: model.EnvironmentProduction, DBName: cfg.ProductionDBName, MongoURI: cfg.MongoURIProduction},
		{Environment: model.EnvironmentDevelopment, DBName: cfg.DevelopmentDBName, MongoURI: cfg.MongoURIDevelopment},
	}

	return &Services{
		Backup: NewBackupService(backupLogs, store, drive, mongo, archiver,
			cfg.BackupDir, cfg.SaveToRemote, cfg.DriveRootFolderID, targets),
		Restore: NewRestoreService(restoreLogs, store, drive, mongo, archiver,
			filepath.Join(cfg.BackupDir, "staging")),
	}
}
