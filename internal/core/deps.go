// Package core contains the backup and restore orchestrators: linear
// pipelines of fallible external steps, narrated through the live log
// fan-out under the run's correlation id.
package core

import (
	"context"

	"github.com/edvin/snapback/internal/model"
)

// RecordStore persists backup and restore history.
type RecordStore interface {
	CreateBackupRecord(ctx context.Context, r *model.BackupRecord) error
	SetBackupDriveLocation(ctx context.Context, id, folderID, fileID string) error
	GetBackupRecord(ctx context.Context, id string) (*model.BackupRecord, error)
	CreateRestoreRecord(ctx context.Context, r *model.RestoreRecord) error
	FinishRestore(ctx context.Context, id, status string) error
}

// Drive is the remote object store: dated folders plus streamed archive
// upload and download.
type Drive interface {
	FindOrCreateFolder(ctx context.Context, parentID, name string) (string, error)
	Upload(ctx context.Context, localPath, folderID string) (string, error)
	Download(ctx context.Context, fileID, destPath string) error
}

// MongoTool invokes the external dump and restore tools.
type MongoTool interface {
	Dump(ctx context.Context, uri, dbName, outDir string) error
	Restore(ctx context.Context, uri, dbName, dumpDir string) error
	RestoreCollection(ctx context.Context, uri, dbName, collection, bsonPath string) error
}

// Archiver compresses a dump directory into a single archive and
// extracts one back out.
type Archiver interface {
	Archive(sourceDir string) (string, error)
	Extract(archivePath, destDir string) error
}

// ChannelLogger publishes run progress to one log channel.
type ChannelLogger interface {
	Debug(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
	Warning(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}
