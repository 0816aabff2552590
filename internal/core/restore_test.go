package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/snapback/internal/model"
	"github.com/edvin/snapback/internal/mongotool"
)

func remoteBackupRecord(id string) *model.BackupRecord {
	folderID, fileID := "folder-1", "file-1"
	return &model.BackupRecord{
		ID:            id,
		Environment:   model.EnvironmentProduction,
		TriggeredBy:   model.TriggeredByCron,
		DBName:        "AIAPP",
		DriveFolderID: &folderID,
		DriveFileID:   &fileID,
	}
}

func TestRestoreService_RestoreOne_FullSuccess(t *testing.T) {
	ctx := context.Background()
	logs := &captureLogs{}
	store := &mockStore{}
	drive := &mockDrive{}
	mongo := &mockMongo{}
	archiver := &mockArchiver{}

	staging := t.TempDir()

	var created *model.RestoreRecord
	store.On("CreateRestoreRecord", ctx, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.RestoreRecord) }).
		Return(nil)
	store.On("GetBackupRecord", ctx, "backup-1").Return(remoteBackupRecord("backup-1"), nil)
	store.On("FinishRestore", ctx, mock.Anything, model.RestoreStatusSuccess).Return(nil)

	drive.On("Download", ctx, "file-1", filepath.Join(staging, "backup-1-restore.tar.gz")).Return(nil)
	archiver.On("Extract", filepath.Join(staging, "backup-1-restore.tar.gz"), filepath.Join(staging, "backup-1-extracted")).Return(nil)
	mongo.On("Restore", ctx, "mongodb://localhost/AIAPP", "AIAPP", filepath.Join(staging, "backup-1-extracted")).Return(nil)

	s := NewRestoreService(logs, store, drive, mongo, archiver, staging)
	err := s.RestoreOne(ctx, RestoreParams{BackupID: "backup-1", MongoURI: "mongodb://localhost/AIAPP"})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "backup-1", created.BackupID)
	assert.Equal(t, model.RestoreStatusPending, created.Status)

	store.AssertExpectations(t)
	drive.AssertExpectations(t)
	mongo.AssertExpectations(t)
	assert.True(t, logs.contains("Restore completed for backup backup-1"))
}

func TestRestoreService_RestoreOne_BackupNotFound(t *testing.T) {
	ctx := context.Background()
	logs := &captureLogs{}
	store := &mockStore{}

	store.On("CreateRestoreRecord", ctx, mock.Anything).Return(nil)
	store.On("GetBackupRecord", ctx, "missing").Return(nil, nil)
	store.On("FinishRestore", ctx, mock.Anything, model.RestoreStatusFailed).Return(nil)

	s := NewRestoreService(logs, store, &mockDrive{}, &mockMongo{}, &mockArchiver{}, t.TempDir())
	err := s.RestoreOne(ctx, RestoreParams{BackupID: "missing", MongoURI: "mongodb://localhost/AIAPP"})
	assert.ErrorIs(t, err, ErrNotFound)
	store.AssertExpectations(t)
}

func TestRestoreService_RestoreOne_MissingRemoteStorage(t *testing.T) {
	ctx := context.Background()
	logs := &captureLogs{}
	store := &mockStore{}

	localPath := "/var/backups/snapback/2026-09-01/AIAPP"
	localOnly := &model.BackupRecord{
		ID:          "backup-1",
		Environment: model.EnvironmentProduction,
		DBName:      "AIAPP",
		LocalPath:   &localPath,
	}

	store.On("CreateRestoreRecord", ctx, mock.Anything).Return(nil)
	store.On("GetBackupRecord", ctx, "backup-1").Return(localOnly, nil)
	store.On("FinishRestore", ctx, mock.Anything, model.RestoreStatusFailed).Return(nil)

	s := NewRestoreService(logs, store, &mockDrive{}, &mockMongo{}, &mockArchiver{}, t.TempDir())
	err := s.RestoreOne(ctx, RestoreParams{BackupID: "backup-1", MongoURI: "mongodb://localhost/AIAPP"})
	assert.ErrorIs(t, err, ErrMissingStorage)
	store.AssertExpectations(t)
}

func TestRestoreService_RestoreOne_PerCollectionSkipsMissingDump(t *testing.T) {
	ctx := context.Background()
	logs := &captureLogs{}
	store := &mockStore{}
	drive := &mockDrive{}
	mongo := &mockMongo{}
	archiver := &mockArchiver{}

	staging := t.TempDir()
	extractDir := filepath.Join(staging, "backup-1-extracted")

	store.On("CreateRestoreRecord", ctx, mock.Anything).Return(nil)
	store.On("GetBackupRecord", ctx, "backup-1").Return(remoteBackupRecord("backup-1"), nil)
	store.On("FinishRestore", ctx, mock.Anything, model.RestoreStatusSuccess).Return(nil)
	drive.On("Download", ctx, "file-1", mock.Anything).Return(nil)

	// Extraction yields a dump file for users but not for orders.
	archiver.On("Extract", mock.Anything, extractDir).
		Run(func(args mock.Arguments) {
			dir := filepath.Join(extractDir, "AIAPP")
			require.NoError(t, os.MkdirAll(dir, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "users.bson"), []byte("bson"), 0o644))
		}).
		Return(nil)
	mongo.On("RestoreCollection", ctx, "mongodb://localhost/AIAPP", "AIAPP", "users",
		mongotool.CollectionDumpPath(extractDir, "AIAPP", "users")).Return(nil)

	s := NewRestoreService(logs, store, drive, mongo, archiver, staging)
	err := s.RestoreOne(ctx, RestoreParams{
		BackupID:    "backup-1",
		MongoURI:    "mongodb://localhost/AIAPP",
		Collections: []string{"users", "orders"},
	})
	require.NoError(t, err)

	mongo.AssertExpectations(t)
	mongo.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, logs.contains("Skipping collection orders"))
}

func TestRestoreService_RestoreOne_RestoreToolFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	logs := &captureLogs{}
	store := &mockStore{}
	drive := &mockDrive{}
	mongo := &mockMongo{}
	archiver := &mockArchiver{}

	store.On("CreateRestoreRecord", ctx, mock.Anything).Return(nil)
	store.On("GetBackupRecord", ctx, "backup-1").Return(remoteBackupRecord("backup-1"), nil)
	store.On("FinishRestore", ctx, mock.Anything, model.RestoreStatusFailed).Return(nil)
	drive.On("Download", ctx, "file-1", mock.Anything).Return(nil)
	archiver.On("Extract", mock.Anything, mock.Anything).Return(nil)

	toolErr := errors.New("mongorestore: exit status 1")
	mongo.On("Restore", ctx, mock.Anything, mock.Anything, mock.Anything).Return(toolErr)

	s := NewRestoreService(logs, store, drive, mongo, archiver, t.TempDir())
	err := s.RestoreOne(ctx, RestoreParams{BackupID: "backup-1", MongoURI: "mongodb://localhost/AIAPP"})
	assert.ErrorIs(t, err, toolErr)

	store.AssertExpectations(t)
	assert.True(t, logs.contains("exit status 1"))
}

func TestRestoreService_RestoreOne_DownloadFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	logs := &captureLogs{}
	store := &mockStore{}
	drive := &mockDrive{}

	store.On("CreateRestoreRecord", ctx, mock.Anything).Return(nil)
	store.On("GetBackupRecord", ctx, "backup-1").Return(remoteBackupRecord("backup-1"), nil)
	store.On("FinishRestore", ctx, mock.Anything, model.RestoreStatusFailed).Return(nil)

	dlErr := errors.New("object store unavailable")
	drive.On("Download", ctx, "file-1", mock.Anything).Return(dlErr)

	s := NewRestoreService(logs, store, drive, &mockMongo{}, &mockArchiver{}, t.TempDir())
	err := s.RestoreOne(ctx, RestoreParams{BackupID: "backup-1", MongoURI: "mongodb://localhost/AIAPP"})
	assert.ErrorIs(t, err, dlErr)
	store.AssertExpectations(t)
}
