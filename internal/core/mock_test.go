package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/snapback/internal/model"
)

// ---------- Mock record store ----------

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBackupRecord(ctx context.Context, r *model.BackupRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockStore) SetBackupDriveLocation(ctx context.Context, id, folderID, fileID string) error {
	args := m.Called(ctx, id, folderID, fileID)
	return args.Error(0)
}

func (m *mockStore) GetBackupRecord(ctx context.Context, id string) (*model.BackupRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BackupRecord), args.Error(1)
}

func (m *mockStore) CreateRestoreRecord(ctx context.Context, r *model.RestoreRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockStore) FinishRestore(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// ---------- Mock drive ----------

type mockDrive struct {
	mock.Mock
}

func (m *mockDrive) FindOrCreateFolder(ctx context.Context, parentID, name string) (string, error) {
	args := m.Called(ctx, parentID, name)
	return args.String(0), args.Error(1)
}

func (m *mockDrive) Upload(ctx context.Context, localPath, folderID string) (string, error) {
	args := m.Called(ctx, localPath, folderID)
	return args.String(0), args.Error(1)
}

func (m *mockDrive) Download(ctx context.Context, fileID, destPath string) error {
	args := m.Called(ctx, fileID, destPath)
	return args.Error(0)
}

// ---------- Mock mongo tool ----------

type mockMongo struct {
	mock.Mock
}

func (m *mockMongo) Dump(ctx context.Context, uri, dbName, outDir string) error {
	args := m.Called(ctx, uri, dbName, outDir)
	return args.Error(0)
}

func (m *mockMongo) Restore(ctx context.Context, uri, dbName, dumpDir string) error {
	args := m.Called(ctx, uri, dbName, dumpDir)
	return args.Error(0)
}

func (m *mockMongo) RestoreCollection(ctx context.Context, uri, dbName, collection, bsonPath string) error {
	args := m.Called(ctx, uri, dbName, collection, bsonPath)
	return args.Error(0)
}

// ---------- Mock archiver ----------

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Archive(sourceDir string) (string, error) {
	args := m.Called(sourceDir)
	return args.String(0), args.Error(1)
}

func (m *mockArchiver) Extract(archivePath, destDir string) error {
	args := m.Called(archivePath, destDir)
	return args.Error(0)
}

// ---------- Capturing channel logger ----------

type captureLogs struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogs) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf("%s: %s", level, msg))
}

func (l *captureLogs) Debug(_ context.Context, msg string)   { l.log(model.LogLevelDebug, msg) }
func (l *captureLogs) Info(_ context.Context, msg string)    { l.log(model.LogLevelInfo, msg) }
func (l *captureLogs) Warning(_ context.Context, msg string) { l.log(model.LogLevelWarning, msg) }
func (l *captureLogs) Error(_ context.Context, msg string)   { l.log(model.LogLevelError, msg) }

func (l *captureLogs) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
