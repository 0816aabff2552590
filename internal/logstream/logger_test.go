package logstream

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/snapback/internal/model"
	"github.com/edvin/snapback/internal/platform"
)

func TestLoggerAppendsTaggedEntry(t *testing.T) {
	stream := NewMemoryStream()
	logger := NewLogger(zerolog.Nop(), stream, model.LogChannelBackup, "backup-service")

	ctx := platform.WithRequestID(context.Background(), "req-1")
	logger.Info(ctx, "Starting backup for production database: AIAPP")

	entries, _, err := stream.Read(context.Background(), model.LogChannelBackup, CursorBegin, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, model.LogChannelBackup, e.Channel)
	assert.Equal(t, model.LogLevelInfo, e.Level)
	assert.Equal(t, "Starting backup for production database: AIAPP", e.Message)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "backup-service", e.Source)
	assert.WithinDuration(t, time.Now().UTC(), e.Timestamp, 5*time.Second)
}

func TestLoggerEmitsEveryLevel(t *testing.T) {
	stream := NewMemoryStream()
	logger := NewLogger(zerolog.Nop(), stream, model.LogChannelRestore, "restore-service")
	ctx := context.Background()

	logger.Debug(ctx, "resolving record")
	logger.Warning(ctx, "skipping collection")
	logger.Error(ctx, "mongorestore failed")

	entries, _, err := stream.Read(ctx, model.LogChannelRestore, CursorBegin, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, model.LogLevelDebug, entries[0].Level)
	assert.Equal(t, model.LogLevelWarning, entries[1].Level)
	assert.Equal(t, model.LogLevelError, entries[2].Level)
	for _, e := range entries {
		assert.Equal(t, "restore-service", e.Source)
	}
}

func TestLoggerWithoutCorrelationID(t *testing.T) {
	stream := NewMemoryStream()
	logger := NewLogger(zerolog.Nop(), stream, model.LogChannelBackup, "backup-service")

	logger.Info(context.Background(), "scheduled run starting")

	entries, _, err := stream.Read(context.Background(), model.LogChannelBackup, CursorBegin, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, platform.NoRequestID, entries[0].RequestID)
}
