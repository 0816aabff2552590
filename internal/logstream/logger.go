package logstream

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/snapback/internal/model"
	"github.com/edvin/snapback/internal/platform"
)

// Logger publishes orchestrator progress: one structured call emits both a
// zerolog line and a live channel entry tagged with the caller's correlation
// id. A failed channel append is logged and swallowed; observability must
// not fail the run.
type Logger struct {
	zl      zerolog.Logger
	stream  Stream
	channel string
	source  string
}

// NewLogger binds a publisher to one channel and producing component.
func NewLogger(zl zerolog.Logger, stream Stream, channel, source string) *Logger {
	return &Logger{
		zl:      zl.With().Str("channel", channel).Str("source", source).Logger(),
		stream:  stream,
		channel: channel,
		source:  source,
	}
}

func (l *Logger) Debug(ctx context.Context, msg string) { l.emit(ctx, model.LogLevelDebug, msg) }
func (l *Logger) Info(ctx context.Context, msg string)  { l.emit(ctx, model.LogLevelInfo, msg) }
func (l *Logger) Warning(ctx context.Context, msg string) {
	l.emit(ctx, model.LogLevelWarning, msg)
}
func (l *Logger) Error(ctx context.Context, msg string) { l.emit(ctx, model.LogLevelError, msg) }

func (l *Logger) emit(ctx context.Context, level, msg string) {
	requestID := platform.RequestID(ctx)

	var ev *zerolog.Event
	switch level {
	case model.LogLevelDebug:
		ev = l.zl.Debug()
	case model.LogLevelWarning:
		ev = l.zl.Warn()
	case model.LogLevelError:
		ev = l.zl.Error()
	default:
		ev = l.zl.Info()
	}
	ev.Str("request_id", requestID).Msg(msg)

	err := l.stream.Append(ctx, l.channel, model.LogEntry{
		Channel:   l.channel,
		Level:     level,
		Message:   msg,
		RequestID: requestID,
		Source:    l.source,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		l.zl.Error().Err(err).Msg("failed to append to log channel")
	}
}
