package model

import "time"

// Log levels carried on live log entries.
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log channels the orchestrators publish into.
const (
	LogChannelBackup  = "backup"
	LogChannelRestore = "restore"
)

// LogEntry is one observational entry on a live log channel. Entries are
// transient: the channel buffer owns them and evicts the oldest past
// capacity.
type LogEntry struct {
	Channel   string    `json:"channel"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}
