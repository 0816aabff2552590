package model

import "time"

// Restore status lifecycle: PENDING transitions exactly once to SUCCESS or
// FAILED.
const (
	RestoreStatusPending = "PENDING"
	RestoreStatusSuccess = "SUCCESS"
	RestoreStatusFailed  = "FAILED"
)

// RestoreRecord tracks one restore attempt against a backup. Many restores
// may reference the same backup.
type RestoreRecord struct {
	ID        string    `json:"id"`
	BackupID  string    `json:"backup_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
