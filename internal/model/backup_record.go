package model

import "time"

// Environment identifies which database instance a snapshot was taken from.
const (
	EnvironmentProduction  = "PRODUCTION"
	EnvironmentDevelopment = "DEVELOPMENT"
)

// Trigger source of a backup run.
const (
	TriggeredByCron   = "CRON"
	TriggeredByManual = "MANUAL"
)

// BackupRecord is the durable record of one backup attempt. Exactly one of
// LocalPath or the DriveFolderID/DriveFileID pair is set once the run
// completes successfully; a failed run leaves whatever partial state it
// reached.
type BackupRecord struct {
	ID            string    `json:"id"`
	Environment   string    `json:"environment"`
	TriggeredBy   string    `json:"triggered_by"`
	DBName        string    `json:"db_name"`
	LocalPath     *string   `json:"local_path,omitempty"`
	DriveFolderID *string   `json:"drive_folder_id,omitempty"`
	DriveFileID   *string   `json:"drive_file_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
