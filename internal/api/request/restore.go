package request

// CreateRestore requests a restore of a prior backup. An empty collection
// list restores the full database.
type CreateRestore struct {
	BackupID    string   `json:"backup_id" validate:"required"`
	Target      string   `json:"target" validate:"required,oneof=production development"`
	Collections []string `json:"collections" validate:"omitempty,dive,required"`
}
