package models

import "time"

// BackupStatus values for the export job lifecycle.
type BackupStatus string

const (
	BackupStatusQueued     BackupStatus = "queued"
	BackupStatusProcessing BackupStatus = "processing"
	BackupStatusFinished   BackupStatus = "finished"
	BackupStatusFailed     BackupStatus = "failed"
)

// BackupFile is one exported table snapshot with its signed download URL.
type BackupFile struct {
	Table     string    `json:"table"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BackupJob tracks a full-database CSV export run.
type BackupJob struct {
	ID           string       `json:"id"`
	Status       BackupStatus `json:"status"`
	Files        []BackupFile `json:"files,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	CreatedBy    *string      `json:"created_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}
