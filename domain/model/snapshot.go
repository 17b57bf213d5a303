package model

import "time"

// Snapshot is the outcome of one pipeline run.
type Snapshot struct {
	RunID    string           `json:"run_id"`
	Date     string           `json:"date"`
	Platform string           `json:"platform"`
	Path     string           `json:"path"`
	Records  []StandardRecord `json:"records"`
	TakenAt  time.Time        `json:"taken_at"`
}
