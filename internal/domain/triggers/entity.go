package triggers

import "time"

// Status of one trigger
type Status string

const (
	StatusQueued      Status = "queued"
	StatusSuccess     Status = "success"
	StatusFailed      Status = "failed"
	StatusRemoteError Status = "remote_error"
	StatusSuperseded  Status = "superseded"
)

// Trigger is the operational record of one analysis run. It never carries
// response bodies or file content.
type Trigger struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	AnalysisID string    `json:"analysis_id"`
	Status     Status    `json:"status"`
	Message    string    `json:"message,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
