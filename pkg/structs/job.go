package structs

import (
	"github.com/google/uuid"
)

// ErrorKind classifies why a job failed.
type ErrorKind string

const (
	ErrKindValidation      ErrorKind = "validation"
	ErrKindDatasetNotFound ErrorKind = "dataset_not_found"
	ErrKindStorage         ErrorKind = "storage_unavailable"
	ErrKindAnalysis        ErrorKind = "analysis"
	ErrKindTimeout         ErrorKind = "timeout"
	ErrKindInternal        ErrorKind = "internal"
)

// JobPayload is the free-form payload persisted with a terminal job row.
// Only fields relevant to the outcome are set; the rest marshal away.
type JobPayload struct {
	FolderID   string `json:"folder_id,omitempty"`
	ScenarioID string `json:"scenario_id,omitempty"`

	// success
	ResultDatasetID string `json:"result_dataset_id,omitempty"`
	RowCount        int64  `json:"row_count,omitempty"`

	// save_results=false: a time-bounded download reference instead
	DownloadURL       string `json:"download_url,omitempty"`
	DownloadExpiresAt string `json:"download_expires_at,omitempty"`

	// failure
	ErrorMessage string    `json:"error_message,omitempty"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
}

// Job is the durable record of a completed job. Written exactly once, at
// the terminal transition, and never updated afterward.
type Job struct {
	ID      uuid.UUID  `json:"id"`
	OwnerID uuid.UUID  `json:"owner_id"`
	Tool    string     `json:"tool"`
	Status  Status     `json:"status"`
	Payload JobPayload `json:"payload"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Outcome is what the runner hands to the tracker's complete() and what
// the job.completed / job.failed events carry.
type Outcome struct {
	JobID   uuid.UUID  `json:"job_id"`
	OwnerID uuid.UUID  `json:"owner_id"`
	Tool    string     `json:"tool"`
	Status  Status     `json:"status"` // SUCCESSFUL, FAILED or DISMISSED
	Payload JobPayload `json:"payload"`
}

// ResultRef points a caller at the output of a successful job.
type ResultRef struct {
	DatasetID string `json:"id"`
	Href      string `json:"href"`
	MediaType string `json:"media_type"`
}
