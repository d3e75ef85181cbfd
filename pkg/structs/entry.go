package structs

import (
	"time"
)

// Entry is the time-bounded projection of an in-flight job held in the
// ephemeral store. It only ever carries the two non-terminal statuses;
// terminal state lives in the durable store.
type Entry struct {
	JobID     string `json:"job_id"`
	OwnerID   string `json:"owner_id"`
	ProcessID string `json:"process_id"` // tool name
	Status    Status `json:"status"`     // ACCEPTED or RUNNING

	Message  string `json:"message,omitempty"`
	Progress *int   `json:"progress,omitempty"` // 0-100

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	// QueueTaskID is the id the queue returned on Enqueue; kept so a
	// dismiss can Kill() the in-flight task.
	QueueTaskID string `json:"queue_task_id,omitempty"`
}

// Link is an OGC API link object.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
}

// StatusInfo is the OGC API Processes StatusInfo document returned by
// GET /jobs/{id}. It is built from either store.
type StatusInfo struct {
	ProcessID string `json:"processID"`
	Type      string `json:"type"` // always "process"
	JobID     string `json:"jobID"`
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
	Created   string `json:"created,omitempty"`
	Updated   string `json:"updated,omitempty"`
	Progress  *int   `json:"progress,omitempty"`
	Links     []Link `json:"links,omitempty"`
}
