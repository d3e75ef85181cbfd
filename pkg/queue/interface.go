package queue

import (
	"context"
	"time"
)

// Task is one queued job execution: which tool to run and the raw
// derived arguments it was submitted with.
type Task struct {
	JobID string                 `json:"job_id"`
	Tool  string                 `json:"tool"`
	Args  map[string]interface{} `json:"args"`
}

type Queue interface {
	// Register a handler for a tool's tasks. The handler owns the full
	// job lifecycle; returning an error here does not retry the task.
	Register(tool string, handler func(ctx context.Context, t *Task) error) error

	// Run the queue & process tasks (via Register funcs). This should block until Close() is called.
	Run() error

	// Enqueue a task; the deadline bounds its execution. Returns a
	// unique id for the queued task with which we can call
	// Kill(the-given-id) to stop the task from running.
	Enqueue(t *Task, timeout time.Duration) (string, error)

	// Kill a queued task with ID given to us by Enqueue.
	Kill(queuedTaskID string) error

	// Close & shutdown the queue.
	Close() error
}
