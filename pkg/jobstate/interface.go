package jobstate

import (
	"context"

	"github.com/mapgrid/lakeproc/pkg/structs"
)

// Store holds ephemeral entries for in-flight jobs. Entries are created
// at submission, updated during execution and deleted exactly once, at
// the instant the durable terminal row is written. A TTL bounds the life
// of entries whose jobs never complete.
type Store interface {
	// Create writes a new entry. Fails with errors.ErrJobExists if the
	// job id is reused.
	Create(ctx context.Context, e *structs.Entry) error

	// Update applies fn to the stored entry and writes it back.
	// Fails with errors.ErrNoSuchJob if the entry is gone (ie. the job
	// already reached a terminal state).
	Update(ctx context.Context, jobID string, fn func(*structs.Entry)) (*structs.Entry, error)

	// Get returns the entry, or errors.ErrNoSuchJob.
	Get(ctx context.Context, jobID string) (*structs.Entry, error)

	// Delete removes the entry; returns false if it wasn't present.
	Delete(ctx context.Context, jobID string) (bool, error)

	// List returns entries matching the query, newest first.
	List(ctx context.Context, q *structs.Query) ([]*structs.Entry, error)

	Close() error
}
