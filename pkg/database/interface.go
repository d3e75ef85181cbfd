package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/mapgrid/lakeproc/pkg/structs"
)

// Database is the durable store of record.
//
// Job rows are written exactly once at the terminal transition and are
// immutable afterward; InsertJob is idempotent so the tracker's
// complete() can be retried safely.
type Database interface {
	// InsertJob writes a terminal job row. Returns false if a row with
	// the same id already existed (the insert was a no-op).
	InsertJob(ctx context.Context, j *structs.Job) (bool, error)

	// Job returns a single job row, or errors.ErrNoSuchJob.
	Job(ctx context.Context, id uuid.UUID) (*structs.Job, error)

	// Jobs returns job rows matching the given query.
	Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error)

	// InsertDataset writes a dataset metadata record.
	InsertDataset(ctx context.Context, d *structs.Dataset) error

	// Dataset returns a dataset metadata record owned by the given
	// owner, or errors.ErrDatasetNotFound.
	Dataset(ctx context.Context, owner, id uuid.UUID) (*structs.Dataset, error)

	// DeleteDataset removes a dataset metadata record.
	DeleteDataset(ctx context.Context, owner, id uuid.UUID) error

	// OwnsDataset reports whether the given owner owns the dataset.
	OwnsDataset(ctx context.Context, owner, id uuid.UUID) (bool, error)

	Close() error
}
