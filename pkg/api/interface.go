package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mapgrid/lakeproc/pkg/lake"
	"github.com/mapgrid/lakeproc/pkg/structs"
)

// API represents the functions lakeproc servers should expose.
type API interface {
	// Implemented in pkg/api.Service

	// Submit validates a job request and accepts it for execution.
	// Submission never blocks on execution.
	Submit(processID string, args map[string]interface{}) (*structs.StatusInfo, error)

	// Status reports a job's current status, whichever store it
	// currently lives in.
	Status(jobID string) (*structs.StatusInfo, error)

	// Results returns the result reference of a successful job.
	Results(jobID string) (*structs.ResultRef, error)

	// Jobs lists in-flight jobs matching the query, newest first.
	Jobs(q *structs.Query) ([]*structs.StatusInfo, error)

	// Dismiss cancels a non-terminal job. Dismissing a terminal job is
	// a no-op returning its (unchanged) status.
	Dismiss(jobID string) (*structs.StatusInfo, error)

	// Processes lists the registered tool names.
	Processes() []string
}

type Server interface {
	ServeForever(api API) error
	Close() error
}

// Lake is what the runner needs from the dataset store; satisfied by
// lake.Service.
type Lake interface {
	Export(ctx context.Context, owner, dataset uuid.UUID, filter string, scenario *uuid.UUID, outPath string) error
	Ingest(ctx context.Context, owner, dataset uuid.UUID, parquetPath string) (*lake.TableInfo, error)
	DropTable(ctx context.Context, owner, dataset uuid.UUID) error
	ClassBreaks(ctx context.Context, owner, dataset uuid.UUID, column string, classes int) ([]float64, error)
}

// Events is notified when jobs reach a terminal state. Notification is
// best effort and happens after the terminal row is durable.
type Events interface {
	JobCompleted(out *structs.Outcome)
	JobFailed(out *structs.Outcome)
}

// ResultSigner produces time-bounded download references for job
// outputs that aren't persisted as datasets.
type ResultSigner interface {
	// Sign stashes the file and returns a URL that grants access to it
	// until the returned expiry.
	Sign(jobID, path string) (url string, expires time.Time, err error)
}
