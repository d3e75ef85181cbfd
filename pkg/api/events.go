package api

import (
	"log"

	"github.com/mapgrid/lakeproc/pkg/structs"
)

// LogEvents is the default Events collaborator; it just logs. Real
// deployments hang notification fan-out off this interface.
type LogEvents struct{}

func (l *LogEvents) JobCompleted(out *structs.Outcome) {
	log.Printf("job.completed id=%s tool=%s rows=%d", out.JobID, out.Tool, out.Payload.RowCount)
}

func (l *LogEvents) JobFailed(out *structs.Outcome) {
	log.Printf("job.failed id=%s tool=%s kind=%s: %s", out.JobID, out.Tool, out.Payload.ErrorKind, out.Payload.ErrorMessage)
}
