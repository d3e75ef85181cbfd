package structs

import (
	"strings"
)

// Status is an OGC API Processes job status code.
type Status string

const (
	// transient states (live only in the ephemeral store)
	ACCEPTED Status = "accepted"
	RUNNING  Status = "running"

	// end states (live only in the durable store, immutable once written)
	SUCCESSFUL Status = "successful"
	FAILED     Status = "failed"
	DISMISSED  Status = "dismissed"
)

// IsFinalStatus returns true if the status is terminal.
func IsFinalStatus(status Status) bool {
	switch status {
	case SUCCESSFUL, FAILED, DISMISSED:
		return true
	default:
		return false
	}
}

// ToStatus parses a status string into a Status.
//
// Boundaries that still emit the pre-OGC vocabulary are translated 1:1:
// pending -> accepted, finished -> successful, killed -> dismissed and
// timeout -> failed (a timeout is a failure kind, not a status).
// Unknown strings return "".
func ToStatus(s string) Status {
	switch strings.ToLower(s) {
	case "accepted", "pending":
		return ACCEPTED
	case "running":
		return RUNNING
	case "successful", "finished":
		return SUCCESSFUL
	case "failed", "timeout":
		return FAILED
	case "dismissed", "killed":
		return DISMISSED
	default:
		return ""
	}
}
