package api

import (
	"os"
	"time"
)

const (
	defCompleteAttempts = 3
	defCompleteBackoff  = 500 * time.Millisecond
	defDownloadTTL      = time.Hour

	// defQueueGrace pads the queue-level deadline past the compute
	// timeout so export and ingest get their own headroom.
	defQueueGrace = 5 * time.Minute
)

// Options passed to the lakeproc API on creation
type Options struct {
	// WorkDir is where job scratch files (exports, tool outputs) live.
	// Defaults to the system temp dir.
	WorkDir string

	// ResultsDir is where unsaved results are stashed for download.
	ResultsDir string

	// ResultsBaseURL prefixes signed download URLs.
	ResultsBaseURL string

	// DownloadTTL is how long a signed download reference stays valid.
	// Defaults to 1 hour.
	DownloadTTL time.Duration

	// CompleteAttempts / CompleteBackoff bound the inline retry of the
	// durable terminal write; past that the background completer owns
	// it and retries until it lands.
	CompleteAttempts int
	CompleteBackoff  time.Duration

	// QueueGrace pads the queued task deadline beyond the tool
	// category's compute timeout.
	QueueGrace time.Duration
}

func (o *Options) SetDefaults() {
	if o.WorkDir == "" {
		o.WorkDir = os.TempDir()
	}
	if o.ResultsDir == "" {
		o.ResultsDir = os.TempDir()
	}
	if o.DownloadTTL <= 0 {
		o.DownloadTTL = defDownloadTTL
	}
	if o.CompleteAttempts <= 0 {
		o.CompleteAttempts = defCompleteAttempts
	}
	if o.CompleteBackoff <= 0 {
		o.CompleteBackoff = defCompleteBackoff
	}
	if o.QueueGrace <= 0 {
		o.QueueGrace = defQueueGrace
	}
}
