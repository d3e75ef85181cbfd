package queue

import (
	"crypto/tls"
)

// Options are options for the queue.
type Options struct {
	// URL encodes how we'll connect to the queue.
	URL string

	// TLSConfig needed to connect to the queue (optional).
	TLSConfig *tls.Config

	// Concurrency is how many tasks a worker processes at once.
	// Defaults to 1; the compute step is heavyweight.
	Concurrency int
}

func (o *Options) SetDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
}
