package jobstate

import (
	"crypto/tls"
	"time"
)

const (
	// defaultTTL bounds how long an in-flight entry may live; a job that
	// never completes expires rather than lingering forever.
	defaultTTL = time.Hour
)

// Options are options for the ephemeral store.
type Options struct {
	// URL encodes how we'll connect to the store (redis://...).
	URL string

	// TLSConfig needed to connect to the store (optional).
	TLSConfig *tls.Config

	// TTL is the lifetime of an in-flight entry. Defaults to 1 hour.
	TTL time.Duration
}

func (o *Options) SetDefaults() {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
}
