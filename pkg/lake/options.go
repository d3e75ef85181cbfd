package lake

import (
	"time"
)

const (
	defaultPoolSize        = 2
	defaultMaxHandleAge    = 5 * time.Minute
	defaultCheckoutTimeout = 30 * time.Second
	defaultMaxAttempts     = 3
	defaultBackoff         = time.Second
	defaultCatalogSchema   = "ducklake"

	defaultPasswordEnvVar = "DATABASE_PASSWORD"
	defaultUsernameEnvVar = "DATABASE_USER"
)

// Options are options for the lake coordinator.
type Options struct {
	// CatalogURL is the postgres URL holding the lake catalog
	// (postgres://...). Username / password env vars are substituted
	// the same way as for the durable store.
	CatalogURL string

	// PasswordEnvVar / UsernameEnvVar name env vars substituted into
	// CatalogURL (see database.Options).
	PasswordEnvVar string
	UsernameEnvVar string

	// CatalogSchema is the postgres schema holding catalog metadata.
	// Defaults to "ducklake".
	CatalogSchema string

	// DataPath is where row data lives; a local dir or an s3:// bucket.
	DataPath string

	// S3 settings, only needed when DataPath is an s3:// bucket.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// ReadWrite grants this process the single read-write handle.
	// Exactly one process in the deployment may set this; everyone
	// else attaches read-only and so never takes catalog write locks.
	ReadWrite bool

	// PoolSize is the number of read-only handles to keep. Handles are
	// heavyweight (each is a full catalog attachment) so this is small.
	// Defaults to 2.
	PoolSize int

	// MaxHandleAge recreates handles older than this on checkout, to
	// shed stale catalog connections. Defaults to 5 minutes.
	MaxHandleAge time.Duration

	// CheckoutTimeout bounds how long a caller waits for a free handle
	// when the pool is exhausted. Defaults to 30s.
	CheckoutTimeout time.Duration

	// MaxAttempts / Backoff control the transient-error retry loop.
	MaxAttempts int
	Backoff     time.Duration
}

func (o *Options) SetDefaults() {
	if o.CatalogSchema == "" {
		o.CatalogSchema = defaultCatalogSchema
	}
	if o.PasswordEnvVar == "" {
		o.PasswordEnvVar = defaultPasswordEnvVar
	}
	if o.UsernameEnvVar == "" {
		o.UsernameEnvVar = defaultUsernameEnvVar
	}
	if o.PoolSize <= 0 {
		o.PoolSize = defaultPoolSize
	}
	if o.MaxHandleAge <= 0 {
		o.MaxHandleAge = defaultMaxHandleAge
	}
	if o.CheckoutTimeout <= 0 {
		o.CheckoutTimeout = defaultCheckoutTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultBackoff
	}
}
