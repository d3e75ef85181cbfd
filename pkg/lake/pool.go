package lake

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

// Mode is the access mode of a lake handle.
type Mode string

const (
	// ReadOnly handles never take catalog write locks; any number of
	// them (across any number of processes) run alongside the writer.
	ReadOnly Mode = "read_only"

	// ReadWrite is held by exactly one handle in exactly one process.
	ReadWrite Mode = "read_write"
)

// requiredExtensions are installed and loaded once per handle, at
// creation time, never per query.
var requiredExtensions = []string{"spatial", "httpfs", "postgres", "ducklake"}

// keepaliveParams keep the catalog's postgres connection from dying
// silently while a handle sits idle in the pool.
var keepaliveParams = "keepalives=1 keepalives_idle=30 keepalives_interval=5 keepalives_count=5"

// Handle is one pooled lake attachment. Each handle owns a single
// underlying connection with the catalog attached and extensions loaded.
type Handle struct {
	db      *sql.DB
	mode    Mode
	created time.Time
}

// DB exposes the handle's connection for query execution.
func (h *Handle) DB() *sql.DB {
	return h.db
}

// Coordinator hands out pooled lake handles. Read-only handles live in
// a fixed-size pool; the read-write handle (if this process is the
// writer) is a pool of one.
type Coordinator struct {
	opts *Options

	ro chan *Handle
	rw chan *Handle
}

// NewCoordinator builds the handle pool(s) and verifies connectivity.
func NewCoordinator(opts *Options) (*Coordinator, error) {
	opts.SetDefaults()
	opts.CatalogURL = strings.Replace(opts.CatalogURL, "$"+opts.UsernameEnvVar, os.Getenv(opts.UsernameEnvVar), 1)
	opts.CatalogURL = strings.Replace(opts.CatalogURL, "$"+opts.PasswordEnvVar, os.Getenv(opts.PasswordEnvVar), 1)

	c := &Coordinator{
		opts: opts,
		ro:   make(chan *Handle, opts.PoolSize),
	}
	for i := 0; i < opts.PoolSize; i++ {
		h, err := c.newHandle(ReadOnly)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.ro <- h
	}
	if opts.ReadWrite {
		c.rw = make(chan *Handle, 1)
		h, err := c.newHandle(ReadWrite)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.rw <- h
	}
	log.Printf("lake: attached %d read-only handle(s), read-write=%v", opts.PoolSize, opts.ReadWrite)
	return c, nil
}

// Checkout takes a handle from the pool, blocking until one is free or
// the checkout timeout expires. Handles past their max age are
// recreated before being handed out.
func (c *Coordinator) Checkout(ctx context.Context, mode Mode) (*Handle, error) {
	pool := c.ro
	if mode == ReadWrite {
		if c.rw == nil {
			return nil, fmt.Errorf("%w: this process holds no read-write handle", errors.ErrNotSupported)
		}
		pool = c.rw
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.CheckoutTimeout)
	defer cancel()

	select {
	case h := <-pool:
		if time.Since(h.created) > c.opts.MaxHandleAge {
			if h = c.replace(h); h == nil {
				go c.refill(mode)
				return nil, errors.ErrStorageUnavailable
			}
		}
		return h, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: no free %s handle", errors.ErrStorageUnavailable, mode)
	}
}

// Checkin returns a handle to its pool.
func (c *Coordinator) Checkin(h *Handle) {
	if h == nil {
		return
	}
	if h.mode == ReadWrite {
		c.rw <- h
		return
	}
	c.ro <- h
}

// Discard closes a (presumed broken) handle and puts a fresh one back
// in its place so the pool never shrinks. If the lake is unreachable
// the slot is refilled in the background once it comes back.
func (c *Coordinator) Discard(h *Handle) {
	if h == nil {
		return
	}
	if fresh := c.replace(h); fresh != nil {
		c.Checkin(fresh)
		return
	}
	go c.refill(h.mode)
}

// refill keeps trying to create a handle until the lake answers, then
// returns it to the pool. Runs when a broken handle could not be
// replaced inline; without it the pool would shrink permanently.
func (c *Coordinator) refill(mode Mode) {
	for {
		time.Sleep(c.opts.Backoff)
		h, err := c.newHandle(mode)
		if err == nil {
			c.Checkin(h)
			return
		}
		log.Printf("lake: refill of %s handle failed, will retry: %v", mode, err)
	}
}

// Close tears down every handle. Outstanding checkouts are not waited
// for; call only on shutdown.
func (c *Coordinator) Close() error {
	close(c.ro)
	for h := range c.ro {
		h.db.Close()
	}
	if c.rw != nil {
		close(c.rw)
		for h := range c.rw {
			h.db.Close()
		}
	}
	return nil
}

// replace closes h and creates a fresh handle in the same mode,
// retrying transient attach failures. Returns nil if the lake is
// unreachable.
func (c *Coordinator) replace(h *Handle) *Handle {
	h.db.Close()

	var err error
	for attempt := 0; attempt < c.opts.MaxAttempts; attempt++ {
		var fresh *Handle
		fresh, err = c.newHandle(h.mode)
		if err == nil {
			return fresh
		}
		if !isTransient(err) {
			break
		}
		time.Sleep(c.opts.Backoff * time.Duration(attempt+1))
	}
	log.Printf("lake: failed to recreate %s handle: %v", h.mode, err)
	return nil
}

// newHandle opens a fresh in-process database, loads the required
// extensions and attaches the shared catalog in the given mode.
func (c *Coordinator) newHandle(mode Mode) (*Handle, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}
	// one stateful attachment per handle
	db.SetMaxOpenConns(1)

	setup := []string{}
	for _, ext := range requiredExtensions {
		setup = append(setup, "INSTALL "+ext, "LOAD "+ext)
	}
	if c.opts.S3Endpoint != "" {
		setup = append(setup,
			fmt.Sprintf("SET s3_endpoint = '%s'", c.opts.S3Endpoint),
			"SET s3_url_style = 'path'",
		)
	}
	if c.opts.S3AccessKey != "" {
		setup = append(setup, fmt.Sprintf("SET s3_access_key_id = '%s'", c.opts.S3AccessKey))
	}
	if c.opts.S3SecretKey != "" {
		setup = append(setup, fmt.Sprintf("SET s3_secret_access_key = '%s'", c.opts.S3SecretKey))
	}
	setup = append(setup, c.attachStatement(mode))

	for _, stmt := range setup {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("lake handle setup failed on %q: %w", strings.Fields(stmt)[0], err)
		}
	}
	return &Handle{db: db, mode: mode, created: time.Now()}, nil
}

// attachStatement builds the catalog ATTACH for the given mode.
// Read-only attachment by definition never requests the catalog write
// lock, which is what lets reader processes coexist with the writer.
func (c *Coordinator) attachStatement(mode Mode) string {
	options := []string{
		fmt.Sprintf("DATA_PATH '%s'", c.opts.DataPath),
		fmt.Sprintf("METADATA_SCHEMA '%s'", c.opts.CatalogSchema),
	}
	if mode == ReadOnly {
		options = append(options, "READ_ONLY true")
	}
	options = append(options, "OVERRIDE_DATA_PATH true")

	return fmt.Sprintf("ATTACH 'ducklake:postgres:%s' AS %s (%s)",
		libpqString(c.opts.CatalogURL), catalogAlias, strings.Join(options, ", "))
}

// libpqString converts a postgres URL into libpq key=value form, which
// is what the catalog attachment wants.
func libpqString(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	parts := []string{}
	if h := parsed.Hostname(); h != "" {
		parts = append(parts, "host="+h)
	}
	if p := parsed.Port(); p != "" {
		parts = append(parts, "port="+p)
	}
	if parsed.User != nil {
		if u := parsed.User.Username(); u != "" {
			parts = append(parts, "user="+u)
		}
		if pw, ok := parsed.User.Password(); ok {
			parts = append(parts, "password="+pw)
		}
	}
	if db := strings.TrimPrefix(parsed.Path, "/"); db != "" {
		parts = append(parts, "dbname="+db)
	}
	parts = append(parts, keepaliveParams)
	return strings.Join(parts, " ")
}
