package lake

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

// transientPatterns are error strings that indicate a stale handle or
// catalog contention rather than a bad query. Matching is on lowercased
// substrings because the underlying drivers surface these as opaque
// text.
var transientPatterns = []string{
	// broken catalog connections
	"ssl syscall error",
	"eof detected",
	"connection already closed",
	"connection error",
	"connection reset",
	"broken pipe",
	"failed to get data file list",
	// catalog lock contention; retry after the writer commits
	"could not acquire lock",
	"write-write conflict",
}

// isTransient reports whether an error is worth a fresh handle and a
// retry, as opposed to a permanent failure of the query itself.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// With checks out a handle in the given mode, runs fn on it and checks
// it back in. Transient errors discard the handle and retry on a fresh
// one with linear backoff, up to MaxAttempts; permanent errors surface
// to the caller as-is. Exhausted retries surface as
// errors.ErrStorageUnavailable wrapping the last error.
func (c *Coordinator) With(ctx context.Context, mode Mode, fn func(h *Handle) error) error {
	var last error
	for attempt := 0; attempt < c.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(c.opts.Backoff * time.Duration(attempt))
		}

		h, err := c.Checkout(ctx, mode)
		if err != nil {
			last = err
			continue
		}

		err = fn(h)
		if err == nil {
			c.Checkin(h)
			return nil
		}
		if !isTransient(err) {
			c.Checkin(h)
			return err
		}

		log.Printf("lake: transient error (attempt %d/%d), recreating handle: %v", attempt+1, c.opts.MaxAttempts, err)
		c.Discard(h)
		last = err
	}
	return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, last)
}
