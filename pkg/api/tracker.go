package api

import (
	"context"
	"log"
	"time"

	"github.com/mapgrid/lakeproc/pkg/structs"
)

const completerMaxBackoff = time.Minute

// advance moves an in-flight job's ephemeral entry along: running
// status, optional progress and message. Advancing a job that already
// reached a terminal state is a no-op; its entry is gone and terminal
// state is immutable.
func (s *Service) advance(jobID string, progress *int, message string) {
	_, err := s.store.Update(context.Background(), jobID, func(e *structs.Entry) {
		e.Status = structs.RUNNING
		if progress != nil {
			e.Progress = progress
		}
		if message != "" {
			e.Message = message
		}
	})
	if err != nil {
		log.Printf("advance %s: %v", jobID, err)
	}
}

// complete is the single atomic hand-off between stores: write the
// durable terminal row, then delete the ephemeral entry. Order matters;
// a crash in between leaves a stale entry that expires, never a job
// with no observable state.
//
// If either half won't land inline the outcome is handed to the
// background completer, which retries until both do. The insert is
// idempotent so replays are harmless.
func (s *Service) complete(out *structs.Outcome) {
	inserted, err := s.insertOutcome(out)
	if err != nil {
		log.Printf("complete %s: durable write failed, backgrounding: %v", out.JobID, err)
		s.retry <- out
		return
	}
	if inserted {
		s.emit(out)
	}

	// the durable row exists; the entry can go. The TTL backstops a
	// failed delete, but an hour of reporting running for a terminal
	// job is too long, so the completer retries it.
	if _, err = s.store.Delete(context.Background(), out.JobID.String()); err != nil {
		log.Printf("complete %s: ephemeral delete failed, backgrounding: %v", out.JobID, err)
		s.retry <- out
	}
}

// insertOutcome writes the durable terminal row with bounded inline
// retry. The bool reports whether this call inserted the row; false
// means a row with this id already existed and the write was a no-op,
// ie. some other outcome settled the job first.
func (s *Service) insertOutcome(out *structs.Outcome) (bool, error) {
	ctx := context.Background()
	job := &structs.Job{
		ID:      out.JobID,
		OwnerID: out.OwnerID,
		Tool:    out.Tool,
		Status:  out.Status,
		Payload: out.Payload,
	}

	var err error
	for attempt := 0; attempt < s.opts.CompleteAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(s.opts.CompleteBackoff * time.Duration(attempt))
		}
		var inserted bool
		if inserted, err = s.db.InsertJob(ctx, job); err == nil {
			return inserted, nil
		}
	}
	return false, err
}

// runCompleter retries backgrounded completions until each lands, both
// halves. It never drops an outcome: a job must not end up permanently
// unobservable because the durable store had a bad day.
func (s *Service) runCompleter() {
	backoff := s.opts.CompleteBackoff
	for out := range s.retry {
		for {
			inserted, err := s.insertOutcome(out)
			if err == nil {
				if inserted {
					s.emit(out)
				}
				// a replayed insert is a no-op, so the event can't
				// double-fire while we keep retrying the delete
				if _, derr := s.store.Delete(context.Background(), out.JobID.String()); derr == nil {
					break
				}
			}
			time.Sleep(backoff)
			if backoff < completerMaxBackoff {
				backoff *= 2
			}
		}
		backoff = s.opts.CompleteBackoff
	}
}

// emit fires the terminal event for an outcome that actually landed.
// Callers skip it when the insert was a conflict no-op; the outcome
// that won the row already fired its own event, and this one never
// durably happened.
func (s *Service) emit(out *structs.Outcome) {
	switch out.Status {
	case structs.SUCCESSFUL:
		s.events.JobCompleted(out)
	case structs.FAILED:
		s.events.JobFailed(out)
	}
	// dismissed jobs fire no event; the caller asked for it
}
