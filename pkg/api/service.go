package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mapgrid/lakeproc/internal/utils"
	"github.com/mapgrid/lakeproc/pkg/database"
	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/jobstate"
	"github.com/mapgrid/lakeproc/pkg/queue"
	"github.com/mapgrid/lakeproc/pkg/structs"
	"github.com/mapgrid/lakeproc/pkg/tools"
)

// Service is the job execution core: it tracks job lifecycles across
// the ephemeral and durable stores, queues work and runs it.
type Service struct {
	opts *Options

	db    database.Database
	store jobstate.Store
	qu    queue.Queue
	lake  Lake
	reg   *tools.Registry

	events Events
	signer ResultSigner

	// retry feeds the background completer (see tracker.go)
	retry chan *structs.Outcome
}

// NewService wires up a lakeproc service. Events and signer may be nil;
// they default to log-only events and a local file signer.
func NewService(db database.Database, store jobstate.Store, qu queue.Queue, lk Lake, reg *tools.Registry, events Events, signer ResultSigner, opts *Options) (*Service, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()

	if events == nil {
		events = &LogEvents{}
	}
	if signer == nil {
		var err error
		signer, err = NewLocalSigner(opts.ResultsBaseURL, opts.ResultsDir, opts.DownloadTTL, nil)
		if err != nil {
			return nil, err
		}
	}

	me := &Service{
		opts:   opts,
		db:     db,
		store:  store,
		qu:     qu,
		lake:   lk,
		reg:    reg,
		events: events,
		signer: signer,
		retry:  make(chan *structs.Outcome, 100),
	}
	go me.runCompleter()
	return me, nil
}

// Submit validates the request, creates the ephemeral entry and queues
// the job. The caller gets accepted back before any work happens.
func (s *Service) Submit(processID string, args map[string]interface{}) (*structs.StatusInfo, error) {
	tool, err := s.reg.Get(processID)
	if err != nil {
		return nil, err
	}
	parsed, err := tools.ParseArgs(tool.Derived, args)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	now := time.Now().UTC()
	entry := &structs.Entry{
		JobID:     utils.NewRandomID(),
		OwnerID:   parsed.Owner.String(),
		ProcessID: processID,
		Status:    structs.ACCEPTED,
		Created:   now,
		Updated:   now,
	}
	if err = s.store.Create(ctx, entry); err != nil {
		return nil, err
	}

	taskID, err := s.qu.Enqueue(
		&queue.Task{JobID: entry.JobID, Tool: processID, Args: args},
		tool.Category.Timeout()+s.opts.QueueGrace,
	)
	if err != nil {
		// nothing will ever run this job; don't leave the entry behind
		s.store.Delete(ctx, entry.JobID)
		return nil, err
	}
	entry, uerr := s.store.Update(ctx, entry.JobID, func(e *structs.Entry) {
		e.QueueTaskID = taskID
	})
	if uerr != nil {
		return nil, uerr
	}
	return entryStatus(entry), nil
}

// Status resolves a job's status from whichever store holds it.
// Malformed ids are NoSuchJob, not a parse error; callers probing
// arbitrary ids deserve a clean 404.
func (s *Service) Status(jobID string) (*structs.StatusInfo, error) {
	ctx := context.Background()

	entry, err := s.store.Get(ctx, jobID)
	if err == nil {
		return entryStatus(entry), nil
	}

	id, err := utils.ParseID(jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoSuchJob, jobID)
	}
	job, err := s.db.Job(ctx, id)
	if err != nil {
		return nil, err
	}
	return jobStatus(job), nil
}

// Results returns the result reference of a successful job. A job
// still in flight (or terminal but unsuccessful) is ResultNotReady.
func (s *Service) Results(jobID string) (*structs.ResultRef, error) {
	ctx := context.Background()

	id, err := utils.ParseID(jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoSuchJob, jobID)
	}
	job, err := s.db.Job(ctx, id)
	if err == errors.ErrNoSuchJob {
		if _, serr := s.store.Get(ctx, jobID); serr == nil {
			return nil, errors.ErrResultNotReady
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if job.Status != structs.SUCCESSFUL {
		return nil, fmt.Errorf("%w: job is %s", errors.ErrResultNotReady, job.Status)
	}

	ref := &structs.ResultRef{
		DatasetID: job.Payload.ResultDatasetID,
		MediaType: "application/vnd.apache.parquet",
	}
	if job.Payload.DownloadURL != "" {
		ref.Href = job.Payload.DownloadURL
	} else {
		ref.Href = "/datasets/" + job.Payload.ResultDatasetID
	}
	return ref, nil
}

// Jobs lists jobs matching the query from both stores: in-flight
// entries first, then terminal rows, newest first within each.
func (s *Service) Jobs(q *structs.Query) ([]*structs.StatusInfo, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	ctx := context.Background()

	// the page applies to the merged list, so pull enough head rows
	// from each store to cover it
	head := *q
	head.Offset = 0
	head.Limit = q.Offset + q.Limit

	entries, err := s.store.List(ctx, &head)
	if err != nil {
		return nil, err
	}
	out := make([]*structs.StatusInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryStatus(e))
	}

	jobs, err := s.db.Jobs(ctx, &head)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		out = append(out, jobStatus(j))
	}

	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Dismiss cancels a non-terminal job: best-effort kill of the queued
// task, then a dismissed terminal outcome. Terminal jobs are immutable
// so dismissing one is a no-op that reports the existing status.
func (s *Service) Dismiss(jobID string) (*structs.StatusInfo, error) {
	ctx := context.Background()

	entry, err := s.store.Get(ctx, jobID)
	if err != nil {
		// already terminal (or never existed); report as-is
		return s.Status(jobID)
	}

	if entry.QueueTaskID != "" {
		// best effort; if the runner got there first the write-once
		// durable insert below settles who won
		if kerr := s.qu.Kill(entry.QueueTaskID); kerr != nil {
			log.Printf("dismiss %s: could not kill queued task: %v", jobID, kerr)
		}
	}

	id, err := utils.ParseID(entry.JobID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(entry.OwnerID)
	if err != nil {
		return nil, err
	}
	s.complete(&structs.Outcome{
		JobID:   id,
		OwnerID: owner,
		Tool:    entry.ProcessID,
		Status:  structs.DISMISSED,
	})
	return s.Status(jobID)
}

// Processes lists registered tool names.
func (s *Service) Processes() []string {
	return s.reg.Names()
}

// Close stops the background completer. In-flight completions drain to
// the durable store first.
func (s *Service) Close() error {
	close(s.retry)
	return nil
}

func entryStatus(e *structs.Entry) *structs.StatusInfo {
	return &structs.StatusInfo{
		ProcessID: e.ProcessID,
		Type:      "process",
		JobID:     e.JobID,
		Status:    e.Status,
		Message:   e.Message,
		Progress:  e.Progress,
		Created:   e.Created.UTC().Format(time.RFC3339),
		Updated:   e.Updated.UTC().Format(time.RFC3339),
	}
}

func jobStatus(j *structs.Job) *structs.StatusInfo {
	info := &structs.StatusInfo{
		ProcessID: j.Tool,
		Type:      "process",
		JobID:     j.ID.String(),
		Status:    j.Status,
		Created:   time.Unix(j.CreatedAt, 0).UTC().Format(time.RFC3339),
		Updated:   time.Unix(j.UpdatedAt, 0).UTC().Format(time.RFC3339),
	}
	if j.Payload.ErrorMessage != "" {
		info.Message = j.Payload.ErrorMessage
	}
	return info
}
