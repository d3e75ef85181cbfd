package api

import (
	"context"
	goerrors "errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mapgrid/lakeproc/internal/utils"
	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/lake"
	"github.com/mapgrid/lakeproc/pkg/queue"
	"github.com/mapgrid/lakeproc/pkg/structs"
	"github.com/mapgrid/lakeproc/pkg/tools"
)

// classifyField is the value field callers set to request a graduated
// default style on the result.
const classifyField = "classify_column"

// RegisterWorkers binds every registered tool to the queue. Call this
// on worker processes before Run().
func (s *Service) RegisterWorkers() error {
	for _, name := range s.reg.Names() {
		if err := s.qu.Register(name, s.handleTask); err != nil {
			return err
		}
	}
	return nil
}

// handleTask runs one queued job end to end and reports its outcome.
// It never returns the job's own failure to the queue; the outcome is
// already settled via complete() and a queue retry would redo the work.
func (s *Service) handleTask(ctx context.Context, t *queue.Task) error {
	s.complete(s.run(ctx, t))
	return nil
}

// run executes a job: export inputs, invoke the pure compute function
// under its category deadline, ingest the output. Every failure path
// collapses into a failed outcome with a classified error kind; nothing
// escapes without one.
func (s *Service) run(ctx context.Context, t *queue.Task) (out *structs.Outcome) {
	jobID, err := utils.ParseID(t.JobID)
	if err != nil {
		jobID = uuid.New() // unparseable job id; still record the wreck
	}
	out = &structs.Outcome{JobID: jobID, Tool: t.Tool, Status: structs.FAILED}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("run %s: panic: %v", t.JobID, r)
			out.Status = structs.FAILED
			out.Payload.ErrorMessage = fmt.Sprintf("internal error: %v", r)
			out.Payload.ErrorKind = structs.ErrKindInternal
		}
	}()

	fail := func(err error) *structs.Outcome {
		out.Payload.ErrorMessage = err.Error()
		out.Payload.ErrorKind = errorKind(err)
		return out
	}

	tool, err := s.reg.Get(t.Tool)
	if err != nil {
		return fail(err)
	}
	args, err := tools.ParseArgs(tool.Derived, t.Args)
	if err != nil {
		return fail(err)
	}
	out.OwnerID = args.Owner
	out.Payload.FolderID = blankIfNil(args.Folder)
	if args.Scenario != nil {
		out.Payload.ScenarioID = args.Scenario.String()
	}

	s.advance(t.JobID, nil, "")

	workdir, err := os.MkdirTemp(s.opts.WorkDir, "job-"+t.JobID+"-")
	if err != nil {
		return fail(err)
	}
	defer os.RemoveAll(workdir)

	pure, err := s.exportInputs(ctx, workdir, args)
	if err != nil {
		return fail(err)
	}

	result, err := s.compute(ctx, tool, pure)
	if err != nil {
		return fail(err)
	}

	resultID := uuid.New()
	if args.Output != nil {
		resultID = args.Output.DatasetID
	}
	info, err := s.lake.Ingest(ctx, args.Owner, resultID, result.OutputPath)
	if err != nil {
		return fail(err)
	}
	out.Payload.RowCount = info.RowCount

	if !args.SaveResults {
		// hand back a download instead; the table was only ever
		// scratch space for metadata inference
		url, expires, err := s.signer.Sign(t.JobID, result.OutputPath)
		if err != nil {
			return fail(err)
		}
		if err = s.lake.DropTable(ctx, args.Owner, resultID); err != nil {
			log.Printf("run %s: dropping scratch table: %v", t.JobID, err)
		}
		out.Payload.DownloadURL = url
		out.Payload.DownloadExpiresAt = expires.Format(time.RFC3339)
		out.Status = structs.SUCCESSFUL
		return out
	}

	record, err := s.buildDataset(ctx, args, tool, resultID, info)
	if err != nil {
		return fail(err)
	}
	if err = s.db.InsertDataset(ctx, record); err != nil {
		return fail(err)
	}
	out.Payload.ResultDatasetID = resultID.String()
	out.Status = structs.SUCCESSFUL
	return out
}

// exportInputs materializes every input binding as a parquet file in
// the workdir and builds the tool's pure arguments.
func (s *Service) exportInputs(ctx context.Context, workdir string, args *tools.DatasetArgs) (*tools.PureArgs, error) {
	pure := &tools.PureArgs{
		Values:     args.Extra,
		InputPaths: map[string]string{},
		OutputPath: filepath.Join(workdir, "output.parquet"),
	}

	for _, b := range args.Inputs {
		owns, err := s.db.OwnsDataset(ctx, args.Owner, b.DatasetID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, fmt.Errorf("%w: %s", errors.ErrDatasetNotFound, b.DatasetID)
		}

		path := filepath.Join(workdir, b.Field+".parquet")
		if err = s.lake.Export(ctx, args.Owner, b.DatasetID, b.Filter, args.Scenario, path); err != nil {
			return nil, err
		}
		pure.InputPaths[b.Field] = path
	}
	return pure, nil
}

// compute invokes the tool's pure function off the request path, under
// its category deadline. The function runs in its own goroutine so a
// hung tool can't wedge the worker loop past the deadline.
func (s *Service) compute(ctx context.Context, tool *tools.Tool, pure *tools.PureArgs) (*tools.PureResult, error) {
	ctx, cancel := context.WithTimeout(ctx, tool.Category.Timeout())
	defer cancel()

	type reply struct {
		result *tools.PureResult
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		r, err := tool.Run(ctx, pure)
		done <- reply{result: r, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrAnalysisFailed, r.err)
		}
		return r.result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s exceeded %s", errors.ErrTimeout, tool.Name, tool.Category.Timeout())
	}
}

// buildDataset assembles the metadata record for a persisted result,
// including its default (possibly graduated) style.
func (s *Service) buildDataset(ctx context.Context, args *tools.DatasetArgs, tool *tools.Tool, id uuid.UUID, info *lake.TableInfo) (*structs.Dataset, error) {
	name := args.ResultName
	if name == "" {
		name = fmt.Sprintf("%s %s", tool.Name, time.Now().UTC().Format("2006-01-02 15:04"))
	}

	kind := structs.KindTable
	if info.GeometryColumn != "" {
		kind = structs.KindFeature
	}

	style := lake.BaseStyle(info.GeometryKind)
	if column, ok := args.Extra[classifyField].(string); ok && column != "" {
		breaks, err := s.lake.ClassBreaks(ctx, args.Owner, id, column, 5)
		if err != nil {
			log.Printf("class breaks on %s.%s: %v", id, column, err)
		} else {
			style = lake.GraduatedStyle(info.GeometryKind, column, breaks)
		}
	}

	return &structs.Dataset{
		ID:           id,
		OwnerID:      args.Owner,
		FolderID:     args.Folder,
		Name:         name,
		Kind:         kind,
		GeometryKind: info.GeometryKind,
		Columns:      info.Columns,
		Style:        style,
		Extent:       info.Extent,
		RowCount:     info.RowCount,
	}, nil
}

// DeleteDataset removes a dataset, table first: a metadata record
// without a table is a visible bug, an orphaned table is just leaked
// space.
func (s *Service) DeleteDataset(ctx context.Context, owner, id uuid.UUID) error {
	if _, err := s.db.Dataset(ctx, owner, id); err != nil {
		return err
	}
	if err := s.lake.DropTable(ctx, owner, id); err != nil {
		return err
	}
	return s.db.DeleteDataset(ctx, owner, id)
}

// errorKind classifies an error for the failed payload.
func errorKind(err error) structs.ErrorKind {
	switch {
	case goerrors.Is(err, errors.ErrValidation), goerrors.Is(err, errors.ErrInvalidDatasetID), goerrors.Is(err, errors.ErrInvalidArg), goerrors.Is(err, errors.ErrNoSuchTool):
		return structs.ErrKindValidation
	case goerrors.Is(err, errors.ErrDatasetNotFound):
		return structs.ErrKindDatasetNotFound
	case goerrors.Is(err, errors.ErrStorageUnavailable):
		return structs.ErrKindStorage
	case goerrors.Is(err, errors.ErrTimeout):
		return structs.ErrKindTimeout
	case goerrors.Is(err, errors.ErrAnalysisFailed):
		return structs.ErrKindAnalysis
	default:
		return structs.ErrKindInternal
	}
}

func blankIfNil(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
