package api

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/mapgrid/lakeproc/internal/mocks"
	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/lake"
	"github.com/mapgrid/lakeproc/pkg/queue"
	"github.com/mapgrid/lakeproc/pkg/structs"
	"github.com/mapgrid/lakeproc/pkg/tools"
)

func testTask() *queue.Task {
	return &queue.Task{
		JobID: uuid.NewString(),
		Tool:  "clip",
		Args:  validArgs(),
	}
}

func expectAdvance(store *mocks.MockStore, jobID string) {
	store.EXPECT().Update(gomock.Any(), jobID, gomock.Any()).Return(&structs.Entry{JobID: jobID}, nil).AnyTimes()
}

func TestRunSavesResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	store := mocks.NewMockStore(ctrl)
	lk := mocks.NewMockLake(ctrl)
	svc := testService(t, db, store, mocks.NewMockQueue(ctrl), lk)

	task := testTask()
	expectAdvance(store, task.JobID)

	db.EXPECT().OwnsDataset(gomock.Any(), tOwner, tDataset).Return(true, nil)
	lk.EXPECT().Export(gomock.Any(), tOwner, tDataset, "", nil, gomock.Any()).Return(nil)
	lk.EXPECT().Ingest(gomock.Any(), tOwner, gomock.Any(), gomock.Any()).Return(&lake.TableInfo{
		Columns:        []structs.Column{{Name: "id", Type: "VARCHAR"}, {Name: "geom", Type: "GEOMETRY"}},
		RowCount:       7,
		GeometryColumn: "geom",
		GeometryKind:   structs.GeomPolygon,
	}, nil)

	var saved *structs.Dataset
	db.EXPECT().InsertDataset(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, d *structs.Dataset) error {
			saved = d
			return nil
		})

	out := svc.run(context.Background(), task)

	assert.Equal(t, structs.SUCCESSFUL, out.Status)
	assert.Equal(t, int64(7), out.Payload.RowCount)
	assert.Equal(t, saved.ID.String(), out.Payload.ResultDatasetID)
	assert.Equal(t, tOwner, saved.OwnerID)
	assert.Equal(t, tFolder, saved.FolderID)
	assert.Equal(t, structs.KindFeature, saved.Kind)
	assert.Equal(t, "fill", saved.Style["type"])
}

func TestRunDatasetNotOwned(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	store := mocks.NewMockStore(ctrl)
	svc := testService(t, db, store, mocks.NewMockQueue(ctrl), mocks.NewMockLake(ctrl))

	task := testTask()
	expectAdvance(store, task.JobID)
	db.EXPECT().OwnsDataset(gomock.Any(), tOwner, tDataset).Return(false, nil)

	out := svc.run(context.Background(), task)

	assert.Equal(t, structs.FAILED, out.Status)
	assert.Equal(t, structs.ErrKindDatasetNotFound, out.Payload.ErrorKind)
}

func TestRunValidationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := testService(t, mocks.NewMockDatabase(ctrl), mocks.NewMockStore(ctrl), mocks.NewMockQueue(ctrl), mocks.NewMockLake(ctrl))

	task := testTask()
	task.Args = map[string]interface{}{"owner_id": tOwner.String()}

	out := svc.run(context.Background(), task)

	assert.Equal(t, structs.FAILED, out.Status)
	assert.Equal(t, structs.ErrKindValidation, out.Payload.ErrorKind)
}

func TestRunComputeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	store := mocks.NewMockStore(ctrl)
	lk := mocks.NewMockLake(ctrl)
	svc := testService(t, db, store, mocks.NewMockQueue(ctrl), lk)

	// a tool whose compute step always falls over
	assert.Nil(t, svc.reg.Register("explode", tools.CategoryShort, tools.PureSchema{
		{Name: "input_path", Role: tools.RoleInput, Required: true},
		{Name: "output_path", Role: tools.RoleOutput},
	}, func(ctx context.Context, args *tools.PureArgs) (*tools.PureResult, error) {
		return nil, assertErr
	}))

	task := testTask()
	task.Tool = "explode"
	expectAdvance(store, task.JobID)
	db.EXPECT().OwnsDataset(gomock.Any(), tOwner, tDataset).Return(true, nil)
	lk.EXPECT().Export(gomock.Any(), tOwner, tDataset, "", nil, gomock.Any()).Return(nil)

	out := svc.run(context.Background(), task)

	assert.Equal(t, structs.FAILED, out.Status)
	assert.Equal(t, structs.ErrKindAnalysis, out.Payload.ErrorKind)
	assert.Contains(t, out.Payload.ErrorMessage, "boom")
}

func TestRunDownloadOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	store := mocks.NewMockStore(ctrl)
	lk := mocks.NewMockLake(ctrl)
	svc := testService(t, db, store, mocks.NewMockQueue(ctrl), lk)

	dir := t.TempDir()
	signer, err := NewLocalSigner("http://localhost:8100", dir, time.Hour, []byte("k"))
	assert.Nil(t, err)
	svc.signer = signer

	// the tool writes an actual output file for the signer to stash
	assert.Nil(t, svc.reg.Register("extract", tools.CategoryShort, tools.PureSchema{
		{Name: "input_path", Role: tools.RoleInput, Required: true},
		{Name: "output_path", Role: tools.RoleOutput},
	}, func(ctx context.Context, args *tools.PureArgs) (*tools.PureResult, error) {
		err := os.WriteFile(args.OutputPath, []byte("parquet"), 0o644)
		return &tools.PureResult{OutputPath: args.OutputPath}, err
	}))

	task := testTask()
	task.Tool = "extract"
	task.Args["save_results"] = false
	delete(task.Args, "folder_id")
	expectAdvance(store, task.JobID)

	db.EXPECT().OwnsDataset(gomock.Any(), tOwner, tDataset).Return(true, nil)
	lk.EXPECT().Export(gomock.Any(), tOwner, tDataset, "", nil, gomock.Any()).Return(nil)
	lk.EXPECT().Ingest(gomock.Any(), tOwner, gomock.Any(), gomock.Any()).Return(&lake.TableInfo{RowCount: 3}, nil)
	lk.EXPECT().DropTable(gomock.Any(), tOwner, gomock.Any()).Return(nil)

	out := svc.run(context.Background(), task)

	assert.Equal(t, structs.SUCCESSFUL, out.Status)
	assert.Equal(t, "", out.Payload.ResultDatasetID)
	assert.Contains(t, out.Payload.DownloadURL, "http://localhost:8100/results/")
	assert.NotEmpty(t, out.Payload.DownloadExpiresAt)

	// the file really was stashed
	_, err = os.Stat(filepath.Join(dir, task.JobID+".parquet"))
	assert.Nil(t, err)
}

func TestComputeTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := testService(t, mocks.NewMockDatabase(ctrl), mocks.NewMockStore(ctrl), mocks.NewMockQueue(ctrl), mocks.NewMockLake(ctrl))

	tool := &tools.Tool{Name: "sleepy", Category: tools.CategoryShort, Run: func(ctx context.Context, args *tools.PureArgs) (*tools.PureResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	// an already-cancelled parent forces the deadline branch
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.compute(ctx, tool, &tools.PureArgs{})

	assert.ErrorIs(t, err, errors.ErrTimeout)
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		Err    error
		Expect structs.ErrorKind
	}{
		{errors.ErrValidation, structs.ErrKindValidation},
		{errors.ErrInvalidDatasetID, structs.ErrKindValidation},
		{errors.ErrNoSuchTool, structs.ErrKindValidation},
		{errors.ErrDatasetNotFound, structs.ErrKindDatasetNotFound},
		{errors.ErrStorageUnavailable, structs.ErrKindStorage},
		{errors.ErrTimeout, structs.ErrKindTimeout},
		{errors.ErrAnalysisFailed, structs.ErrKindAnalysis},
		{assertErr, structs.ErrKindInternal},
	}
	for _, c := range cases {
		assert.Equal(t, c.Expect, errorKind(c.Err), c.Err.Error())
	}
}

func TestDeleteDatasetOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	lk := mocks.NewMockLake(ctrl)
	svc := testService(t, db, mocks.NewMockStore(ctrl), mocks.NewMockQueue(ctrl), lk)

	gomock.InOrder(
		db.EXPECT().Dataset(gomock.Any(), tOwner, tDataset).Return(&structs.Dataset{ID: tDataset}, nil),
		lk.EXPECT().DropTable(gomock.Any(), tOwner, tDataset).Return(nil),
		db.EXPECT().DeleteDataset(gomock.Any(), tOwner, tDataset).Return(nil),
	)

	assert.Nil(t, svc.DeleteDataset(context.Background(), tOwner, tDataset))
}

func TestSignerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	signer, err := NewLocalSigner("http://x", dir, time.Hour, []byte("secret"))
	assert.Nil(t, err)

	src := filepath.Join(dir, "src.parquet")
	assert.Nil(t, os.WriteFile(src, []byte("data"), 0o644))

	url, expires, err := signer.Sign("job-1", src)
	assert.Nil(t, err)
	assert.True(t, expires.After(time.Now()))
	assert.Contains(t, url, "job-1.parquet")

	assert.True(t, signer.Verify("job-1.parquet", expires.Unix(), signer.signature("job-1.parquet", expires)))
	assert.False(t, signer.Verify("job-1.parquet", expires.Unix(), "bad"))
	assert.False(t, signer.Verify("job-1.parquet", time.Now().Add(-time.Minute).Unix(), "whatever"))
}
