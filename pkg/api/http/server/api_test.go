package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/mapgrid/lakeproc/internal/mocks"
	"github.com/mapgrid/lakeproc/pkg/api"
	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/structs"
)

var assertErr = fmt.Errorf("boom")

func testServer(svc api.API) *Server {
	s := NewServer("localhost:0", nil, false)
	s.svc = svc
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)
	return w
}

func TestExecute(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Submit("clip", map[string]interface{}{"owner_id": "x"}).Return(
		&structs.StatusInfo{ProcessID: "clip", JobID: "j1", Status: structs.ACCEPTED}, nil)

	w := do(s, http.MethodPost, "/processes/clip/execution", `{"owner_id": "x"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/jobs/j1", w.Header().Get("Location"))

	info := &structs.StatusInfo{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), info))
	assert.Equal(t, "j1", info.JobID)
	assert.Equal(t, []structs.Link{{Href: "/jobs/j1", Rel: "self", Type: "application/json"}}, info.Links)
}

func TestExecuteBadBody(t *testing.T) {
	s := testServer(mocks.NewMockAPI(gomock.NewController(t)))

	w := do(s, http.MethodPost, "/processes/clip/execution", `{"owner_id": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteNoSuchProcess(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Submit("nope", gomock.Any()).Return(nil, errors.ErrNoSuchTool)

	w := do(s, http.MethodPost, "/processes/nope/execution", `{}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Status("j1").Return(&structs.StatusInfo{JobID: "j1", Status: structs.SUCCESSFUL}, nil)

	w := do(s, http.MethodGet, "/jobs/j1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	info := &structs.StatusInfo{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), info))
	// successful jobs link to their results
	assert.Len(t, info.Links, 2)
	assert.Equal(t, "/jobs/j1/results", info.Links[1].Href)
}

func TestJobNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Status("j1").Return(nil, errors.ErrNoSuchJob)

	w := do(s, http.MethodGet, "/jobs/j1", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDismiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Dismiss("j1").Return(&structs.StatusInfo{JobID: "j1", Status: structs.DISMISSED}, nil)

	w := do(s, http.MethodDelete, "/jobs/j1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	info := &structs.StatusInfo{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), info))
	assert.Equal(t, structs.DISMISSED, info.Status)
}

func TestResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Results("j1").Return(&structs.ResultRef{
		DatasetID: "d1", Href: "/datasets/d1", MediaType: "application/vnd.apache.parquet",
	}, nil)

	w := do(s, http.MethodGet, "/jobs/j1/results", "")

	assert.Equal(t, http.StatusOK, w.Code)
	out := map[string]*structs.ResultRef{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "d1", out["output_dataset"].DatasetID)
}

func TestResultsNotReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Results("j1").Return(nil, errors.ErrResultNotReady)

	w := do(s, http.MethodGet, "/jobs/j1/results", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobsQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	var got *structs.Query
	svc.EXPECT().Jobs(gomock.Any()).DoAndReturn(func(q *structs.Query) ([]*structs.StatusInfo, error) {
		got = q
		return []*structs.StatusInfo{{JobID: "j1", Status: structs.RUNNING}}, nil
	})

	w := do(s, http.MethodGet, "/jobs?limit=5&statuses=pending,running&tools=clip", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, got.Limit)
	// the legacy vocabulary is translated at the boundary
	assert.Equal(t, []structs.Status{structs.ACCEPTED, structs.RUNNING}, got.Statuses)
	assert.Equal(t, []string{"clip"}, got.Tools)
}

func TestJobsQueryBadStatus(t *testing.T) {
	s := testServer(mocks.NewMockAPI(gomock.NewController(t)))

	w := do(s, http.MethodGet, "/jobs?statuses=wat", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobsQueryBadID(t *testing.T) {
	s := testServer(mocks.NewMockAPI(gomock.NewController(t)))

	w := do(s, http.MethodGet, "/jobs?job_ids=not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcesses(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAPI(ctrl)
	s := testServer(svc)

	svc.EXPECT().Processes().Return([]string{"buffer", "clip"})

	w := do(s, http.MethodGet, "/processes", "")

	assert.Equal(t, http.StatusOK, w.Code)
	out := map[string][]string{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, []string{"buffer", "clip"}, out["processes"])
}

func TestHealth(t *testing.T) {
	s := testServer(mocks.NewMockAPI(gomock.NewController(t)))

	w := do(s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMapError(t *testing.T) {
	cases := []struct {
		Err    error
		Expect int
	}{
		{nil, http.StatusOK},
		{errors.ErrValidation, http.StatusBadRequest},
		{errors.ErrResultNotReady, http.StatusBadRequest},
		{errors.ErrNoSuchJob, http.StatusNotFound},
		{errors.ErrDatasetNotFound, http.StatusNotFound},
		{errors.ErrJobExists, http.StatusConflict},
		{errors.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{assertErr, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.Expect, mapError(c.Err))
	}
}

func TestDownloads(t *testing.T) {
	dir := t.TempDir()
	signer, err := api.NewLocalSigner("http://localhost:8100", dir, time.Hour, []byte("k"))
	assert.Nil(t, err)

	src := filepath.Join(dir, "src.parquet")
	assert.Nil(t, os.WriteFile(src, []byte("parquet"), 0o644))
	url, _, err := signer.Sign("j1", src)
	assert.Nil(t, err)

	s := NewServer("localhost:0", signer, false)
	s.svc = mocks.NewMockAPI(gomock.NewController(t))

	req := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(url, "http://localhost:8100"), nil)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "parquet", w.Body.String())

	// tampering with the signature gets refused
	req = httptest.NewRequest(http.MethodGet, "/results/j1.parquet?expires=9999999999&sig=forged", nil)
	w = httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
