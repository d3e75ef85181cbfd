package server

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mapgrid/lakeproc/internal/utils"
	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/structs"
)

var (
	errmap = map[int][]error{
		http.StatusBadRequest: {
			errors.ErrValidation,
			errors.ErrInvalidDatasetID,
			errors.ErrInvalidArg,
			errors.ErrInvalidState,
			errors.ErrNotSupported,
			errors.ErrResultNotReady,
		},
		http.StatusNotFound: {
			errors.ErrNoSuchJob,
			errors.ErrNoSuchTool,
			errors.ErrDatasetNotFound,
		},
		http.StatusConflict: {
			errors.ErrJobExists,
		},
		http.StatusServiceUnavailable: {
			errors.ErrStorageUnavailable,
		},
	}
)

// mapError returns a http status code for the given error
func mapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if goerrors.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

// unmarshalQuery reads a job Query out of the request query string,
// writing a http error to the client if something is off.
func unmarshalQuery(w http.ResponseWriter, r *http.Request, q *structs.Query) error {
	values := r.URL.Query()

	var err error
	if raw := values.Get("limit"); raw != "" {
		q.Limit, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return err
		}
	}
	if raw := values.Get("offset"); raw != "" {
		q.Offset, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid offset %q", raw), http.StatusBadRequest)
			return err
		}
	}

	for _, raw := range splitList(values.Get("job_ids")) {
		id, err := utils.NormalizeID(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid job id %q", raw), http.StatusBadRequest)
			return err
		}
		q.JobIDs = append(q.JobIDs, id)
	}
	for _, raw := range splitList(values.Get("owner_ids")) {
		id, err := utils.NormalizeID(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid owner id %q", raw), http.StatusBadRequest)
			return err
		}
		q.OwnerIDs = append(q.OwnerIDs, id)
	}
	q.Tools = splitList(values.Get("tools"))

	for _, raw := range splitList(values.Get("statuses")) {
		status := structs.ToStatus(raw)
		if status == "" {
			err = fmt.Errorf("unknown status %q", raw)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return err
		}
		q.Statuses = append(q.Statuses, status)
	}

	q.Sanitize()
	return nil
}

// unmarshalJson reads the request body into the given struct, writing a
// http error to the client on failure.
func unmarshalJson(w http.ResponseWriter, r *http.Request, obj interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(obj)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
	return err
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	out := []string{}
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
