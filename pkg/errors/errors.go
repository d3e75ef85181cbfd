package errors

import (
	"fmt"
)

var (
	// job lifecycle
	ErrJobExists      = fmt.Errorf("job id already exists")
	ErrNoSuchJob      = fmt.Errorf("no such job")
	ErrResultNotReady = fmt.Errorf("result not ready")
	ErrInvalidState   = fmt.Errorf("invalid state")

	// dataset resolution
	ErrDatasetNotFound  = fmt.Errorf("dataset not found")
	ErrInvalidDatasetID = fmt.Errorf("invalid dataset id")

	// storage / execution
	ErrStorageUnavailable = fmt.Errorf("storage unavailable")
	ErrAnalysisFailed     = fmt.Errorf("analysis failed")
	ErrTimeout            = fmt.Errorf("timeout")

	// input
	ErrValidation   = fmt.Errorf("validation failed")
	ErrNoSuchTool   = fmt.Errorf("no such tool")
	ErrInvalidArg   = fmt.Errorf("invalid arg")
	ErrNotSupported = fmt.Errorf("not supported")
)
