package tools

import (
	"fmt"
	"strings"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

// Context fields appended to every derived shape.
const (
	FieldOwnerID     = "owner_id"
	FieldFolderID    = "folder_id"
	FieldScenarioID  = "scenario_id"
	FieldSaveResults = "save_results"
	FieldResultName  = "result_name"
)

const (
	pathSuffix    = "_path"
	datasetSuffix = "_dataset_id"
	filterSuffix  = "_filter"
)

// Derive transforms a pure parameter shape into its dataset-oriented
// form. Every non-output path field X_path becomes X_dataset_id plus an
// optional X_filter; the output path field becomes an optional
// X_dataset_id with no filter. Value fields pass through unchanged and
// the fixed context fields are appended last.
//
// Derivation is pure: the same schema always yields the same result.
// It runs once, at tool registration, never per request.
func Derive(pure PureSchema) (DerivedSchema, error) {
	derived := DerivedSchema{}
	outputs := 0

	for _, f := range pure {
		switch f.Role {
		case RoleValue:
			derived = append(derived, DerivedField{Name: f.Name, Required: f.Required, Role: RoleValue, Source: f.Name})

		case RoleInput, RoleOverlay:
			base, err := pathBase(f.Name)
			if err != nil {
				return nil, err
			}
			derived = append(derived,
				DerivedField{Name: base + datasetSuffix, Required: f.Required, Role: f.Role, Source: f.Name},
				DerivedField{Name: base + filterSuffix, Required: false, Role: f.Role, Source: f.Name, Filter: true},
			)

		case RoleOutput:
			outputs++
			if outputs > 1 {
				return nil, fmt.Errorf("%w: at most one output path field", errors.ErrInvalidArg)
			}
			base, err := pathBase(f.Name)
			if err != nil {
				return nil, err
			}
			// optional: the runner allocates an id when unset
			derived = append(derived, DerivedField{Name: base + datasetSuffix, Required: false, Role: RoleOutput, Source: f.Name})

		default:
			return nil, fmt.Errorf("%w: unknown role %q on field %q", errors.ErrInvalidArg, f.Role, f.Name)
		}
	}

	return append(derived,
		DerivedField{Name: FieldOwnerID, Required: true, Role: RoleValue},
		DerivedField{Name: FieldFolderID, Required: false, Role: RoleValue},
		DerivedField{Name: FieldScenarioID, Required: false, Role: RoleValue},
		DerivedField{Name: FieldSaveResults, Required: false, Role: RoleValue},
		DerivedField{Name: FieldResultName, Required: false, Role: RoleValue},
	), nil
}

func pathBase(name string) (string, error) {
	if !strings.HasSuffix(name, pathSuffix) || name == pathSuffix {
		return "", fmt.Errorf("%w: path role field %q must be named X%s", errors.ErrInvalidArg, name, pathSuffix)
	}
	return strings.TrimSuffix(name, pathSuffix), nil
}
