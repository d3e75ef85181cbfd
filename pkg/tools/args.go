package tools

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mapgrid/lakeproc/internal/utils"
	"github.com/mapgrid/lakeproc/pkg/errors"
)

// Binding ties one derived dataset field to a concrete dataset.
type Binding struct {
	// Field is the pure path field this binding resolves (X_path).
	Field string

	Role      Role
	DatasetID uuid.UUID

	// Filter is pushed down into the export query. Never set on
	// outputs.
	Filter string
}

// DatasetArgs is a validated, typed rendition of a job submission's
// arguments against a tool's derived schema.
type DatasetArgs struct {
	Owner    uuid.UUID
	Folder   uuid.UUID
	Scenario *uuid.UUID

	SaveResults bool
	ResultName  string

	// Inputs are the input / overlay bindings, in schema order.
	Inputs []Binding

	// Output is set when the caller pinned the output dataset id.
	Output *Binding

	// Extra holds the pass-through value fields, keyed by pure name.
	Extra map[string]interface{}
}

// ParseArgs validates raw request arguments against a derived schema
// and returns them in typed form. Dataset ids are normalized; malformed
// ids fail with ErrInvalidDatasetID, missing or mistyped fields with
// ErrValidation.
func ParseArgs(schema DerivedSchema, raw map[string]interface{}) (*DatasetArgs, error) {
	args := &DatasetArgs{SaveResults: true, Extra: map[string]interface{}{}}

	for name := range raw {
		if schema.Field(name) == nil {
			return nil, fmt.Errorf("%w: unknown field %q", errors.ErrValidation, name)
		}
	}

	for _, f := range schema {
		val, ok := raw[f.Name]
		if !ok || val == nil {
			if f.Required {
				return nil, fmt.Errorf("%w: missing required field %q", errors.ErrValidation, f.Name)
			}
			continue
		}

		switch {
		case f.Filter: // collected with its dataset id below
		case f.Role == RoleInput || f.Role == RoleOverlay:
			id, err := parseDatasetID(f.Name, val)
			if err != nil {
				return nil, err
			}
			filter, err := optionalString(schema, raw, filterName(f.Name))
			if err != nil {
				return nil, err
			}
			args.Inputs = append(args.Inputs, Binding{Field: f.Source, Role: f.Role, DatasetID: id, Filter: filter})

		case f.Role == RoleOutput:
			id, err := parseDatasetID(f.Name, val)
			if err != nil {
				return nil, err
			}
			args.Output = &Binding{Field: f.Source, Role: RoleOutput, DatasetID: id}

		case f.Name == FieldOwnerID:
			id, err := parseContextID(f.Name, val)
			if err != nil {
				return nil, err
			}
			args.Owner = id

		case f.Name == FieldFolderID:
			id, err := parseContextID(f.Name, val)
			if err != nil {
				return nil, err
			}
			args.Folder = id

		case f.Name == FieldScenarioID:
			id, err := parseContextID(f.Name, val)
			if err != nil {
				return nil, err
			}
			args.Scenario = &id

		case f.Name == FieldSaveResults:
			b, ok := val.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be a boolean", errors.ErrValidation, f.Name)
			}
			args.SaveResults = b

		case f.Name == FieldResultName:
			s, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be a string", errors.ErrValidation, f.Name)
			}
			args.ResultName = s

		default:
			args.Extra[f.Source] = val
		}
	}

	if args.SaveResults && args.Folder == uuid.Nil {
		return nil, fmt.Errorf("%w: %s is required when %s is true", errors.ErrValidation, FieldFolderID, FieldSaveResults)
	}
	return args, nil
}

func filterName(datasetField string) string {
	return datasetField[:len(datasetField)-len(datasetSuffix)] + filterSuffix
}

func parseDatasetID(field string, val interface{}) (uuid.UUID, error) {
	s, ok := val.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: field %q must be a string", errors.ErrValidation, field)
	}
	id, err := utils.ParseID(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: field %q", err, field)
	}
	return id, nil
}

func parseContextID(field string, val interface{}) (uuid.UUID, error) {
	s, ok := val.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: field %q must be a string", errors.ErrValidation, field)
	}
	id, err := utils.ParseID(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: field %q is not a valid id", errors.ErrValidation, field)
	}
	return id, nil
}

func optionalString(schema DerivedSchema, raw map[string]interface{}, name string) (string, error) {
	if schema.Field(name) == nil {
		return "", nil
	}
	val, ok := raw[name]
	if !ok || val == nil {
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", errors.ErrValidation, name)
	}
	return s, nil
}
