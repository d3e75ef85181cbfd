package tools

// Role classifies a field in a tool's pure parameter shape.
type Role string

const (
	// RoleValue fields pass through derivation unchanged.
	RoleValue Role = "value"

	// RoleInput / RoleOverlay are path fields holding source data; both
	// derive a dataset id and a filter.
	RoleInput   Role = "input"
	RoleOverlay Role = "overlay"

	// RoleOutput is the path field the tool writes its result to; it
	// derives a dataset id only, filters never apply to outputs.
	RoleOutput Role = "output"
)

// PureField is one field of a tool's pure parameter shape, the shape
// the compute function actually takes. Path role fields must be named
// X_path.
type PureField struct {
	Name     string
	Role     Role
	Required bool
}

// PureSchema is a tool's pure parameter shape, in declaration order.
type PureSchema []PureField

// DerivedField is one field of the dataset-oriented shape callers
// submit jobs with.
type DerivedField struct {
	Name     string
	Required bool

	// Role of the pure field this derives from; context fields carry
	// RoleValue and an empty Source.
	Role   Role
	Source string

	// Filter marks the X_filter companion of a dataset id field.
	Filter bool
}

// DerivedSchema is the dataset-oriented shape, in derivation order:
// derived fields first (following pure declaration order), then the
// fixed context fields.
type DerivedSchema []DerivedField

// Field returns the derived field by name, or nil.
func (d DerivedSchema) Field(name string) *DerivedField {
	for i := range d {
		if d[i].Name == name {
			return &d[i]
		}
	}
	return nil
}
