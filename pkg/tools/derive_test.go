package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// clipSchema mirrors a two-source analysis with a pinned output.
var clipSchema = PureSchema{
	{Name: "input_path", Role: RoleInput, Required: true},
	{Name: "overlay_path", Role: RoleOverlay, Required: true},
	{Name: "output_path", Role: RoleOutput},
}

func TestDerive(t *testing.T) {
	derived, err := Derive(clipSchema)
	assert.Nil(t, err)

	names := []string{}
	for _, f := range derived {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"input_dataset_id", "input_filter",
		"overlay_dataset_id", "overlay_filter",
		"output_dataset_id",
		"owner_id", "folder_id", "scenario_id", "save_results", "result_name",
	}, names)

	// no output_filter, ever
	assert.Nil(t, derived.Field("output_filter"))

	// requiredness follows the pure field for inputs; filters and the
	// output id are always optional
	assert.True(t, derived.Field("input_dataset_id").Required)
	assert.False(t, derived.Field("input_filter").Required)
	assert.False(t, derived.Field("output_dataset_id").Required)
	assert.True(t, derived.Field("owner_id").Required)
}

func TestDeriveIsPure(t *testing.T) {
	a, err := Derive(clipSchema)
	assert.Nil(t, err)
	b, err := Derive(clipSchema)
	assert.Nil(t, err)
	assert.Equal(t, a, b)
}

func TestDeriveKeepsValueFields(t *testing.T) {
	derived, err := Derive(PureSchema{
		{Name: "input_path", Role: RoleInput, Required: true},
		{Name: "distance", Role: RoleValue, Required: true},
		{Name: "output_path", Role: RoleOutput},
	})
	assert.Nil(t, err)

	f := derived.Field("distance")
	assert.NotNil(t, f)
	assert.True(t, f.Required)
	assert.Equal(t, "distance", f.Source)
}

func TestDeriveRejects(t *testing.T) {
	// path role fields must be named X_path
	_, err := Derive(PureSchema{{Name: "input", Role: RoleInput, Required: true}})
	assert.NotNil(t, err)

	// at most one output
	_, err = Derive(PureSchema{
		{Name: "a_path", Role: RoleOutput},
		{Name: "b_path", Role: RoleOutput},
	})
	assert.NotNil(t, err)
}
