package tools

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

var (
	argOwner   = "abc123de-f456-7890-1234-5678901234ab"
	argFolder  = "11111111-2222-3333-4444-555555555555"
	argDataset = "00112233-4455-6677-8899-aabbccddeeff"
	argOverlay = "99887766-5544-3322-1100-ffeeddccbbaa"
)

func clipDerived(t *testing.T) DerivedSchema {
	derived, err := Derive(clipSchema)
	assert.Nil(t, err)
	return derived
}

func TestParseArgs(t *testing.T) {
	args, err := ParseArgs(clipDerived(t), map[string]interface{}{
		"input_dataset_id":   argDataset,
		"input_filter":       "pop > 100",
		"overlay_dataset_id": argOverlay,
		"owner_id":           argOwner,
		"folder_id":          argFolder,
	})
	assert.Nil(t, err)

	assert.Equal(t, uuid.MustParse(argOwner), args.Owner)
	assert.Equal(t, uuid.MustParse(argFolder), args.Folder)
	assert.Nil(t, args.Scenario)
	assert.True(t, args.SaveResults) // defaults on
	assert.Nil(t, args.Output)

	assert.Len(t, args.Inputs, 2)
	assert.Equal(t, "input_path", args.Inputs[0].Field)
	assert.Equal(t, RoleInput, args.Inputs[0].Role)
	assert.Equal(t, uuid.MustParse(argDataset), args.Inputs[0].DatasetID)
	assert.Equal(t, "pop > 100", args.Inputs[0].Filter)
	assert.Equal(t, RoleOverlay, args.Inputs[1].Role)
	assert.Equal(t, "", args.Inputs[1].Filter)
}

func TestParseArgsNormalizesBareHex(t *testing.T) {
	args, err := ParseArgs(clipDerived(t), map[string]interface{}{
		"input_dataset_id":   "00112233445566778899AABBCCDDEEFF",
		"overlay_dataset_id": argOverlay,
		"owner_id":           argOwner,
		"folder_id":          argFolder,
	})
	assert.Nil(t, err)
	assert.Equal(t, uuid.MustParse(argDataset), args.Inputs[0].DatasetID)
}

func TestParseArgsErrors(t *testing.T) {
	cases := []struct {
		Name   string
		Raw    map[string]interface{}
		Expect error
	}{
		{
			Name: "missing required dataset id",
			Raw: map[string]interface{}{
				"overlay_dataset_id": argOverlay,
				"owner_id":           argOwner,
				"folder_id":          argFolder,
			},
			Expect: errors.ErrValidation,
		},
		{
			Name: "malformed dataset id",
			Raw: map[string]interface{}{
				"input_dataset_id":   "not-a-uuid",
				"overlay_dataset_id": argOverlay,
				"owner_id":           argOwner,
				"folder_id":          argFolder,
			},
			Expect: errors.ErrInvalidDatasetID,
		},
		{
			Name: "unknown field",
			Raw: map[string]interface{}{
				"input_dataset_id":   argDataset,
				"overlay_dataset_id": argOverlay,
				"owner_id":           argOwner,
				"folder_id":          argFolder,
				"input_path":         "/etc/passwd",
			},
			Expect: errors.ErrValidation,
		},
		{
			Name: "save_results without folder",
			Raw: map[string]interface{}{
				"input_dataset_id":   argDataset,
				"overlay_dataset_id": argOverlay,
				"owner_id":           argOwner,
			},
			Expect: errors.ErrValidation,
		},
		{
			Name: "mistyped save_results",
			Raw: map[string]interface{}{
				"input_dataset_id":   argDataset,
				"overlay_dataset_id": argOverlay,
				"owner_id":           argOwner,
				"folder_id":          argFolder,
				"save_results":       "yes",
			},
			Expect: errors.ErrValidation,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := ParseArgs(clipDerived(t), c.Raw)
			assert.ErrorIs(t, err, c.Expect)
		})
	}
}

func TestParseArgsSaveResultsFalse(t *testing.T) {
	// no folder needed when results aren't persisted
	args, err := ParseArgs(clipDerived(t), map[string]interface{}{
		"input_dataset_id":   argDataset,
		"overlay_dataset_id": argOverlay,
		"owner_id":           argOwner,
		"save_results":       false,
	})
	assert.Nil(t, err)
	assert.False(t, args.SaveResults)
	assert.Equal(t, uuid.Nil, args.Folder)
}
