package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

func TestNormalizeID(t *testing.T) {
	cases := []struct {
		Name   string
		In     string
		Expect string
		Err    error
	}{
		{Name: "bare hex uppercase", In: "ABC123DEF456789012345678901234AB", Expect: "abc123de-f456-7890-1234-5678901234ab"},
		{Name: "bare hex lowercase", In: "abc123def456789012345678901234ab", Expect: "abc123de-f456-7890-1234-5678901234ab"},
		{Name: "canonical", In: "abc123de-f456-7890-1234-5678901234ab", Expect: "abc123de-f456-7890-1234-5678901234ab"},
		{Name: "canonical uppercase", In: "ABC123DE-F456-7890-1234-5678901234AB", Expect: "abc123de-f456-7890-1234-5678901234ab"},
		// hyphens are stripped before validation, so placement is free
		{Name: "odd hyphen placement", In: "abc123def456-789012345678901234ab", Expect: "abc123de-f456-7890-1234-5678901234ab"},
		{Name: "too short", In: "abc123def456789012345678901234a", Err: errors.ErrInvalidDatasetID},
		{Name: "too long", In: "abc123def456789012345678901234abc", Err: errors.ErrInvalidDatasetID},
		{Name: "not hex", In: "zbc123def456789012345678901234ab", Err: errors.ErrInvalidDatasetID},
		{Name: "empty", In: "", Err: errors.ErrInvalidDatasetID},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			got, err := NormalizeID(c.In)

			if c.Err != nil {
				assert.ErrorIs(t, err, c.Err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, c.Expect, got)

			// normalizing is idempotent
			again, err := NormalizeID(got)
			assert.Nil(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("ABC123DEF456789012345678901234AB"))
	assert.True(t, IsValidID(NewRandomID()))
	assert.False(t, IsValidID("not-an-id"))
	assert.False(t, IsValidID(""))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("ABC123DEF456789012345678901234AB")
	assert.Nil(t, err)
	assert.Equal(t, "abc123de-f456-7890-1234-5678901234ab", id.String())

	_, err = ParseID("nope")
	assert.ErrorIs(t, err, errors.ErrInvalidDatasetID)
}
