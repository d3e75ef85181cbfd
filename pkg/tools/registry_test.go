package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

func noopRun(ctx context.Context, args *PureArgs) (*PureResult, error) {
	return &PureResult{OutputPath: args.OutputPath}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.Nil(t, r.Register("clip", CategoryShort, clipSchema, noopRun))
	assert.Nil(t, r.Register("buffer", CategoryLong, PureSchema{
		{Name: "input_path", Role: RoleInput, Required: true},
		{Name: "distance", Role: RoleValue, Required: true},
		{Name: "output_path", Role: RoleOutput},
	}, noopRun))

	tool, err := r.Get("clip")
	assert.Nil(t, err)
	assert.Equal(t, CategoryShort, tool.Category)
	assert.NotNil(t, tool.Derived.Field("input_dataset_id"))

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, errors.ErrNoSuchTool)

	assert.Equal(t, []string{"buffer", "clip"}, r.Names())

	// duplicate registration
	assert.NotNil(t, r.Register("clip", CategoryShort, clipSchema, noopRun))

	// broken schemas are rejected at registration
	assert.NotNil(t, r.Register("bad", CategoryShort, PureSchema{
		{Name: "input", Role: RoleInput, Required: true},
	}, noopRun))
}

func TestCategoryTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, CategoryShort.Timeout())
	assert.Equal(t, 120*time.Second, CategoryLong.Timeout())
}
