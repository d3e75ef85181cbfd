package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapgrid/lakeproc/pkg/tools"
)

func TestRegister(t *testing.T) {
	reg := tools.NewRegistry()

	assert.Nil(t, Register(reg))
	assert.Equal(t, []string{"buffer", "clip"}, reg.Names())

	// the dataset-oriented surface each tool exposes
	clip, err := reg.Get("clip")
	assert.Nil(t, err)
	assert.NotNil(t, clip.Derived.Field("input_dataset_id"))
	assert.NotNil(t, clip.Derived.Field("overlay_dataset_id"))
	assert.NotNil(t, clip.Derived.Field("output_dataset_id"))

	buffer, err := reg.Get("buffer")
	assert.Nil(t, err)
	assert.NotNil(t, buffer.Derived.Field("distance"))
	assert.Nil(t, buffer.Derived.Field("distance_dataset_id"))
}

func TestClipQuery(t *testing.T) {
	q := clipQuery("/tmp/a.parquet", "/tmp/b.parquet", "/tmp/out.parquet")

	assert.Contains(t, q, "read_parquet('/tmp/a.parquet') a")
	assert.Contains(t, q, "read_parquet('/tmp/b.parquet') b")
	assert.Contains(t, q, "ST_Intersection")
	assert.Contains(t, q, "TO '/tmp/out.parquet' (FORMAT PARQUET)")
}

func TestBufferQuery(t *testing.T) {
	q := bufferQuery("/tmp/a.parquet", 2.5, "/tmp/out.parquet")

	assert.Contains(t, q, `ST_Buffer("geom", 2.5)`)
	assert.Contains(t, q, "read_parquet('/tmp/a.parquet')")
	assert.Contains(t, q, "TO '/tmp/out.parquet' (FORMAT PARQUET)")
}

func TestQueryQuoting(t *testing.T) {
	q := bufferQuery("/tmp/it's.parquet", 1, "/tmp/out.parquet")

	assert.Contains(t, q, "read_parquet('/tmp/it''s.parquet')")
}

func TestToFloat(t *testing.T) {
	for _, v := range []interface{}{float64(3), float32(3), int(3), int64(3)} {
		f, err := toFloat(v)
		assert.Nil(t, err)
		assert.Equal(t, 3.0, f)
	}

	_, err := toFloat("3")
	assert.NotNil(t, err)
}
