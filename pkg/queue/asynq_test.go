package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskRoundTrip(t *testing.T) {
	in := &Task{
		JobID: "4f7c27b8-9a7b-4a3a-bb09-7d2f0a2e8f11",
		Tool:  "clip",
		Args: map[string]interface{}{
			"input_dataset_id": "00112233-4455-6677-8899-aabbccddeeff",
			"input_filter":     "pop > 100",
			"save_results":     false,
		},
	}

	data, err := json.Marshal(in)
	assert.Nil(t, err)

	out := &Task{}
	assert.Nil(t, json.Unmarshal(data, out))
	assert.Equal(t, in.JobID, out.JobID)
	assert.Equal(t, in.Tool, out.Tool)
	assert.Equal(t, "pop > 100", out.Args["input_filter"])
	assert.Equal(t, false, out.Args["save_results"])
}
