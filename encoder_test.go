package taskq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONEncoder_ListResultShape(t *testing.T) {
	enc := &JSONEncoder{}
	in := ListResult{
		Tasks:       []Task{{ID: "t1", OwnerID: "u1", Title: "x", Priority: PriorityHigh, Status: StatusPending, CreatedAt: 1730000000000}},
		TotalPages:  1,
		CurrentPage: 1,
		TotalTasks:  1,
	}
	data, err := enc.Encode(in)
	require.NoError(t, err)

	var shape map[string]any
	require.NoError(t, enc.Decode(data, &shape))
	assert.Contains(t, shape, "tasks")
	assert.Contains(t, shape, "totalPages")
	assert.Contains(t, shape, "currentPage")
	assert.Contains(t, shape, "totalTasks")

	var out ListResult
	require.NoError(t, enc.Decode(data, &out))
	assert.Equal(t, in, out)
}

func TestJSONEncoder_DecodeError(t *testing.T) {
	enc := &JSONEncoder{}
	var out ListResult
	err := enc.Decode([]byte("{"), &out)
	require.Error(t, err, "expected error for invalid JSON")
}

func TestJSONEncoder_Strict_RejectsUnknownFields(t *testing.T) {
	data := []byte(`{"tasks":[],"totalPages":0,"currentPage":1,"totalTasks":0,"cursor":"abc"}`)

	var out ListResult
	err := (&JSONEncoder{Strict: true}).Decode(data, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taskq: decode page")

	out = ListResult{}
	require.NoError(t, (&JSONEncoder{}).Decode(data, &out))
	assert.Equal(t, 1, out.CurrentPage)
}
