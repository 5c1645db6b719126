package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New("a.heic", "a.jpg")
	b := New("b.heic", "b.jpg")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "a.heic", a.InputPath)
	assert.Equal(t, "a.jpg", a.OutputPath)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestResultConstructors(t *testing.T) {
	ok := NewSuccess("t1", "out.jpg", 1024)
	assert.True(t, ok.Success)
	assert.Equal(t, "t1", ok.TaskID)
	assert.Equal(t, int64(1024), ok.Bytes)
	assert.Nil(t, ok.Err)

	fail := NewFailure("t2", CodeConversion, "malformed input")
	assert.False(t, fail.Success)
	require.NotNil(t, fail.Err)
	assert.Equal(t, CodeConversion, fail.Err.Code)
	assert.EqualError(t, fail.Err, "CONVERSION_ERROR: malformed input")
}

func TestResultFailed(t *testing.T) {
	fail := NewFailure("t3", CodeTimeout, "deadline exceeded")

	assert.True(t, fail.Failed(CodeTimeout))
	assert.False(t, fail.Failed(CodeChannel))
	assert.False(t, NewSuccess("t4", "o", 1).Failed(CodeTimeout))
}
