package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccess(t *testing.T) {
	r := Success(int64(42))
	assert.True(t, r.IsSuccess())
	assert.Equal(t, int64(42), r.Value())
	assert.Nil(t, r.Errors())
	assert.Equal(t, KindNone, r.Kind())
}

func TestFailure(t *testing.T) {
	r := Failure[int64]("first", "second")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, []string{"first", "second"}, r.Errors())
	assert.Equal(t, KindRule, r.Kind())
	assert.Equal(t, "first; second", r.Error())

	errs := r.Errors()
	errs[0] = "changed"
	assert.Equal(t, "first", r.Errors()[0])
}

func TestNotFound(t *testing.T) {
	r := NotFound[string]("Student not found")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, KindNotFound, r.Kind())
}

func TestMap(t *testing.T) {
	doubled := Map(Success(21), func(v int) int { return v * 2 })
	assert.Equal(t, 42, doubled.Value())

	failed := Map(NotFound[int]("gone"), func(v int) string { return "never" })
	assert.False(t, failed.IsSuccess())
	assert.Equal(t, KindNotFound, failed.Kind())
	assert.Equal(t, []string{"gone"}, failed.Errors())
}
