package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowKeepsAssignmentOrder(t *testing.T) {
	r := NewRow("user")
	require.NoError(t, r.Set("name", "John"))
	require.NoError(t, r.Set("email", "john@example.com"))
	require.NoError(t, r.Set("name", "Jane"))

	assert.Equal(t, []string{"name", "email"}, r.Fields())
	v, ok := r.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Jane", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Error(t, r.Set("", 1))
}

func TestRowID(t *testing.T) {
	r := NewRow("user")
	assert.Nil(t, r.ID())
	r.SetID(int64(7))
	assert.Equal(t, int64(7), r.ID())
}

func TestCriteria(t *testing.T) {
	c := Criteria{"type": "image", "user_id": 1}
	assert.Equal(t, []string{"type", "user_id"}, c.Keys())

	assert.True(t, c.Match(Record{"type": "image", "user_id": "1", "path": "a.png"}))
	assert.True(t, c.Match(Record{"type": "image", "user_id": float64(1)}))
	assert.False(t, c.Match(Record{"type": "video", "user_id": 1}))
	assert.False(t, c.Match(Record{"type": "image"}))
	assert.True(t, Criteria(nil).Match(Record{"a": 1}))
}
