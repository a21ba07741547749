package idmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddGetHas(t *testing.T) {
	s := New()

	assert.False(t, s.Has("User", 1))
	assert.Nil(t, s.Get("User", 1))

	s.Add("User", 1, int64(10))
	assert.True(t, s.Has("User", 1))
	assert.Equal(t, int64(10), s.Get("User", 1))

	assert.False(t, s.Has("Post", 1))
	assert.Nil(t, s.Get("Post", 1))
}

func TestKeysAreNormalized(t *testing.T) {
	s := New()
	s.Add("User", int64(5), int64(50))

	for _, old := range []interface{}{5, int32(5), int64(5), uint(5), float64(5), float32(5), "5", []byte("5")} {
		assert.True(t, s.Has("User", old), "%#v", old)
		assert.Equal(t, int64(50), s.Get("User", old), "%#v", old)
	}

	s.Add("Tag", "abc", int64(1))
	assert.True(t, s.Has("Tag", "abc"))
	assert.False(t, s.Has("Tag", "ABC"))
	assert.False(t, s.Has("User", 5.5))
	assert.False(t, s.Has("User", "5.0"))
	assert.False(t, s.Has("User", " 5 "))
}

func TestNonCanonicalStringsStayDistinct(t *testing.T) {
	s := New()
	s.Add("Code", "007", int64(1))
	s.Add("Code", "7", int64(2))
	s.Add("Code", "-0", int64(3))

	assert.Equal(t, 3, s.Len("Code"))
	assert.Equal(t, int64(1), s.Get("Code", "007"))
	assert.Equal(t, int64(2), s.Get("Code", "7"))
	assert.Equal(t, int64(2), s.Get("Code", 7))
	assert.Equal(t, int64(3), s.Get("Code", "-0"))
	assert.Nil(t, s.Get("Code", 0))
}

func TestDuplicateOverwrites(t *testing.T) {
	s := New()
	s.Add("User", 1, int64(10))
	s.Add("User", "1", int64(11))

	assert.Equal(t, int64(11), s.Get("User", 1))
	assert.Equal(t, 1, s.Len("User"))
}
