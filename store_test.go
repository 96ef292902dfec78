package jsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStore_Basic(t *testing.T) {
	hs := newHandleStore()
	require.NotNil(t, hs)
	assert.Equal(t, 0, hs.Count())

	id := hs.Store("test value")
	assert.NotZero(t, id)
	assert.Equal(t, 1, hs.Count())

	value, ok := hs.Load(id)
	assert.True(t, ok)
	assert.Equal(t, "test value", value)

	assert.True(t, hs.Delete(id))
	assert.Equal(t, 0, hs.Count())

	value, ok = hs.Load(id)
	assert.False(t, ok)
	assert.Nil(t, value)

	// a second delete is a no-op
	assert.False(t, hs.Delete(id))
}

func TestHandleStore_MultipleValues(t *testing.T) {
	hs := newHandleStore()

	values := []any{
		"string",
		42,
		[]int{1, 2, 3},
		map[string]int{"key": 123},
		nil,
	}

	ids := make([]uintptr, len(values))
	for i, v := range values {
		ids[i] = hs.Store(v)
	}
	assert.Equal(t, len(values), hs.Count())

	seen := make(map[uintptr]bool)
	for i, want := range values {
		assert.False(t, seen[ids[i]], "ids must be unique")
		seen[ids[i]] = true

		got, ok := hs.Load(ids[i])
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	fn := func() int { return 42 }
	fnID := hs.Store(fn)
	loaded, ok := hs.Load(fnID)
	require.True(t, ok)
	assert.Equal(t, 42, loaded.(func() int)())
}

func TestHandleStore_Clear(t *testing.T) {
	hs := newHandleStore()
	ids := []uintptr{hs.Store(1), hs.Store(2), hs.Store(3)}
	assert.Equal(t, 3, hs.Count())

	hs.Clear()
	assert.Equal(t, 0, hs.Count())
	for _, id := range ids {
		_, ok := hs.Load(id)
		assert.False(t, ok)
	}

	// the store stays usable after Clear
	id := hs.Store("again")
	got, ok := hs.Load(id)
	assert.True(t, ok)
	assert.Equal(t, "again", got)
}

func TestHandleStore_UnknownID(t *testing.T) {
	hs := newHandleStore()
	_, ok := hs.Load(12345)
	assert.False(t, ok)
	assert.False(t, hs.Delete(12345))
}
