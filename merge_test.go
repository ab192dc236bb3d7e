package collectiontools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnion(t *testing.T) {
	x := map[string]int{"a": 1, "b": 2}

	got := Union(x, map[string]int{"b": 20, "c": 3})
	assert.Equal(t, map[string]int{"a": 1, "b": 20, "c": 3}, got)

	// The receiver must not be mutated.
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, x)
}

func TestUnionDelete(t *testing.T) {
	x := map[string]int{"a": 1, "b": 2, "c": 3}

	got := Union(x, nil, "b", "c")
	assert.Equal(t, map[string]int{"a": 1}, got)
	assert.Len(t, x, 3)
}

func TestUnionSetAndDelete(t *testing.T) {
	x := map[string]int{"a": 1, "b": 2}

	got := Union(x, map[string]int{"c": 3}, "a")
	assert.Equal(t, map[string]int{"b": 2, "c": 3}, got)
}

func TestUnionDeleteWinsOverSet(t *testing.T) {
	got := Union(map[string]int{"a": 1}, map[string]int{"b": 2}, "b")
	assert.Equal(t, map[string]int{"a": 1}, got)
}

func TestUnionNil(t *testing.T) {
	got := Union(nil, map[string]int{"a": 1})
	assert.Equal(t, map[string]int{"a": 1}, got)
}

func TestUpdate(t *testing.T) {
	x := map[string]int{"a": 1, "b": 2}

	got := Update(x, map[string]int{"b": 20, "c": 3}, "a")
	assert.Equal(t, map[string]int{"b": 20, "c": 3}, got)

	// Update mutates in place and returns its receiver.
	assert.Equal(t, got, x)
}

func TestUpdateNil(t *testing.T) {
	got := Update(nil, map[string]int{"a": 1})
	require.NotNil(t, got)
	assert.Equal(t, map[string]int{"a": 1}, got)
}

func TestUpdateDeleteMissingKey(t *testing.T) {
	got := Update(map[string]int{"a": 1}, nil, "zzz")
	assert.Equal(t, map[string]int{"a": 1}, got)
}
