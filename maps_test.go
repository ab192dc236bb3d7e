package collectiontools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterValues(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]int
		keep     func(int) bool
		expected map[string]int
	}{
		{
			name:     "keeps matching values",
			input:    map[string]int{"a": 1, "b": 2, "c": 30},
			keep:     func(v int) bool { return v < 10 },
			expected: map[string]int{"a": 1, "b": 2},
		},
		{
			name:     "keeps nothing",
			input:    map[string]int{"a": 1},
			keep:     func(int) bool { return false },
			expected: map[string]int{},
		},
		{
			name:     "nil input",
			input:    nil,
			keep:     func(int) bool { return true },
			expected: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterValues(tt.input, tt.keep)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFilterValuesDoesNotMutate(t *testing.T) {
	input := map[string]int{"a": 1, "b": 20}
	FilterValues(input, func(v int) bool { return v < 10 })
	assert.Equal(t, map[string]int{"a": 1, "b": 20}, input)
}

func TestMapValues(t *testing.T) {
	got := MapValues(map[string]int{"a": 1, "b": 2}, func(v int) int { return 2 * v })
	assert.Equal(t, map[string]int{"a": 2, "b": 4}, got)
}

func TestMapValuesChangesValueType(t *testing.T) {
	got := MapValues(map[string]int{"a": 1, "b": 2}, func(v int) string {
		return strings.Repeat("x", v)
	})
	assert.Equal(t, map[string]string{"a": "x", "b": "xx"}, got)
}

func TestMapValuesEmpty(t *testing.T) {
	assert.Empty(t, MapValues[string](nil, func(v int) int { return v }))
}

func TestMapLeaves(t *testing.T) {
	double := func(v any) any { return 2 * v.(int) }

	input := map[string]any{
		"a": 1,
		"b": map[string]any{"c": 3, "d": map[string]any{"e": 5}},
	}
	got := MapLeaves(input, double)

	expected := map[string]any{
		"a": 2,
		"b": map[string]any{"c": 6, "d": map[string]any{"e": 10}},
	}
	assert.Equal(t, expected, got)

	// The input tree must be left untouched.
	assert.Equal(t, 1, input["a"])
	assert.Equal(t, 3, input["b"].(map[string]any)["c"])
}

func TestMapLeavesTreatsOtherMapTypesAsLeaves(t *testing.T) {
	leaf := map[int]string{1: "one"}
	got := MapLeaves(map[string]any{"a": leaf}, func(v any) any { return v })
	assert.Equal(t, leaf, got["a"])
}

func TestAppendValues(t *testing.T) {
	x := map[string][]int{}
	x = AppendValues(x, map[string]int{"a": 1, "b": 2})
	x = AppendValues(x, map[string]int{"a": 3, "b": 4})

	assert.Equal(t, map[string][]int{"a": {1, 3}, "b": {2, 4}}, x)
}

func TestAppendValuesAllocatesForNil(t *testing.T) {
	got := AppendValues(nil, map[string]int{"a": 1})
	require.NotNil(t, got)
	assert.Equal(t, map[string][]int{"a": {1}}, got)
}

func TestAppendValuesNewKeysJoinExisting(t *testing.T) {
	x := map[string][]int{"a": {1}}
	x = AppendValues(x, map[string]int{"b": 2})
	assert.Equal(t, map[string][]int{"a": {1}, "b": {2}}, x)
}
