package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linediff/types"
)

func TestGetNumber(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int
		ok       bool
	}{
		{"int64", int64(42), 42, true},
		{"uint64", uint64(7), 7, true},
		{"int8", int8(-3), -3, true},
		{"whole float", float64(12), 12, true},
		{"fractional float", 1.5, 0, false},
		{"string", "12", 0, false},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := getNumber(map[string]any{"n": tt.value}, "n")
			assert.Equal(t, tt.ok, ok, "ok")
			assert.Equal(t, tt.expected, got, "value")
		})
	}
}

func TestGetLines(t *testing.T) {
	lines, err := getLines(map[string]any{"l": []any{"a", "b"}}, "l")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines, "list")

	lines, err = getLines(map[string]any{"l": "a\r\nb"}, "l")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines, "string is split")

	lines, err = getLines(map[string]any{"l": []any{}}, "l")
	require.NoError(t, err)
	assert.Empty(t, lines, "empty table")

	_, err = getLines(map[string]any{"l": []any{"a", int64(1)}}, "l")
	assert.ErrorContains(t, err, "l[2]", "non-string entry")

	_, err = getLines(map[string]any{"l": true}, "l")
	assert.Error(t, err, "wrong type")

	_, err = getLines(map[string]any{}, "l")
	assert.ErrorContains(t, err, `missing "l"`, "missing")
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions(map[string]any{"options": map[string]any{
		"ignore_trim_whitespace":  true,
		"compute_moves":           false,
		"max_computation_time_ms": int64(250),
	}})

	require.NoError(t, err)
	require.NotNil(t, opts.IgnoreTrimWhitespace, "set")
	assert.True(t, *opts.IgnoreTrimWhitespace, "ignore_trim_whitespace")
	require.NotNil(t, opts.ComputeMoves, "set")
	assert.False(t, *opts.ComputeMoves, "compute_moves")
	require.NotNil(t, opts.MaxComputationTimeMs, "set")
	assert.Equal(t, 250, *opts.MaxComputationTimeMs, "max_computation_time_ms")
	assert.Nil(t, opts.ComputeCharChanges, "unset keys keep the defaults")
	assert.Nil(t, opts.ExtendToSubwords, "unset keys keep the defaults")
}

func TestParseOptions_Invalid(t *testing.T) {
	_, err := parseOptions(map[string]any{"options": "fast"})
	assert.Error(t, err, "options must be a table")

	_, err = parseOptions(map[string]any{"options": map[string]any{"max_computation_time_ms": int64(-1)}})
	assert.Error(t, err, "negative budget")

	opts, err := parseOptions(map[string]any{"options": []any{}})
	require.NoError(t, err, "empty table")
	assert.Equal(t, types.DiffOptions{}, opts, "no overrides")
}

func TestParseBufferDiffRequest(t *testing.T) {
	req, err := ParseBufferDiffRequest(map[string]any{
		"original_buf": int64(3),
		"modified_buf": uint64(5),
		"highlight":    true,
	})

	require.NoError(t, err)
	assert.Equal(t, &types.BufferDiffRequest{OriginalBuffer: 3, ModifiedBuffer: 5, Highlight: true}, req, "request")

	_, err = ParseBufferDiffRequest(map[string]any{"original_buf": int64(3)})
	assert.Error(t, err, "missing modified_buf")
}

func TestParseRegionsRequest(t *testing.T) {
	req, err := ParseRegionsRequest(map[string]any{
		"original":         []any{"a"},
		"modified":         []any{"b"},
		"min_hidden_lines": int64(10),
	})

	require.NoError(t, err)
	assert.Equal(t, 10, req.MinHiddenLines, "explicit")
	assert.Equal(t, types.DefaultMinContextLines, req.MinContextLines, "default")
	assert.Equal(t, []string{"a"}, req.Original, "embedded diff request")
}
