package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linediff/text"
	"linediff/types"
)

func newTestEngine(t *testing.T, config EngineConfig) (*Engine, *mockBuffer) {
	t.Helper()
	buf := newMockBuffer()
	e, err := NewEngine(buf, config)
	require.NoError(t, err)
	return e, buf
}

func boolPtr(v bool) *bool { return &v }

func TestNewEngine_NilBuffer(t *testing.T) {
	_, err := NewEngine(nil, EngineConfig{})
	assert.Error(t, err, "buffer is required")
}

func TestEngine_StartStop(t *testing.T) {
	defer leaktest.Check(t)()

	e, _ := newTestEngine(t, EngineConfig{StatsInterval: 5 * time.Millisecond})
	e.Start(context.Background())

	_, err := e.Compute(context.Background(), &types.DiffRequest{Original: []string{"a"}, Modified: []string{"b"}})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond) // let the stats loop tick

	e.Stop()
	e.Stop() // idempotent
}

func TestEngine_StartAfterStop(t *testing.T) {
	defer leaktest.Check(t)()

	e, _ := newTestEngine(t, EngineConfig{})
	e.Stop()
	e.Start(context.Background())

	assert.False(t, e.Dispatch(EventLogStats), "no events after stop")
}

func TestEngine_ComputeUsesCache(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{Defaults: text.Options{ComputeCharChanges: true}})
	req := &types.DiffRequest{Original: []string{"hello world"}, Modified: []string{"hello there"}}

	first, err := e.Compute(context.Background(), req)
	require.NoError(t, err)
	second, err := e.Compute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Changes, second.Changes, "same changes")
	stats := e.Stats()
	assert.Equal(t, int64(2), stats.Requests, "requests")
	assert.Equal(t, int64(1), stats.CacheHits, "second request is a hit")
	assert.Equal(t, int64(2), stats.Hunks, "hunks of both requests")
	assert.Equal(t, int64(2), stats.Additions, "one added line per request")
	assert.Equal(t, int64(2), stats.Deletions, "one deleted line per request")
}

func TestEngine_OptionsOverrideDefaults(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{Defaults: text.Options{ComputeCharChanges: true}})
	original, modified := []string{"a", "b"}, []string{"a", "c"}

	withChars, err := e.Compute(context.Background(), &types.DiffRequest{Original: original, Modified: modified})
	require.NoError(t, err)
	linesOnly, err := e.Compute(context.Background(), &types.DiffRequest{
		Original: original,
		Modified: modified,
		Options:  types.DiffOptions{ComputeCharChanges: boolPtr(false)},
	})
	require.NoError(t, err)

	require.Len(t, withChars.Changes, 1, "changes")
	require.Len(t, linesOnly.Changes, 1, "changes")
	assert.NotEmpty(t, withChars.Changes[0].InnerChanges, "defaults ask for char changes")
	assert.Nil(t, linesOnly.Changes[0].InnerChanges, "override disables them")
	assert.Equal(t, int64(0), e.Stats().CacheHits, "different options do not share cache entries")
}

func TestEngine_ComputeAfterStop(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})
	e.Start(context.Background())
	e.Stop()

	_, err := e.Compute(context.Background(), &types.DiffRequest{Original: []string{"a"}, Modified: []string{"b"}})

	assert.ErrorIs(t, err, ErrStopped)
	assert.ErrorIs(t, e.ClearHighlights(1), ErrStopped)
}

func TestEngine_NilRequests(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})

	_, err := e.Compute(context.Background(), nil)
	assert.Error(t, err, "nil diff request")
	_, err = e.ComputeBuffers(context.Background(), nil)
	assert.Error(t, err, "nil buffer request")
	_, err = e.UnchangedRegions(context.Background(), nil)
	assert.Error(t, err, "nil regions request")
}

func TestEngine_ComputeBuffers(t *testing.T) {
	e, buf := newTestEngine(t, EngineConfig{Defaults: text.Options{ComputeCharChanges: true}})

	result, err := e.ComputeBuffers(context.Background(), &types.BufferDiffRequest{OriginalBuffer: 1, ModifiedBuffer: 2, Highlight: true})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Changes, "buffers differ")
	assert.NoError(t, text.Validate(result, buf.buffers[1], buf.buffers[2]), "valid result")
	assert.Equal(t, 1, buf.highlightCalls, "highlighted")
	assert.Equal(t, 1, buf.lastHighlight.originalBuf, "original buffer")
	assert.Equal(t, 2, buf.lastHighlight.modifiedBuf, "modified buffer")
	assert.Same(t, result, buf.lastHighlight.result, "highlighted result")
}

func TestEngine_ComputeBuffersWithoutHighlight(t *testing.T) {
	e, buf := newTestEngine(t, EngineConfig{})

	_, err := e.ComputeBuffers(context.Background(), &types.BufferDiffRequest{OriginalBuffer: 1, ModifiedBuffer: 2})

	require.NoError(t, err)
	assert.Equal(t, 0, buf.highlightCalls, "not highlighted")
}

func TestEngine_ComputeBuffersError(t *testing.T) {
	e, buf := newTestEngine(t, EngineConfig{})
	buf.err = errors.New("buffer gone")

	_, err := e.ComputeBuffers(context.Background(), &types.BufferDiffRequest{OriginalBuffer: 1, ModifiedBuffer: 2, Highlight: true})

	assert.EqualError(t, err, "buffer gone")
	assert.Equal(t, 0, buf.highlightCalls, "nothing drawn")
	assert.Equal(t, int64(0), e.Stats().Requests, "no diff computed")
}

func TestEngine_UnchangedRegions(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})
	var original, modified []string
	for i := 1; i <= 20; i++ {
		original = append(original, fmt.Sprintf("line %d", i))
		modified = append(modified, fmt.Sprintf("line %d", i))
	}
	modified[9] = "changed"

	regions, err := e.UnchangedRegions(context.Background(), &types.RegionsRequest{
		DiffRequest:     types.DiffRequest{Original: original, Modified: modified},
		MinHiddenLines:  types.DefaultMinHiddenLines,
		MinContextLines: types.DefaultMinContextLines,
	})

	require.NoError(t, err)
	assert.Equal(t, []text.UnchangedRegion{
		{OriginalLine: 1, ModifiedLine: 1, LineCount: 6},
		{OriginalLine: 14, ModifiedLine: 14, LineCount: 7},
	}, regions, "regions around the change")
}

func TestEngine_UnchangedRegionsKeepMovedLines(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})
	head := []string{"head 1", "head 2", "head 3"}
	block := []string{"alpha", "beta", "gamma"}
	rest := []string{"x1", "x2", "x3", "x4", "x5", "x6"}
	original := concat(head, block, rest, []string{"tail"})
	modified := concat(head, rest, block, []string{"tail"})

	regions, err := e.UnchangedRegions(context.Background(), &types.RegionsRequest{
		DiffRequest:     types.DiffRequest{Original: original, Modified: modified, Options: types.DiffOptions{ComputeMoves: boolPtr(true)}},
		MinHiddenLines:  1,
		MinContextLines: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, []text.UnchangedRegion{
		{OriginalLine: 1, ModifiedLine: 1, LineCount: 2},
		{OriginalLine: 8, ModifiedLine: 5, LineCount: 4},
	}, regions, "moved block stays visible")
	for _, r := range regions {
		assert.Equal(t,
			original[r.OriginalLine-1:r.OriginalLine-1+r.LineCount],
			modified[r.ModifiedLine-1:r.ModifiedLine-1+r.LineCount],
			"region %+v folds equal lines", r)
	}
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestEngine_UnchangedRegionsNegative(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})

	_, err := e.UnchangedRegions(context.Background(), &types.RegionsRequest{MinHiddenLines: -1})

	assert.Error(t, err, "negative sizes")
}

func TestEngine_ClearCacheEvent(t *testing.T) {
	defer leaktest.Check(t)()

	e, _ := newTestEngine(t, EngineConfig{})
	e.Start(context.Background())
	defer e.Stop()

	_, err := e.Compute(context.Background(), &types.DiffRequest{Original: []string{"a"}, Modified: []string{"b"}})
	require.NoError(t, err)
	require.Equal(t, 1, e.cache.Len(), "cached")

	assert.True(t, e.Dispatch(EventClearCache), "queued")
	assert.Eventually(t, func() bool { return e.cache.Len() == 0 }, time.Second, 5*time.Millisecond, "cache cleared")
}

func TestEngine_ResetStatsEvent(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})
	e.Start(context.Background())
	defer e.Stop()

	_, err := e.Compute(context.Background(), &types.DiffRequest{Original: []string{"a"}, Modified: []string{"b"}})
	require.NoError(t, err)

	assert.True(t, e.Dispatch(EventResetStats), "queued")
	assert.Eventually(t, func() bool { return e.Stats().Requests == 0 }, time.Second, 5*time.Millisecond, "stats reset")
}

func TestEngine_CancelledContext(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var original, modified []string
	for i := 0; i < 200; i++ {
		original = append(original, fmt.Sprintf("a%d", i))
		modified = append(modified, fmt.Sprintf("b%d", i%7))
	}
	req := &types.DiffRequest{Original: original, Modified: modified}

	result, err := e.Compute(ctx, req)

	require.NoError(t, err, "timeouts are not errors")
	assert.True(t, result.HitTimeout, "cancelled")
	assert.Equal(t, 0, e.cache.Len(), "partial results are not cached")
	assert.Equal(t, int64(1), e.Stats().Timeouts, "timeouts")
}

func TestEngine_HandleCompute(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})

	out, err := e.handleCompute(map[string]any{
		"original": []any{"a", "b"},
		"modified": "a\nc\n",
		"options":  map[string]any{"compute_char_changes": true},
	})

	require.NoError(t, err)
	changes := out["changes"].([]map[string]any)
	require.Len(t, changes, 1, "changes")
	assert.Equal(t, map[string]any{"start": 2, "end_exclusive": 3}, changes[0]["original"], "original range")
	assert.Contains(t, changes[0], "inner_changes", "char changes requested")
	assert.Equal(t, false, out["hit_timeout"], "hit_timeout")
}

func TestEngine_HandleComputeBadRequest(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})

	_, err := e.handleCompute(map[string]any{"original": []any{"a"}})

	assert.ErrorContains(t, err, `missing "modified"`)
}

func TestEngine_HandleUnchangedRegions(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})

	out, err := e.handleUnchangedRegions(map[string]any{
		"original":          []any{"a", "b", "c", "d"},
		"modified":          []any{"a", "b", "c", "x"},
		"min_hidden_lines":  int64(1),
		"min_context_lines": int64(1),
	})

	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"original_line": 1, "modified_line": 1, "line_count": 2}}, out, "regions")
}

func TestEngine_ClearHighlights(t *testing.T) {
	e, buf := newTestEngine(t, EngineConfig{})

	require.NoError(t, e.ClearHighlights(3, 4))

	assert.Equal(t, []int{3, 4}, buf.cleared, "cleared buffers")
}
