package text

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffResult_HunksPlainChanges(t *testing.T) {
	original := []string{"a", "b", "c"}
	modified := []string{"a", "B", "c", "d"}
	result := ComputeDiff(context.Background(), original, modified, Options{})

	hunks := result.Hunks()

	require.Len(t, hunks, len(result.Changes), "one hunk per change")
	for i, h := range hunks {
		assert.False(t, h.Moved, "not moved")
		assert.Equal(t, result.Changes[i], h.LineRangeMapping, "change %d", i)
	}
	assert.Equal(t, result.Changes, result.LineChanges(), "nothing to put back")
}

func TestDiffResult_HunksRestoreMovedBlocks(t *testing.T) {
	original := []string{"a", "b", "c", "d", "e", "f"}
	modified := []string{"d", "e", "f", "a", "b", "c"}
	result := ComputeDiff(context.Background(), original, modified, Options{ComputeMoves: true})
	require.Len(t, result.Moves, 1, "moves")
	require.Empty(t, result.Changes, "changes")

	hunks := result.Hunks()

	require.Len(t, hunks, 2, "deletion and insertion")
	var deleted, inserted []string
	for _, h := range hunks {
		assert.True(t, h.Moved, "moved")
		switch {
		case h.Modified.IsEmpty():
			deleted = linesOf(original, h.Original)
		case h.Original.IsEmpty():
			inserted = linesOf(modified, h.Modified)
		default:
			t.Fatalf("hunk %s is neither a deletion nor an insertion", h.LineRangeMapping)
		}
	}
	assert.Equal(t, deleted, inserted, "same block on both sides")

	restored := &DiffResult{Changes: result.LineChanges(), Moves: []MovedBlock{}}
	assert.NoError(t, Validate(restored, original, modified), "restored hunks line up")
}

func TestDiffResult_HunksInterleaveWithChanges(t *testing.T) {
	result := &DiffResult{
		Changes: []LineRangeMapping{
			{Original: NewLineRange(8, 9), Modified: NewLineRange(5, 6)},
			{Original: NewLineRange(11, 12), Modified: NewLineRange(11, 12)},
		},
		Moves: []MovedBlock{{Original: NewLineRange(2, 5), Modified: NewLineRange(7, 10)}},
	}

	assert.Equal(t, []LineRangeMapping{
		{Original: NewLineRange(2, 5), Modified: NewLineRange(2, 2)},
		{Original: NewLineRange(8, 9), Modified: NewLineRange(5, 6)},
		{Original: NewLineRange(10, 10), Modified: NewLineRange(7, 10)},
		{Original: NewLineRange(11, 12), Modified: NewLineRange(11, 12)},
	}, result.LineChanges(), "moved halves placed by their unchanged gaps")
}

func TestDiffResult_HunksSkipMovesInsideChanges(t *testing.T) {
	result := &DiffResult{
		Changes: []LineRangeMapping{{Original: NewLineRange(1, 10), Modified: NewLineRange(1, 10)}},
		Moves:   []MovedBlock{{Original: NewLineRange(2, 5), Modified: NewLineRange(6, 9)}},
	}

	hunks := result.Hunks()

	require.Len(t, hunks, 1, "move already covered")
	assert.False(t, hunks[0].Moved, "plain change")
}
