package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetRange_Intersect(t *testing.T) {
	r, ok := OffsetRange{0, 5}.Intersect(OffsetRange{3, 8})
	assert.True(t, ok, "overlapping ranges intersect")
	assert.Equal(t, OffsetRange{3, 5}, r, "intersection")

	r, ok = OffsetRange{0, 3}.Intersect(OffsetRange{3, 8})
	assert.True(t, ok, "touching ranges intersect")
	assert.True(t, r.IsEmpty(), "touching intersection is empty")

	_, ok = OffsetRange{0, 2}.Intersect(OffsetRange{3, 8})
	assert.False(t, ok, "disjoint ranges")

	assert.False(t, OffsetRange{0, 3}.Intersects(OffsetRange{3, 8}), "touching ranges share no position")
	assert.True(t, OffsetRange{0, 4}.Intersects(OffsetRange{3, 8}), "overlap")
}

func TestOffsetRange_JoinAndDelta(t *testing.T) {
	assert.Equal(t, OffsetRange{1, 9}, OffsetRange{4, 9}.Join(OffsetRange{1, 2}), "join")
	assert.Equal(t, OffsetRange{3, 5}, OffsetRange{1, 3}.Delta(2), "delta")
	assert.Equal(t, 4, OffsetRange{2, 6}.Len(), "length")
	assert.True(t, OffsetRange{2, 6}.Contains(2), "contains start")
	assert.False(t, OffsetRange{2, 6}.Contains(6), "excludes end")
}

func TestLineRange_OverlapOrTouch(t *testing.T) {
	assert.True(t, NewLineRange(1, 3).OverlapOrTouch(NewLineRange(3, 5)), "touching")
	assert.True(t, NewLineRange(3, 3).OverlapOrTouch(NewLineRange(1, 3)), "empty range touching end")
	assert.False(t, NewLineRange(1, 3).OverlapOrTouch(NewLineRange(4, 5)), "gap of one line")
	assert.Equal(t, OffsetRange{0, 2}, NewLineRange(1, 3).ToOffsetRange(), "offset range")
}

func TestInvertSequenceDiffs(t *testing.T) {
	diffs := []SequenceDiff{
		{Seq1: OffsetRange{1, 2}, Seq2: OffsetRange{1, 3}},
		{Seq1: OffsetRange{4, 4}, Seq2: OffsetRange{5, 6}},
	}
	got := invertSequenceDiffs(diffs, 6)

	want := []SequenceDiff{
		{Seq1: OffsetRange{0, 1}, Seq2: OffsetRange{0, 1}},
		{Seq1: OffsetRange{2, 4}, Seq2: OffsetRange{3, 5}},
		{Seq1: OffsetRange{4, 6}, Seq2: OffsetRange{6, 8}},
	}
	assert.Equal(t, want, got, "equal stretches")
}

func TestDiffResult_Flip(t *testing.T) {
	result := &DiffResult{
		Changes: []LineRangeMapping{{
			Original: NewLineRange(1, 2),
			Modified: NewLineRange(1, 3),
			InnerChanges: []RangeMapping{{
				Original: Range{1, 1, 1, 4},
				Modified: Range{1, 1, 2, 2},
			}},
		}},
		Moves: []MovedBlock{{
			Original:     NewLineRange(5, 8),
			Modified:     NewLineRange(10, 13),
			InnerChanges: []RangeMapping{},
		}},
		HitTimeout: true,
	}

	flipped := result.Flip()
	assert.Equal(t, NewLineRange(1, 3), flipped.Changes[0].Original, "original side")
	assert.Equal(t, Range{1, 1, 2, 2}, flipped.Changes[0].InnerChanges[0].Original, "inner original")
	assert.Equal(t, NewLineRange(10, 13), flipped.Moves[0].Original, "move original")
	assert.NotNil(t, flipped.Moves[0].InnerChanges, "move inner changes stay non-nil")
	assert.True(t, flipped.HitTimeout, "timeout flag")
	assert.Equal(t, result, flipped.Flip(), "flip twice")
}
