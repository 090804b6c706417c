package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinSequenceDiffsByShifting_MergesSlidingInsertions(t *testing.T) {
	seq1 := intSequence{5}
	seq2 := intSequence{5, 5, 5}
	diffs := []SequenceDiff{
		{Seq1: OffsetRange{0, 0}, Seq2: OffsetRange{0, 1}},
		{Seq1: OffsetRange{1, 1}, Seq2: OffsetRange{2, 3}},
	}

	got := joinSequenceDiffsByShifting(seq1, seq2, diffs)
	assert.Equal(t, []SequenceDiff{{Seq1: OffsetRange{0, 0}, Seq2: OffsetRange{0, 2}}}, got, "insertions merged")
}

func TestShiftSequenceDiffs_PrefersLowIndentation(t *testing.T) {
	table := newHashTable()
	seq1 := newLineSequence([]string{
		"f() {",
		"  x",
		"}",
	}, table)
	seq2 := newLineSequence([]string{
		"f() {",
		"  x",
		"}",
		"g() {",
		"  x",
		"}",
	}, table)

	// The inserted function can slide two lines down where both cuts sit
	// between unindented lines.
	diffs := []SequenceDiff{{Seq1: OffsetRange{1, 1}, Seq2: OffsetRange{1, 4}}}
	got := shiftSequenceDiffs(seq1, seq2, diffs, DefaultHeuristics.MaxShift)
	assert.Equal(t, []SequenceDiff{{Seq1: OffsetRange{3, 3}, Seq2: OffsetRange{3, 6}}}, got, "shifted diff")
}

func TestRemoveShortMatches(t *testing.T) {
	diffs := []SequenceDiff{
		{Seq1: OffsetRange{0, 1}, Seq2: OffsetRange{0, 1}},
		{Seq1: OffsetRange{3, 4}, Seq2: OffsetRange{3, 4}},
		{Seq1: OffsetRange{10, 11}, Seq2: OffsetRange{10, 11}},
	}

	got := removeShortMatches(diffs, 2)
	assert.Equal(t, []SequenceDiff{
		{Seq1: OffsetRange{0, 4}, Seq2: OffsetRange{0, 4}},
		{Seq1: OffsetRange{10, 11}, Seq2: OffsetRange{10, 11}},
	}, got, "close diffs joined")
}

func TestMergeSequenceDiffs(t *testing.T) {
	a := []SequenceDiff{{Seq1: OffsetRange{0, 2}, Seq2: OffsetRange{0, 2}}, {Seq1: OffsetRange{8, 9}, Seq2: OffsetRange{8, 9}}}
	b := []SequenceDiff{{Seq1: OffsetRange{1, 4}, Seq2: OffsetRange{1, 4}}}

	got := mergeSequenceDiffs(a, b)
	assert.Equal(t, []SequenceDiff{
		{Seq1: OffsetRange{0, 4}, Seq2: OffsetRange{0, 4}},
		{Seq1: OffsetRange{8, 9}, Seq2: OffsetRange{8, 9}},
	}, got, "overlapping entries joined")
}

func TestRemoveVeryShortMatchingLinesBetweenDiffs(t *testing.T) {
	table := newHashTable()
	seq1 := newLineSequence([]string{"one", "two", "three", "}", "four", "five", "six"}, table)
	diffs := []SequenceDiff{
		{Seq1: OffsetRange{0, 3}, Seq2: OffsetRange{0, 3}},
		{Seq1: OffsetRange{4, 7}, Seq2: OffsetRange{4, 7}},
	}

	got := removeVeryShortMatchingLinesBetweenDiffs(seq1, diffs)
	assert.Equal(t, []SequenceDiff{{Seq1: OffsetRange{0, 7}, Seq2: OffsetRange{0, 7}}}, got, "a lone brace does not split hunks")
}

func TestExtendDiffsToEntireWord(t *testing.T) {
	seq1 := NewCharSequence([]string{"hello world"}, Range{1, 1, 1, 12}, true)
	seq2 := NewCharSequence([]string{"hello there"}, Range{1, 1, 1, 12}, true)
	diffs := []SequenceDiff{
		{Seq1: OffsetRange{6, 8}, Seq2: OffsetRange{6, 9}},
		{Seq1: OffsetRange{9, 11}, Seq2: OffsetRange{10, 11}},
	}

	got := extendDiffsToEntireWordIfAppropriate(seq1, seq2, diffs, (*CharSequence).FindWordContaining, false)
	assert.Equal(t, []SequenceDiff{{Seq1: OffsetRange{6, 11}, Seq2: OffsetRange{6, 11}}}, got, "whole word replaced")
}
