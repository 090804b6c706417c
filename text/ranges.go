package text

import "fmt"

// OffsetRange is a half-open range [Start, EndExclusive) over sequence positions.
type OffsetRange struct {
	Start        int `json:"start"`
	EndExclusive int `json:"endExclusive"`
}

// OffsetRangeOfLength returns [0, length).
func OffsetRangeOfLength(length int) OffsetRange {
	return OffsetRange{Start: 0, EndExclusive: length}
}

func (r OffsetRange) IsEmpty() bool { return r.Start == r.EndExclusive }

func (r OffsetRange) Len() int { return r.EndExclusive - r.Start }

// Delta shifts both ends by offset.
func (r OffsetRange) Delta(offset int) OffsetRange {
	return OffsetRange{r.Start + offset, r.EndExclusive + offset}
}

func (r OffsetRange) DeltaStart(offset int) OffsetRange {
	return OffsetRange{r.Start + offset, r.EndExclusive}
}

func (r OffsetRange) DeltaEnd(offset int) OffsetRange {
	return OffsetRange{r.Start, r.EndExclusive + offset}
}

// Contains reports whether offset lies inside the range.
func (r OffsetRange) Contains(offset int) bool {
	return r.Start <= offset && offset < r.EndExclusive
}

// Join returns the smallest range covering both ranges.
func (r OffsetRange) Join(other OffsetRange) OffsetRange {
	return OffsetRange{min(r.Start, other.Start), max(r.EndExclusive, other.EndExclusive)}
}

// Intersect returns the common part of both ranges. The result may be empty
// when the ranges only touch; ok is false when they are disjoint.
func (r OffsetRange) Intersect(other OffsetRange) (OffsetRange, bool) {
	start := max(r.Start, other.Start)
	end := min(r.EndExclusive, other.EndExclusive)
	if start <= end {
		return OffsetRange{start, end}, true
	}
	return OffsetRange{}, false
}

// Intersects reports whether both ranges share at least one position.
func (r OffsetRange) Intersects(other OffsetRange) bool {
	return max(r.Start, other.Start) < min(r.EndExclusive, other.EndExclusive)
}

func (r OffsetRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.EndExclusive)
}

// LineRange is a half-open range of 1-based line numbers.
type LineRange struct {
	Start        int `json:"startLineNumber"`
	EndExclusive int `json:"endLineNumberExclusive"`
}

// NewLineRange returns [start, endExclusive).
func NewLineRange(start, endExclusive int) LineRange {
	return LineRange{Start: start, EndExclusive: endExclusive}
}

// LineRangeOfLength returns the range of length lines starting at start.
func LineRangeOfLength(start, length int) LineRange {
	return LineRange{Start: start, EndExclusive: start + length}
}

func (r LineRange) IsEmpty() bool { return r.Start == r.EndExclusive }

func (r LineRange) Len() int { return r.EndExclusive - r.Start }

func (r LineRange) Delta(offset int) LineRange {
	return LineRange{r.Start + offset, r.EndExclusive + offset}
}

func (r LineRange) Contains(lineNumber int) bool {
	return r.Start <= lineNumber && lineNumber < r.EndExclusive
}

func (r LineRange) Join(other LineRange) LineRange {
	return LineRange{min(r.Start, other.Start), max(r.EndExclusive, other.EndExclusive)}
}

// Intersect returns the common part of both ranges; ok is false when there
// is none (touching ranges yield an empty intersection).
func (r LineRange) Intersect(other LineRange) (LineRange, bool) {
	start := max(r.Start, other.Start)
	end := min(r.EndExclusive, other.EndExclusive)
	if start <= end {
		return LineRange{start, end}, true
	}
	return LineRange{}, false
}

// OverlapOrTouch reports whether the ranges intersect or are adjacent.
func (r LineRange) OverlapOrTouch(other LineRange) bool {
	return r.Start <= other.EndExclusive && other.Start <= r.EndExclusive
}

// ToOffsetRange converts to 0-based line offsets.
func (r LineRange) ToOffsetRange() OffsetRange {
	return OffsetRange{r.Start - 1, r.EndExclusive - 1}
}

func (r LineRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.EndExclusive)
}

// Position is a 1-based line and column. Columns count runes.
type Position struct {
	Line   int `json:"lineNumber"`
	Column int `json:"column"`
}

// IsBefore reports whether p comes strictly before other.
func (p Position) IsBefore(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

func (p Position) IsBeforeOrEqual(other Position) bool {
	return p == other || p.IsBefore(other)
}

// Range is a character range between two positions, end exclusive.
type Range struct {
	StartLine   int `json:"startLineNumber"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLineNumber"`
	EndColumn   int `json:"endColumn"`
}

// RangeFromPositions builds a range from start and end positions.
func RangeFromPositions(start, end Position) Range {
	return Range{start.Line, start.Column, end.Line, end.Column}
}

func (r Range) Start() Position { return Position{r.StartLine, r.StartColumn} }

func (r Range) End() Position { return Position{r.EndLine, r.EndColumn} }

func (r Range) IsEmpty() bool {
	return r.StartLine == r.EndLine && r.StartColumn == r.EndColumn
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d -> %d,%d]", r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
}

// RangeMapping maps one contiguous character range of the original document
// to its replacement in the modified document.
type RangeMapping struct {
	Original Range `json:"originalRange"`
	Modified Range `json:"modifiedRange"`
}

func (m RangeMapping) Flip() RangeMapping {
	return RangeMapping{Original: m.Modified, Modified: m.Original}
}

func (m RangeMapping) String() string {
	return fmt.Sprintf("{%s -> %s}", m.Original, m.Modified)
}

// LineRangeMapping is one hunk. InnerChanges is nil unless character changes
// were requested.
type LineRangeMapping struct {
	Original     LineRange      `json:"originalRange"`
	Modified     LineRange      `json:"modifiedRange"`
	InnerChanges []RangeMapping `json:"innerChanges,omitempty"`
}

func (m LineRangeMapping) Flip() LineRangeMapping {
	return LineRangeMapping{Original: m.Modified, Modified: m.Original, InnerChanges: flipRangeMappings(m.InnerChanges)}
}

func (m LineRangeMapping) String() string {
	return fmt.Sprintf("{%s -> %s}", m.Original, m.Modified)
}

// MovedBlock is a block of lines that was relocated, together with the
// character edits made to it.
type MovedBlock struct {
	Original     LineRange      `json:"original"`
	Modified     LineRange      `json:"modified"`
	InnerChanges []RangeMapping `json:"innerChanges"`
}

func (m MovedBlock) Flip() MovedBlock {
	inner := flipRangeMappings(m.InnerChanges)
	if inner == nil {
		inner = []RangeMapping{}
	}
	return MovedBlock{Original: m.Modified, Modified: m.Original, InnerChanges: inner}
}

// DiffResult is the outcome of one ComputeDiff call.
type DiffResult struct {
	Changes    []LineRangeMapping `json:"changes"`
	Moves      []MovedBlock       `json:"moves"`
	HitTimeout bool               `json:"hitTimeout"`
	Identical  bool               `json:"identical"`
}

// Flip swaps the original and modified side everywhere.
func (r *DiffResult) Flip() *DiffResult {
	flipped := &DiffResult{
		Changes:    make([]LineRangeMapping, len(r.Changes)),
		Moves:      make([]MovedBlock, len(r.Moves)),
		HitTimeout: r.HitTimeout,
		Identical:  r.Identical,
	}
	for i, c := range r.Changes {
		flipped.Changes[i] = c.Flip()
	}
	for i, m := range r.Moves {
		flipped.Moves[i] = m.Flip()
	}
	return flipped
}

func flipRangeMappings(mappings []RangeMapping) []RangeMapping {
	if mappings == nil {
		return nil
	}
	flipped := make([]RangeMapping, len(mappings))
	for i, m := range mappings {
		flipped[i] = m.Flip()
	}
	return flipped
}

// OffsetPair is a pair of positions, one in each sequence.
type OffsetPair struct {
	Offset1 int
	Offset2 int
}

var (
	zeroOffsetPair = OffsetPair{0, 0}
	maxOffsetPair  = OffsetPair{maxInt, maxInt}
)

const maxInt = int(^uint(0) >> 1)

func (p OffsetPair) Delta(offset int) OffsetPair {
	return OffsetPair{p.Offset1 + offset, p.Offset2 + offset}
}

// SequenceDiff aligns a range of the first sequence with a range of the
// second sequence.
type SequenceDiff struct {
	Seq1 OffsetRange
	Seq2 OffsetRange
}

// sequenceDiffFromOffsetPairs spans the area between start and endExclusive.
func sequenceDiffFromOffsetPairs(start, endExclusive OffsetPair) SequenceDiff {
	return SequenceDiff{
		Seq1: OffsetRange{start.Offset1, endExclusive.Offset1},
		Seq2: OffsetRange{start.Offset2, endExclusive.Offset2},
	}
}

func (d SequenceDiff) Swap() SequenceDiff { return SequenceDiff{d.Seq2, d.Seq1} }

func (d SequenceDiff) Join(other SequenceDiff) SequenceDiff {
	return SequenceDiff{d.Seq1.Join(other.Seq1), d.Seq2.Join(other.Seq2)}
}

func (d SequenceDiff) Delta(offset int) SequenceDiff {
	if offset == 0 {
		return d
	}
	return SequenceDiff{d.Seq1.Delta(offset), d.Seq2.Delta(offset)}
}

func (d SequenceDiff) DeltaStart(offset int) SequenceDiff {
	if offset == 0 {
		return d
	}
	return SequenceDiff{d.Seq1.DeltaStart(offset), d.Seq2.DeltaStart(offset)}
}

func (d SequenceDiff) DeltaEnd(offset int) SequenceDiff {
	if offset == 0 {
		return d
	}
	return SequenceDiff{d.Seq1.DeltaEnd(offset), d.Seq2.DeltaEnd(offset)}
}

// Intersect intersects both sides; ok is false when either side is disjoint.
func (d SequenceDiff) Intersect(other SequenceDiff) (SequenceDiff, bool) {
	i1, ok1 := d.Seq1.Intersect(other.Seq1)
	i2, ok2 := d.Seq2.Intersect(other.Seq2)
	if !ok1 || !ok2 {
		return SequenceDiff{}, false
	}
	return SequenceDiff{i1, i2}, true
}

func (d SequenceDiff) Starts() OffsetPair {
	return OffsetPair{d.Seq1.Start, d.Seq2.Start}
}

func (d SequenceDiff) EndExclusives() OffsetPair {
	return OffsetPair{d.Seq1.EndExclusive, d.Seq2.EndExclusive}
}

func (d SequenceDiff) String() string {
	return fmt.Sprintf("%s <-> %s", d.Seq1, d.Seq2)
}

// invertSequenceDiffs returns the aligned (equal) stretches between diffs,
// including empty ones.
func invertSequenceDiffs(diffs []SequenceDiff, seq1Length int) []SequenceDiff {
	result := make([]SequenceDiff, 0, len(diffs)+1)
	start := zeroOffsetPair
	for _, d := range diffs {
		result = append(result, sequenceDiffFromOffsetPairs(start, d.Starts()))
		start = d.EndExclusives()
	}
	end := OffsetPair{seq1Length, start.Offset2 - start.Offset1 + seq1Length}
	result = append(result, sequenceDiffFromOffsetPairs(start, end))
	return result
}
