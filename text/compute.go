package text

import (
	"context"
	"math"
	"slices"
	"time"
	"unicode/utf8"

	"linediff/logger"
)

// Options controls one ComputeDiff call.
type Options struct {
	// IgnoreTrimWhitespace makes leading and trailing whitespace invisible
	// to the comparison.
	IgnoreTrimWhitespace bool
	// MaxComputationTime bounds the computation. Zero means no limit.
	MaxComputationTime time.Duration
	// ComputeMoves enables move detection.
	ComputeMoves bool
	// ComputeCharChanges fills LineRangeMapping.InnerChanges.
	ComputeCharChanges bool
	// ExtendToSubwords additionally widens character changes to camelCase
	// sub-words.
	ExtendToSubwords bool
	// Heuristics overrides the tuning constants; the zero value means
	// DefaultHeuristics.
	Heuristics Heuristics
}

// differ carries the state of one ComputeDiff call.
type differ struct {
	original, modified []string
	opts               Options
	heuristics         Heuristics
	deadline           Deadline
	considerWhitespace bool

	dp    DynamicProgramming
	myers Myers
}

// ComputeDiff computes the line and character level changes turning original
// into modified. Lines must already be split; line terminators are not part
// of the lines. Hitting the time budget or a done ctx is not an error: the
// result is coarser and HitTimeout is set.
func ComputeDiff(ctx context.Context, original, modified []string, opts Options) *DiffResult {
	defer logger.Trace("text.ComputeDiff")()

	original = normalizeLines(original)
	modified = normalizeLines(modified)

	if slices.Equal(original, modified) {
		return &DiffResult{Changes: []LineRangeMapping{}, Moves: []MovedBlock{}, Identical: true}
	}

	if isEmptyDocument(original) || isEmptyDocument(modified) {
		return wholeDocumentResult(original, modified, opts.ComputeCharChanges)
	}

	d := &differ{
		original:           original,
		modified:           modified,
		opts:               opts,
		heuristics:         opts.Heuristics.withDefaults(),
		deadline:           NewDeadline(ctx, opts.MaxComputationTime),
		considerWhitespace: !opts.IgnoreTrimWhitespace,
	}
	result := d.compute()

	if err := Validate(result, original, modified); err != nil {
		logger.Error("diff result failed validation: %v", err)
	}
	return result
}

func (d *differ) compute() *DiffResult {
	table := newHashTable()
	seq1 := newLineSequence(d.original, table)
	seq2 := newLineSequence(d.modified, table)

	var lineAlignment AlgorithmResult
	if seq1.Len()+seq2.Len() < d.heuristics.LineDPThreshold {
		lineAlignment = d.dp.Compute(seq1, seq2, d.deadline, d.lineMatchScore)
	} else {
		lineAlignment = d.myers.Compute(seq1, seq2, d.deadline, nil)
	}
	hitTimeout := lineAlignment.HitTimeout

	lineDiffs := optimizeSequenceDiffs(seq1, seq2, lineAlignment.Diffs, d.heuristics.MaxShift)
	lineDiffs = removeVeryShortMatchingLinesBetweenDiffs(seq1, lineDiffs)

	var changes []LineRangeMapping
	if d.opts.ComputeCharChanges {
		var alignments []RangeMapping
		alignments, hitTimeout = d.refineLineDiffs(lineDiffs, hitTimeout)
		changes = lineRangeMappingsFromRangeMappings(alignments, d.original, d.modified)
	} else {
		changes = d.lineOnlyMappings(lineDiffs)
	}

	moves := []MovedBlock{}
	if d.opts.ComputeMoves {
		var timedOut bool
		changes, moves, timedOut = d.computeMoves(changes, seq1, seq2)
		hitTimeout = hitTimeout || timedOut
	}
	if changes == nil {
		changes = []LineRangeMapping{}
	}

	return &DiffResult{
		Changes:    changes,
		Moves:      moves,
		HitTimeout: hitTimeout,
	}
}

// lineMatchScore prefers aligning long identical lines over blank ones.
func (d *differ) lineMatchScore(offset1, offset2 int) float64 {
	if d.original[offset1] != d.modified[offset2] {
		return 0.99
	}
	if n := utf8.RuneCountInString(d.modified[offset2]); n > 0 {
		return 1 + math.Log(1+float64(n))
	}
	return 0.1
}

// refineLineDiffs runs the character refiner over every line diff and over
// aligned lines that differ only by whitespace.
func (d *differ) refineLineDiffs(lineDiffs []SequenceDiff, hitTimeout bool) ([]RangeMapping, bool) {
	var alignments []RangeMapping
	seq1LastStart, seq2LastStart := 0, 0

	scanForWhitespaceChanges := func(equalLinesCount int) {
		if !d.considerWhitespace {
			return
		}
		for i := 0; i < equalLinesCount; i++ {
			offset1, offset2 := seq1LastStart+i, seq2LastStart+i
			if d.original[offset1] == d.modified[offset2] {
				continue
			}
			mappings, timedOut := d.refineDiff(SequenceDiff{
				Seq1: OffsetRange{offset1, offset1 + 1},
				Seq2: OffsetRange{offset2, offset2 + 1},
			})
			alignments = append(alignments, mappings...)
			hitTimeout = hitTimeout || timedOut
		}
	}

	for _, diff := range lineDiffs {
		scanForWhitespaceChanges(diff.Seq1.Start - seq1LastStart)
		seq1LastStart, seq2LastStart = diff.Seq1.EndExclusive, diff.Seq2.EndExclusive

		mappings, timedOut := d.refineDiff(diff)
		alignments = append(alignments, mappings...)
		hitTimeout = hitTimeout || timedOut
	}
	scanForWhitespaceChanges(len(d.original) - seq1LastStart)

	return alignments, hitTimeout
}

// lineOnlyMappings builds hunks without character detail.
func (d *differ) lineOnlyMappings(lineDiffs []SequenceDiff) []LineRangeMapping {
	var mappings []LineRangeMapping
	add := func(m LineRangeMapping) {
		if n := len(mappings); n > 0 &&
			(mappings[n-1].Original.OverlapOrTouch(m.Original) || mappings[n-1].Modified.OverlapOrTouch(m.Modified)) {
			mappings[n-1].Original = mappings[n-1].Original.Join(m.Original)
			mappings[n-1].Modified = mappings[n-1].Modified.Join(m.Modified)
			return
		}
		mappings = append(mappings, m)
	}

	seq1LastStart, seq2LastStart := 0, 0
	scanForWhitespaceChanges := func(equalLinesCount int) {
		if !d.considerWhitespace {
			return
		}
		for i := 0; i < equalLinesCount; i++ {
			offset1, offset2 := seq1LastStart+i, seq2LastStart+i
			if d.original[offset1] != d.modified[offset2] {
				add(LineRangeMapping{
					Original: LineRangeOfLength(offset1+1, 1),
					Modified: LineRangeOfLength(offset2+1, 1),
				})
			}
		}
	}

	for _, diff := range lineDiffs {
		scanForWhitespaceChanges(diff.Seq1.Start - seq1LastStart)
		seq1LastStart, seq2LastStart = diff.Seq1.EndExclusive, diff.Seq2.EndExclusive
		add(LineRangeMapping{
			Original: NewLineRange(diff.Seq1.Start+1, diff.Seq1.EndExclusive+1),
			Modified: NewLineRange(diff.Seq2.Start+1, diff.Seq2.EndExclusive+1),
		})
	}
	scanForWhitespaceChanges(len(d.original) - seq1LastStart)
	return mappings
}

// refineDiff computes the character level changes inside one line diff.
func (d *differ) refineDiff(diff SequenceDiff) ([]RangeMapping, bool) {
	lineMapping := LineRangeMapping{
		Original: NewLineRange(diff.Seq1.Start+1, diff.Seq1.EndExclusive+1),
		Modified: NewLineRange(diff.Seq2.Start+1, diff.Seq2.EndExclusive+1),
	}
	rangeMapping := toCharRangeMapping(lineMapping, d.original, d.modified)

	slice1 := NewCharSequence(d.original, rangeMapping.Original, d.considerWhitespace)
	slice2 := NewCharSequence(d.modified, rangeMapping.Modified, d.considerWhitespace)

	var result AlgorithmResult
	if slice1.Len()+slice2.Len() < d.heuristics.CharDPThreshold {
		result = d.dp.Compute(slice1, slice2, d.deadline, nil)
	} else {
		result = d.myers.Compute(slice1, slice2, d.deadline, nil)
	}

	diffs := optimizeSequenceDiffs(slice1, slice2, result.Diffs, d.heuristics.MaxShift)
	diffs = extendDiffsToEntireWordIfAppropriate(slice1, slice2, diffs, (*CharSequence).FindWordContaining, false)
	if d.opts.ExtendToSubwords {
		diffs = extendDiffsToEntireWordIfAppropriate(slice1, slice2, diffs, (*CharSequence).FindSubWordContaining, true)
	}
	diffs = removeShortMatches(diffs, d.heuristics.JoinGap)
	diffs = removeVeryShortMatchingTextBetweenLongDiffs(slice1, slice2, diffs)

	mappings := make([]RangeMapping, len(diffs))
	for i, sd := range diffs {
		mappings[i] = RangeMapping{
			Original: slice1.TranslateRange(sd.Seq1),
			Modified: slice2.TranslateRange(sd.Seq2),
		}
	}
	return mappings, result.HitTimeout
}

// ToRangeMapping returns the character ranges covered by the whole lines of
// m in the two documents.
func (m LineRangeMapping) ToRangeMapping(original, modified []string) RangeMapping {
	return toCharRangeMapping(m, normalizeLines(original), normalizeLines(modified))
}

// toCharRangeMapping converts a line hunk to the character range it covers.
// Empty hunks become empty ranges at the end of the preceding line.
func toCharRangeMapping(m LineRangeMapping, original, modified []string) RangeMapping {
	if isValidLineNumber(m.Original.EndExclusive, original) && isValidLineNumber(m.Modified.EndExclusive, modified) {
		return RangeMapping{
			Original: Range{m.Original.Start, 1, m.Original.EndExclusive, 1},
			Modified: Range{m.Modified.Start, 1, m.Modified.EndExclusive, 1},
		}
	}

	if !m.Original.IsEmpty() && !m.Modified.IsEmpty() {
		return RangeMapping{
			Original: RangeFromPositions(Position{m.Original.Start, 1}, normalizePosition(Position{m.Original.EndExclusive - 1, maxInt}, original)),
			Modified: RangeFromPositions(Position{m.Modified.Start, 1}, normalizePosition(Position{m.Modified.EndExclusive - 1, maxInt}, modified)),
		}
	}

	if m.Original.Start > 1 && m.Modified.Start > 1 {
		return RangeMapping{
			Original: RangeFromPositions(
				normalizePosition(Position{m.Original.Start - 1, maxInt}, original),
				normalizePosition(Position{m.Original.EndExclusive - 1, maxInt}, original)),
			Modified: RangeFromPositions(
				normalizePosition(Position{m.Modified.Start - 1, maxInt}, modified),
				normalizePosition(Position{m.Modified.EndExclusive - 1, maxInt}, modified)),
		}
	}

	// An empty side at the top while the other side reaches the end of its
	// document only happens when one document is empty, which never gets here.
	logger.Warn("unexpected hunk shape %s, falling back to whole documents", m)
	return RangeMapping{
		Original: RangeFromPositions(Position{1, 1}, endOfDocument(original)),
		Modified: RangeFromPositions(Position{1, 1}, endOfDocument(modified)),
	}
}

func isValidLineNumber(lineNumber int, lines []string) bool {
	return lineNumber >= 1 && lineNumber <= len(lines)
}

// normalizePosition clamps p into lines.
func normalizePosition(p Position, lines []string) Position {
	if p.Line < 1 {
		return Position{1, 1}
	}
	if p.Line > len(lines) {
		return endOfDocument(lines)
	}
	if length := lineLength(lines, p.Line); p.Column > length+1 {
		return Position{p.Line, length + 1}
	}
	return p
}

func endOfDocument(lines []string) Position {
	return Position{len(lines), lineLength(lines, len(lines)) + 1}
}

// lineLength is the rune length of 1-based line lineNumber.
func lineLength(lines []string, lineNumber int) int {
	return utf8.RuneCountInString(lines[lineNumber-1])
}

// lineRangeMappingsFromRangeMappings groups character changes into line
// hunks. Changes whose line spans overlap or touch on either side end up in
// the same hunk.
func lineRangeMappingsFromRangeMappings(alignments []RangeMapping, original, modified []string) []LineRangeMapping {
	var changes []LineRangeMapping
	var prev LineRangeMapping
	for i, a := range alignments {
		m := lineRangeMappingOf(a, original, modified)
		if i > 0 && (prev.Original.OverlapOrTouch(m.Original) || prev.Modified.OverlapOrTouch(m.Modified)) {
			last := &changes[len(changes)-1]
			last.Original = last.Original.Join(m.Original)
			last.Modified = last.Modified.Join(m.Modified)
			last.InnerChanges = append(last.InnerChanges, a)
		} else {
			changes = append(changes, m)
		}
		prev = m
	}
	return changes
}

// lineRangeMappingOf returns the lines touched by a. A change that ends at
// column 1 does not touch its last line, and one that starts at the end of
// a line does not touch its first line.
func lineRangeMappingOf(a RangeMapping, original, modified []string) LineRangeMapping {
	lineStartDelta, lineEndDelta := 0, 0

	if a.Modified.EndColumn == 1 && a.Original.EndColumn == 1 &&
		a.Original.StartLine+lineStartDelta <= a.Original.EndLine &&
		a.Modified.StartLine+lineStartDelta <= a.Modified.EndLine {
		lineEndDelta = -1
	}

	if a.Modified.StartColumn-1 >= lineLength(modified, a.Modified.StartLine) &&
		a.Original.StartColumn-1 >= lineLength(original, a.Original.StartLine) &&
		a.Original.StartLine <= a.Original.EndLine+lineEndDelta &&
		a.Modified.StartLine <= a.Modified.EndLine+lineEndDelta {
		lineStartDelta = 1
	}

	return LineRangeMapping{
		Original:     NewLineRange(a.Original.StartLine+lineStartDelta, a.Original.EndLine+1+lineEndDelta),
		Modified:     NewLineRange(a.Modified.StartLine+lineStartDelta, a.Modified.EndLine+1+lineEndDelta),
		InnerChanges: []RangeMapping{a},
	}
}

// normalizeLines maps a document without lines to a single empty line.
func normalizeLines(lines []string) []string {
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func isEmptyDocument(lines []string) bool {
	return len(lines) == 1 && lines[0] == ""
}

// wholeDocumentResult reports one hunk replacing everything. An empty
// document contributes an empty line range.
func wholeDocumentResult(original, modified []string, charChanges bool) *DiffResult {
	documentLines := func(lines []string) LineRange {
		if isEmptyDocument(lines) {
			return NewLineRange(1, 1)
		}
		return NewLineRange(1, len(lines)+1)
	}
	change := LineRangeMapping{
		Original: documentLines(original),
		Modified: documentLines(modified),
	}
	if charChanges {
		change.InnerChanges = []RangeMapping{{
			Original: RangeFromPositions(Position{1, 1}, endOfDocument(original)),
			Modified: RangeFromPositions(Position{1, 1}, endOfDocument(modified)),
		}}
	}
	return &DiffResult{Changes: []LineRangeMapping{change}, Moves: []MovedBlock{}}
}
