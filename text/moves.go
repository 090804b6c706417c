package text

import (
	"slices"
	"sort"
	"strings"
)

// computeMoves detects moved blocks. Deletion and insertion hunks that were
// paired up are taken out of changes. Blocks that moved unchanged out of
// larger hunks are reported as moves as well but leave changes alone.
func (d *differ) computeMoves(changes []LineRangeMapping, seq1, seq2 *LineSequence) ([]LineRangeMapping, []MovedBlock, bool) {
	moves, excluded := d.computeMovesFromSimpleDeletionsToSimpleInsertions(changes)
	if !d.deadline.IsValid() {
		return changes, []MovedBlock{}, true
	}

	var remaining []LineRangeMapping
	for i, c := range changes {
		if !excluded[i] {
			remaining = append(remaining, c)
		}
	}

	unchanged := d.computeUnchangedMoves(remaining, seq1.trimmedHash, seq2.trimmedHash)
	unchanged = slices.DeleteFunc(unchanged, func(m LineRangeMapping) bool {
		return isTooShortMove(m, d.original)
	})
	// Paired hunks stay separate so that Hunks can put each one back where
	// it was.
	moves = append(moves, joinCloseConsecutiveMoves(unchanged)...)
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Original.Start < moves[j].Original.Start
	})
	moves = removeMovesInSameDiff(changes, moves)

	blocks := make([]MovedBlock, 0, len(moves))
	timedOut := false
	for _, m := range moves {
		inner, hit := d.refineDiff(SequenceDiff{Seq1: m.Original.ToOffsetRange(), Seq2: m.Modified.ToOffsetRange()})
		timedOut = timedOut || hit
		if inner == nil {
			inner = []RangeMapping{}
		}
		blocks = append(blocks, MovedBlock{Original: m.Original, Modified: m.Modified, InnerChanges: inner})
	}

	return remaining, blocks, timedOut
}

// computeMovesFromSimpleDeletionsToSimpleInsertions pairs pure deletions with
// the most similar pure insertion. excluded holds the indexes of paired
// changes.
func (d *differ) computeMovesFromSimpleDeletionsToSimpleInsertions(changes []LineRangeMapping) ([]LineRangeMapping, map[int]bool) {
	minLines := d.heuristics.MinMoveLines

	type candidate struct {
		fragment *lineRangeFragment
		index    int
	}
	var deletions, insertions []candidate
	for i, c := range changes {
		if c.Modified.IsEmpty() && c.Original.Len() >= minLines {
			deletions = append(deletions, candidate{newLineRangeFragment(c.Original, d.original), i})
		}
		if c.Original.IsEmpty() && c.Modified.Len() >= minLines {
			insertions = append(insertions, candidate{newLineRangeFragment(c.Modified, d.modified), i})
		}
	}

	var moves []LineRangeMapping
	excluded := make(map[int]bool)
	for _, deletion := range deletions {
		highest := -1.0
		best := -1
		for i, insertion := range insertions {
			if similarity := deletion.fragment.similarity(insertion.fragment); similarity > highest {
				highest = similarity
				best = i
			}
		}

		if best >= 0 && highest > d.heuristics.MoveSimilarity {
			insertion := insertions[best]
			insertions = slices.Delete(insertions, best, best+1)
			moves = append(moves, LineRangeMapping{Original: deletion.fragment.lines, Modified: insertion.fragment.lines})
			excluded[deletion.index] = true
			excluded[insertion.index] = true
		}
		if !d.deadline.IsValid() {
			break
		}
	}
	return moves, excluded
}

// lineRangeFragment is a character histogram of a block of lines. Each line
// break counts as one extra token.
type lineRangeFragment struct {
	lines      LineRange
	histogram  map[rune]int
	totalCount int
}

func newLineRangeFragment(r LineRange, lines []string) *lineRangeFragment {
	f := &lineRangeFragment{lines: r, histogram: make(map[rune]int)}
	for i := r.Start - 1; i < r.EndExclusive-1; i++ {
		for _, ch := range lines[i] {
			f.histogram[ch]++
			f.totalCount++
		}
		f.histogram['\n']++
		f.totalCount++
	}
	return f
}

// similarity is 1 minus the normalized histogram distance, in [0, 1].
func (f *lineRangeFragment) similarity(other *lineRangeFragment) float64 {
	total := f.totalCount + other.totalCount
	if total == 0 {
		return 1
	}
	sumDifferences := 0
	for ch, n := range f.histogram {
		sumDifferences += abs(n - other.histogram[ch])
	}
	for ch, n := range other.histogram {
		if _, ok := f.histogram[ch]; !ok {
			sumDifferences += n
		}
	}
	return 1 - float64(sumDifferences)/float64(total)
}

type threeLineKey struct {
	a, b, c int
}

type possibleMapping struct {
	original LineRange
	modified LineRange
}

// computeUnchangedMoves finds runs of at least three identical lines that
// appear inside a changed region on both sides, then grows them over
// similar neighbouring lines.
func (d *differ) computeUnchangedMoves(changes []LineRangeMapping, hashedOriginal, hashedModified []int) []LineRangeMapping {
	originalHashes := make(map[threeLineKey][]LineRange)
	for _, change := range changes {
		for i := change.Original.Start; i < change.Original.EndExclusive-2; i++ {
			key := threeLineKey{hashedOriginal[i-1], hashedOriginal[i], hashedOriginal[i+1]}
			originalHashes[key] = append(originalHashes[key], NewLineRange(i, i+3))
		}
	}

	byModified := slices.Clone(changes)
	sort.SliceStable(byModified, func(i, j int) bool {
		return byModified[i].Modified.Start < byModified[j].Modified.Start
	})

	var possible []*possibleMapping
	for _, change := range byModified {
		var lastMappings []*possibleMapping
		for i := change.Modified.Start; i < change.Modified.EndExclusive-2; i++ {
			key := threeLineKey{hashedModified[i-1], hashedModified[i], hashedModified[i+1]}
			currentModified := NewLineRange(i, i+3)

			var nextMappings []*possibleMapping
			for _, r := range originalHashes[key] {
				extended := false
				for _, last := range lastMappings {
					// Does this match continue a previous one?
					if last.original.EndExclusive+1 == r.EndExclusive && last.modified.EndExclusive+1 == currentModified.EndExclusive {
						last.original = NewLineRange(last.original.Start, r.EndExclusive)
						last.modified = NewLineRange(last.modified.Start, currentModified.EndExclusive)
						nextMappings = append(nextMappings, last)
						extended = true
						break
					}
				}
				if !extended {
					m := &possibleMapping{original: r, modified: currentModified}
					possible = append(possible, m)
					nextMappings = append(nextMappings, m)
				}
			}
			lastMappings = nextMappings
		}
		if !d.deadline.IsValid() {
			return nil
		}
	}

	sort.SliceStable(possible, func(i, j int) bool {
		return possible[i].modified.Len() > possible[j].modified.Len()
	})

	var moves []LineRangeMapping
	modifiedSet := NewLineRangeSet()
	originalSet := NewLineRangeSet()
	for _, m := range possible {
		diffOrigToMod := m.modified.Start - m.original.Start
		modifiedSections := modifiedSet.SubtractFrom(m.modified)
		originalTranslated := originalSet.SubtractFrom(m.original).WithDelta(diffOrigToMod)
		for _, s := range modifiedSections.Intersect(originalTranslated).Ranges() {
			if s.Len() < d.heuristics.MinMoveLines {
				continue
			}
			move := LineRangeMapping{Original: s.Delta(-diffOrigToMod), Modified: s}
			moves = append(moves, move)
			modifiedSet.AddRange(move.Modified)
			originalSet.AddRange(move.Original)
		}
	}

	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Original.Start < moves[j].Original.Start
	})

	for i, move := range moves {
		linesAbove, linesBelow := 0, 0
		if c, ok := lastChangeWhere(changes, func(c LineRangeMapping) bool { return c.Original.Start <= move.Original.Start }); ok {
			linesAbove = move.Original.Start - c.Original.Start
		}
		if c, ok := lastChangeWhere(changes, func(c LineRangeMapping) bool { return c.Modified.Start <= move.Modified.Start }); ok {
			linesAbove = max(linesAbove, move.Modified.Start-c.Modified.Start)
		}
		if c, ok := lastChangeWhere(changes, func(c LineRangeMapping) bool { return c.Original.Start < move.Original.EndExclusive }); ok {
			linesBelow = c.Original.EndExclusive - move.Original.EndExclusive
		}
		if c, ok := lastChangeWhere(changes, func(c LineRangeMapping) bool { return c.Modified.Start < move.Modified.EndExclusive }); ok {
			linesBelow = max(linesBelow, c.Modified.EndExclusive-move.Modified.EndExclusive)
		}

		extendToTop := 0
		for ; extendToTop < linesAbove; extendToTop++ {
			origLine := move.Original.Start - extendToTop - 1
			modLine := move.Modified.Start - extendToTop - 1
			if origLine < 1 || modLine < 1 || origLine > len(d.original) || modLine > len(d.modified) {
				break
			}
			if modifiedSet.Contains(modLine) || originalSet.Contains(origLine) {
				break
			}
			if !d.areLinesSimilar(d.original[origLine-1], d.modified[modLine-1]) {
				break
			}
		}
		if extendToTop > 0 {
			originalSet.AddRange(NewLineRange(move.Original.Start-extendToTop, move.Original.Start))
			modifiedSet.AddRange(NewLineRange(move.Modified.Start-extendToTop, move.Modified.Start))
		}

		extendToBottom := 0
		for ; extendToBottom < linesBelow; extendToBottom++ {
			origLine := move.Original.EndExclusive + extendToBottom
			modLine := move.Modified.EndExclusive + extendToBottom
			if origLine > len(d.original) || modLine > len(d.modified) {
				break
			}
			if modifiedSet.Contains(modLine) || originalSet.Contains(origLine) {
				break
			}
			if !d.areLinesSimilar(d.original[origLine-1], d.modified[modLine-1]) {
				break
			}
		}
		if extendToBottom > 0 {
			originalSet.AddRange(NewLineRange(move.Original.EndExclusive, move.Original.EndExclusive+extendToBottom))
			modifiedSet.AddRange(NewLineRange(move.Modified.EndExclusive, move.Modified.EndExclusive+extendToBottom))
		}

		if extendToTop > 0 || extendToBottom > 0 {
			moves[i] = LineRangeMapping{
				Original: NewLineRange(move.Original.Start-extendToTop, move.Original.EndExclusive+extendToBottom),
				Modified: NewLineRange(move.Modified.Start-extendToTop, move.Modified.EndExclusive+extendToBottom),
			}
		}
	}
	return moves
}

// lastChangeWhere returns the last change satisfying pred, which must hold
// for a prefix of changes.
func lastChangeWhere(changes []LineRangeMapping, pred func(LineRangeMapping) bool) (LineRangeMapping, bool) {
	i := sort.Search(len(changes), func(i int) bool { return !pred(changes[i]) }) - 1
	if i < 0 {
		return LineRangeMapping{}, false
	}
	return changes[i], true
}

// areLinesSimilar reports whether two lines share most of their non-blank
// characters.
func (d *differ) areLinesSimilar(line1, line2 string) bool {
	if strings.TrimSpace(line1) == strings.TrimSpace(line2) {
		return true
	}
	runes1, runes2 := []rune(line1), []rune(line2)
	if len(runes1) > 300 && len(runes2) > 300 {
		return false
	}

	seq1 := NewCharSequence([]string{line1}, Range{1, 1, 1, len(runes1) + 1}, true)
	seq2 := NewCharSequence([]string{line2}, Range{1, 1, 1, len(runes2) + 1}, true)
	result := d.myers.Compute(seq1, seq2, d.deadline, nil)

	common := 0
	for _, equal := range invertSequenceDiffs(result.Diffs, seq1.Len()) {
		for idx := equal.Seq1.Start; idx < equal.Seq1.EndExclusive; idx++ {
			if !isSpace(runes1[idx]) {
				common++
			}
		}
	}

	longer := runes1
	if len(runes2) > len(runes1) {
		longer = runes2
	}
	nonSpace := 0
	for _, r := range longer {
		if !isSpace(r) {
			nonSpace++
		}
	}
	return nonSpace > 10 && float64(common)/float64(nonSpace) > 0.6
}

// joinCloseConsecutiveMoves merges moves that follow each other within two
// lines on both sides.
func joinCloseConsecutiveMoves(moves []LineRangeMapping) []LineRangeMapping {
	if len(moves) == 0 {
		return moves
	}
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Original.Start < moves[j].Original.Start
	})

	result := []LineRangeMapping{moves[0]}
	for _, current := range moves[1:] {
		last := result[len(result)-1]
		originalDist := current.Original.Start - last.Original.EndExclusive
		modifiedDist := current.Modified.Start - last.Modified.EndExclusive
		if originalDist >= 0 && modifiedDist >= 0 && originalDist+modifiedDist <= 2 {
			result[len(result)-1] = LineRangeMapping{
				Original: last.Original.Join(current.Original),
				Modified: last.Modified.Join(current.Modified),
			}
			continue
		}
		result = append(result, current)
	}
	return result
}

// isTooShortMove reports moves with too little content to be worth showing.
func isTooShortMove(m LineRangeMapping, original []string) bool {
	lines := make([]string, 0, m.Original.Len())
	longLines := 0
	for i := m.Original.Start - 1; i < m.Original.EndExclusive-1; i++ {
		line := strings.TrimSpace(original[i])
		lines = append(lines, line)
		if len([]rune(line)) >= 2 {
			longLines++
		}
	}
	return len([]rune(strings.Join(lines, "\n"))) < 15 || longLines < 2
}

// removeMovesInSameDiff drops moves whose source and destination fall into
// the same hunk.
func removeMovesInSameDiff(changes []LineRangeMapping, moves []LineRangeMapping) []LineRangeMapping {
	lastIndexWhere := func(pred func(LineRangeMapping) bool) int {
		return sort.Search(len(changes), func(i int) bool { return !pred(changes[i]) }) - 1
	}
	return slices.DeleteFunc(moves, func(m LineRangeMapping) bool {
		beforeEndOriginal := lastIndexWhere(func(c LineRangeMapping) bool { return c.Original.Start < m.Original.EndExclusive })
		beforeEndModified := lastIndexWhere(func(c LineRangeMapping) bool { return c.Modified.Start < m.Modified.EndExclusive })
		return beforeEndOriginal == beforeEndModified
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
