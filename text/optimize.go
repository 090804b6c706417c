package text

import (
	"math"
	"strings"
	"unicode"
)

// optimizeSequenceDiffs snaps raw diffs onto their neighbours and then onto
// the best scoring boundary nearby.
func optimizeSequenceDiffs(seq1, seq2 Sequence, diffs []SequenceDiff, maxShift int) []SequenceDiff {
	result := joinSequenceDiffsByShifting(seq1, seq2, diffs)
	// A second round catches joins enabled by the first.
	result = joinSequenceDiffsByShifting(seq1, seq2, result)
	return shiftSequenceDiffs(seq1, seq2, result, maxShift)
}

// joinSequenceDiffsByShifting slides insertions and deletions along runs of
// equal elements. A diff that can slide all the way onto its neighbour is
// merged with it.
func joinSequenceDiffsByShifting(seq1, seq2 Sequence, diffs []SequenceDiff) []SequenceDiff {
	if len(diffs) == 0 {
		return diffs
	}

	// Move everything left and join.
	result := []SequenceDiff{diffs[0]}
	for _, cur := range diffs[1:] {
		prev := result[len(result)-1]
		if cur.Seq1.IsEmpty() || cur.Seq2.IsEmpty() {
			length := cur.Seq1.Start - prev.Seq1.EndExclusive
			d := 1
			for ; d <= length; d++ {
				if !stronglyEqual(seq1, cur.Seq1.Start-d, cur.Seq1.EndExclusive-d) ||
					!stronglyEqual(seq2, cur.Seq2.Start-d, cur.Seq2.EndExclusive-d) {
					break
				}
			}
			d--

			if d == length {
				result[len(result)-1] = SequenceDiff{
					Seq1: OffsetRange{prev.Seq1.Start, cur.Seq1.EndExclusive - length},
					Seq2: OffsetRange{prev.Seq2.Start, cur.Seq2.EndExclusive - length},
				}
				continue
			}
			cur = cur.Delta(-d)
		}
		result = append(result, cur)
	}

	// Then move everything right and join again.
	result2 := make([]SequenceDiff, 0, len(result))
	for i := 0; i < len(result)-1; i++ {
		next := result[i+1]
		cur := result[i]
		if cur.Seq1.IsEmpty() || cur.Seq2.IsEmpty() {
			length := next.Seq1.Start - cur.Seq1.EndExclusive
			d := 0
			for ; d < length; d++ {
				if !stronglyEqual(seq1, cur.Seq1.Start+d, cur.Seq1.EndExclusive+d) ||
					!stronglyEqual(seq2, cur.Seq2.Start+d, cur.Seq2.EndExclusive+d) {
					break
				}
			}

			if d == length {
				result[i+1] = SequenceDiff{
					Seq1: OffsetRange{cur.Seq1.Start + length, next.Seq1.EndExclusive},
					Seq2: OffsetRange{cur.Seq2.Start + length, next.Seq2.EndExclusive},
				}
				continue
			}
			cur = cur.Delta(d)
		}
		result2 = append(result2, cur)
	}
	return append(result2, result[len(result)-1])
}

// shiftSequenceDiffs moves each pure insertion or deletion to the position
// with the best boundary score, without touching its neighbours.
func shiftSequenceDiffs(seq1, seq2 Sequence, diffs []SequenceDiff, maxShift int) []SequenceDiff {
	scorer1, ok1 := seq1.(BoundaryScorer)
	scorer2, ok2 := seq2.(BoundaryScorer)
	if !ok1 || !ok2 {
		return diffs
	}

	for i, diff := range diffs {
		seq1Valid := OffsetRange{0, seq1.Len()}
		seq2Valid := OffsetRange{0, seq2.Len()}
		if i > 0 {
			seq1Valid.Start = diffs[i-1].Seq1.EndExclusive + 1
			seq2Valid.Start = diffs[i-1].Seq2.EndExclusive + 1
		}
		if i+1 < len(diffs) {
			seq1Valid.EndExclusive = diffs[i+1].Seq1.Start - 1
			seq2Valid.EndExclusive = diffs[i+1].Seq2.Start - 1
		}

		if diff.Seq1.IsEmpty() {
			diffs[i] = shiftDiffToBetterPosition(diff, seq2, scorer1, scorer2, seq1Valid, seq2Valid, maxShift)
		} else if diff.Seq2.IsEmpty() {
			diffs[i] = shiftDiffToBetterPosition(diff.Swap(), seq1, scorer2, scorer1, seq2Valid, seq1Valid, maxShift).Swap()
		}
	}
	return diffs
}

// shiftDiffToBetterPosition handles a diff whose first side is empty.
func shiftDiffToBetterPosition(diff SequenceDiff, seq2 Sequence, scorer1, scorer2 BoundaryScorer, seq1Valid, seq2Valid OffsetRange, maxShift int) SequenceDiff {
	deltaBefore := 1
	for diff.Seq1.Start-deltaBefore >= seq1Valid.Start &&
		diff.Seq2.Start-deltaBefore >= seq2Valid.Start &&
		stronglyEqual(seq2, diff.Seq2.Start-deltaBefore, diff.Seq2.EndExclusive-deltaBefore) &&
		deltaBefore < maxShift {
		deltaBefore++
	}
	deltaBefore--

	deltaAfter := 0
	for diff.Seq1.Start+deltaAfter < seq1Valid.EndExclusive &&
		diff.Seq2.EndExclusive+deltaAfter < seq2Valid.EndExclusive &&
		stronglyEqual(seq2, diff.Seq2.Start+deltaAfter, diff.Seq2.EndExclusive+deltaAfter) &&
		deltaAfter < maxShift {
		deltaAfter++
	}

	if deltaBefore == 0 && deltaAfter == 0 {
		return diff
	}

	bestDelta, bestScore := 0, -1
	for delta := -deltaBefore; delta <= deltaAfter; delta++ {
		score := scorer1.BoundaryScore(diff.Seq1.Start+delta) +
			scorer2.BoundaryScore(diff.Seq2.Start+delta) +
			scorer2.BoundaryScore(diff.Seq2.EndExclusive+delta)
		if score > bestScore {
			bestScore = score
			bestDelta = delta
		}
	}
	return diff.Delta(bestDelta)
}

// removeShortMatches joins diffs separated by at most gap elements on either side.
func removeShortMatches(diffs []SequenceDiff, gap int) []SequenceDiff {
	result := make([]SequenceDiff, 0, len(diffs))
	for _, s := range diffs {
		if len(result) == 0 {
			result = append(result, s)
			continue
		}
		last := result[len(result)-1]
		if s.Seq1.Start-last.Seq1.EndExclusive <= gap || s.Seq2.Start-last.Seq2.EndExclusive <= gap {
			result[len(result)-1] = last.Join(s)
		} else {
			result = append(result, s)
		}
	}
	return result
}

// removeVeryShortMatchingLinesBetweenDiffs joins line diffs separated only by
// a few characters of unchanged text.
func removeVeryShortMatchingLinesBetweenDiffs(seq1 *LineSequence, diffs []SequenceDiff) []SequenceDiff {
	if len(diffs) == 0 {
		return diffs
	}

	shouldJoin := func(before, after SequenceDiff) bool {
		unchanged := seq1.Text(OffsetRange{before.Seq1.EndExclusive, after.Seq1.Start})
		return len([]rune(removeWhitespace(unchanged))) <= 4 &&
			(before.Seq1.Len()+before.Seq2.Len() > 5 || after.Seq1.Len()+after.Seq2.Len() > 5)
	}

	return joinRepeatedly(diffs, shouldJoin)
}

// removeVeryShortMatchingTextBetweenLongDiffs joins long character diffs
// separated by short unchanged text, then absorbs tiny leftover line
// prefixes and suffixes into large diffs.
func removeVeryShortMatchingTextBetweenLongDiffs(seq1, seq2 *CharSequence, diffs []SequenceDiff) []SequenceDiff {
	if len(diffs) == 0 {
		return diffs
	}

	const limit = 2*40 + 50
	capped := func(v int) float64 { return float64(min(v, limit)) }
	weight := func(d SequenceDiff) float64 {
		w1 := capped(seq1.CountLinesIn(d.Seq1)*40 + d.Seq1.Len())
		w2 := capped(seq2.CountLinesIn(d.Seq2)*40 + d.Seq2.Len())
		return math.Pow(math.Pow(w1, 1.5)+math.Pow(w2, 1.5), 1.5)
	}
	threshold := math.Pow(math.Pow(limit, 1.5), 1.5) * 1.3

	shouldJoin := func(before, after SequenceDiff) bool {
		unchangedRange := OffsetRange{before.Seq1.EndExclusive, after.Seq1.Start}
		if seq1.CountLinesIn(unchangedRange) > 5 || unchangedRange.Len() > 500 {
			return false
		}
		unchanged := strings.TrimSpace(seq1.Text(unchangedRange))
		if len([]rune(unchanged)) > 20 || strings.ContainsAny(unchanged, "\r\n") {
			return false
		}
		return weight(before)+weight(after) > threshold
	}

	diffs = joinRepeatedly(diffs, shouldJoin)

	shouldMarkAsChanged := func(text string, cur SequenceDiff) bool {
		return text != "" && trimmedRuneCount(text) <= 3 && cur.Seq1.Len()+cur.Seq2.Len() > 100
	}

	newDiffs := make([]SequenceDiff, 0, len(diffs))
	for i, cur := range diffs {
		newDiff := cur
		full := seq1.ExtendToFullLines(cur.Seq1)

		prefixRange := OffsetRange{full.Start, cur.Seq1.Start}
		if shouldMarkAsChanged(seq1.Text(prefixRange), cur) {
			newDiff = newDiff.DeltaStart(-prefixRange.Len())
		}
		suffixRange := OffsetRange{cur.Seq1.EndExclusive, full.EndExclusive}
		if shouldMarkAsChanged(seq1.Text(suffixRange), cur) {
			newDiff = newDiff.DeltaEnd(suffixRange.Len())
		}

		start, end := zeroOffsetPair, maxOffsetPair
		if i > 0 {
			start = diffs[i-1].EndExclusives()
		}
		if i+1 < len(diffs) {
			end = diffs[i+1].Starts()
		}
		clamped, ok := newDiff.Intersect(sequenceDiffFromOffsetPairs(start, end))
		if !ok {
			clamped = cur
		}

		if n := len(newDiffs); n > 0 && clamped.Starts() == newDiffs[n-1].EndExclusives() {
			newDiffs[n-1] = newDiffs[n-1].Join(clamped)
		} else {
			newDiffs = append(newDiffs, clamped)
		}
	}
	return newDiffs
}

// joinRepeatedly joins neighbouring diffs while shouldJoin asks for it, for a
// bounded number of rounds.
func joinRepeatedly(diffs []SequenceDiff, shouldJoin func(before, after SequenceDiff) bool) []SequenceDiff {
	for round := 0; round <= 10; round++ {
		joined := false
		result := []SequenceDiff{diffs[0]}
		for _, cur := range diffs[1:] {
			last := result[len(result)-1]
			if shouldJoin(last, cur) {
				joined = true
				result[len(result)-1] = last.Join(cur)
			} else {
				result = append(result, cur)
			}
		}
		diffs = result
		if !joined {
			break
		}
	}
	return diffs
}

// extendDiffsToEntireWordIfAppropriate widens diffs to whole words when most
// of a touched word changed anyway. With force, any word that is not
// entirely equal is widened.
func extendDiffsToEntireWordIfAppropriate(seq1, seq2 *CharSequence, diffs []SequenceDiff,
	findParent func(seq *CharSequence, offset int) (OffsetRange, bool), force bool,
) []SequenceDiff {
	equalMappings := invertSequenceDiffs(diffs, seq1.Len())

	var additional []SequenceDiff
	lastPoint := zeroOffsetPair

	scanWord := func(pair OffsetPair, equalMapping SequenceDiff) {
		if pair.Offset1 < lastPoint.Offset1 || pair.Offset2 < lastPoint.Offset2 {
			return
		}
		w1, ok1 := findParent(seq1, pair.Offset1)
		w2, ok2 := findParent(seq2, pair.Offset2)
		if !ok1 || !ok2 {
			return
		}
		w := SequenceDiff{w1, w2}

		equalChars1, equalChars2 := 0, 0
		if part, ok := w.Intersect(equalMapping); ok {
			equalChars1, equalChars2 = part.Seq1.Len(), part.Seq2.Len()
		}

		// Earlier equal stretches were already handled; later ones may
		// still touch the word.
		for len(equalMappings) > 0 {
			next := equalMappings[0]
			if !next.Seq1.Intersects(w.Seq1) && !next.Seq2.Intersects(w.Seq2) {
				break
			}
			v1, ok1 := findParent(seq1, next.Seq1.Start)
			v2, ok2 := findParent(seq2, next.Seq2.Start)
			if !ok1 || !ok2 {
				break
			}
			v := SequenceDiff{v1, v2}
			if part, ok := v.Intersect(next); ok {
				equalChars1 += part.Seq1.Len()
				equalChars2 += part.Seq2.Len()
			}
			w = w.Join(v)

			if w.Seq1.EndExclusive < next.Seq1.EndExclusive {
				break
			}
			equalMappings = equalMappings[1:]
		}

		total := w.Seq1.Len() + w.Seq2.Len()
		equal := equalChars1 + equalChars2
		if (force && equal < total) || float64(equal) < float64(total)*2/3 {
			additional = append(additional, w)
		}
		lastPoint = w.EndExclusives()
	}

	for len(equalMappings) > 0 {
		next := equalMappings[0]
		equalMappings = equalMappings[1:]
		if next.Seq1.IsEmpty() {
			continue
		}
		scanWord(next.Starts(), next)
		// The stretch is non-empty, so its last element is equal on both sides.
		scanWord(next.EndExclusives().Delta(-1), next)
	}

	return mergeSequenceDiffs(diffs, additional)
}

// mergeSequenceDiffs merges two sorted diff lists, joining overlapping or
// touching entries.
func mergeSequenceDiffs(diffs1, diffs2 []SequenceDiff) []SequenceDiff {
	result := make([]SequenceDiff, 0, len(diffs1)+len(diffs2))
	i, j := 0, 0
	for i < len(diffs1) || j < len(diffs2) {
		var next SequenceDiff
		if i < len(diffs1) && (j >= len(diffs2) || diffs1[i].Seq1.Start < diffs2[j].Seq1.Start) {
			next = diffs1[i]
			i++
		} else {
			next = diffs2[j]
			j++
		}

		if n := len(result); n > 0 && result[n-1].Seq1.EndExclusive >= next.Seq1.Start {
			result[n-1] = result[n-1].Join(next)
		} else {
			result = append(result, next)
		}
	}
	return result
}

func removeWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
