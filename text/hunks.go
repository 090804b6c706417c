package text

import "slices"

// Hunk is a line change. Moved marks a block that move detection paired with
// a block elsewhere.
type Hunk struct {
	LineRangeMapping
	Moved bool
}

// Hunks returns every line change of the result in document order. Blocks
// that move detection took out of Changes come back as a pure deletion at
// their old position and a pure insertion at their new one, so consecutive
// hunks again enclose unchanged stretches of equal length.
func (r *DiffResult) Hunks() []Hunk {
	var deletions, insertions []LineRange
	for _, m := range r.Moves {
		if coveredByChange(r.Changes, m) {
			continue
		}
		deletions = append(deletions, m.Original)
		insertions = append(insertions, m.Modified)
	}
	byStart := func(a, b LineRange) int { return a.Start - b.Start }
	slices.SortFunc(deletions, byStart)
	slices.SortFunc(insertions, byStart)

	hunks := make([]Hunk, 0, len(r.Changes)+len(deletions)+len(insertions))
	changes := r.Changes
	lastOriginal, lastModified := 1, 1
	for len(changes) > 0 || len(deletions) > 0 || len(insertions) > 0 {
		// Unchanged stretches have the same length on both sides, so the
		// closest pending hunk in its own coordinates comes next.
		next, gap := -1, 0
		if len(changes) > 0 {
			next, gap = 0, changes[0].Original.Start-lastOriginal
		}
		if len(deletions) > 0 {
			if g := deletions[0].Start - lastOriginal; next < 0 || g < gap {
				next, gap = 1, g
			}
		}
		if len(insertions) > 0 {
			if g := insertions[0].Start - lastModified; next < 0 || g < gap {
				next, gap = 2, g
			}
		}

		var h Hunk
		switch next {
		case 0:
			h = Hunk{LineRangeMapping: changes[0]}
			changes = changes[1:]
		case 1:
			at := lastModified + gap
			h = Hunk{LineRangeMapping: LineRangeMapping{Original: deletions[0], Modified: NewLineRange(at, at)}, Moved: true}
			deletions = deletions[1:]
		case 2:
			at := lastOriginal + gap
			h = Hunk{LineRangeMapping: LineRangeMapping{Original: NewLineRange(at, at), Modified: insertions[0]}, Moved: true}
			insertions = insertions[1:]
		}
		hunks = append(hunks, h)
		lastOriginal, lastModified = h.Original.EndExclusive, h.Modified.EndExclusive
	}
	return hunks
}

// LineChanges returns the line ranges of Hunks. Unlike Changes it covers
// every line that differs, moved or not.
func (r *DiffResult) LineChanges() []LineRangeMapping {
	hunks := r.Hunks()
	mappings := make([]LineRangeMapping, len(hunks))
	for i, h := range hunks {
		mappings[i] = h.LineRangeMapping
	}
	return mappings
}

// coveredByChange reports moves that were found inside a hunk still listed
// in changes.
func coveredByChange(changes []LineRangeMapping, m MovedBlock) bool {
	for _, c := range changes {
		if c.Original.Contains(m.Original.Start) || c.Modified.Contains(m.Modified.Start) {
			return true
		}
	}
	return false
}
