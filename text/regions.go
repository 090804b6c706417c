package text

// InverseLineRangeMappings returns the unchanged stretches between changes.
// Stretches that are empty on the modified side are skipped.
func InverseLineRangeMappings(changes []LineRangeMapping, originalLineCount, modifiedLineCount int) []LineRangeMapping {
	var result []LineRangeMapping
	lastOriginalEnd, lastModifiedEnd := 1, 1
	for _, m := range changes {
		r := LineRangeMapping{
			Original: NewLineRange(lastOriginalEnd, m.Original.Start),
			Modified: NewLineRange(lastModifiedEnd, m.Modified.Start),
		}
		if !r.Modified.IsEmpty() {
			result = append(result, r)
		}
		lastOriginalEnd, lastModifiedEnd = m.Original.EndExclusive, m.Modified.EndExclusive
	}
	r := LineRangeMapping{
		Original: NewLineRange(lastOriginalEnd, originalLineCount+1),
		Modified: NewLineRange(lastModifiedEnd, modifiedLineCount+1),
	}
	if !r.Modified.IsEmpty() {
		result = append(result, r)
	}
	return result
}

// UnchangedRegion is a stretch of identical lines that a viewer may fold.
type UnchangedRegion struct {
	OriginalLine int `json:"originalLineNumber"`
	ModifiedLine int `json:"modifiedLineNumber"`
	LineCount    int `json:"lineCount"`
}

func (r UnchangedRegion) OriginalRange() LineRange {
	return LineRangeOfLength(r.OriginalLine, r.LineCount)
}

func (r UnchangedRegion) ModifiedRange() LineRange {
	return LineRangeOfLength(r.ModifiedLine, r.LineCount)
}

// ComputeUnchangedRegions returns the foldable regions of a diff. Each region
// keeps minContext visible lines next to every change and hides at least
// minHidden lines.
func ComputeUnchangedRegions(changes []LineRangeMapping, originalLineCount, modifiedLineCount, minHidden, minContext int) []UnchangedRegion {
	var result []UnchangedRegion
	for _, m := range InverseLineRangeMappings(changes, originalLineCount, modifiedLineCount) {
		origStart, modStart := m.Original.Start, m.Modified.Start
		length := m.Original.Len()

		atStart := origStart == 1 && modStart == 1
		atEnd := origStart+length == originalLineCount+1 && modStart+length == modifiedLineCount+1

		switch {
		case (atStart || atEnd) && length >= minContext+minHidden:
			if atStart && !atEnd {
				length -= minContext
			}
			if atEnd && !atStart {
				origStart += minContext
				modStart += minContext
				length -= minContext
			}
			result = append(result, UnchangedRegion{origStart, modStart, length})
		case length >= minContext*2+minHidden:
			result = append(result, UnchangedRegion{origStart + minContext, modStart + minContext, length - minContext*2})
		}
	}
	return result
}
