package text

import (
	"sort"
	"strings"
)

// LineRangeSet is a sorted set of disjoint, non-touching line ranges.
type LineRangeSet struct {
	ranges []LineRange
}

// NewLineRangeSet returns a set holding ranges, which must already be sorted
// and disjoint.
func NewLineRangeSet(ranges ...LineRange) *LineRangeSet {
	return &LineRangeSet{ranges: ranges}
}

// Ranges returns the ranges of the set in ascending order.
func (s *LineRangeSet) Ranges() []LineRange {
	return s.ranges
}

// AddRange adds r, merging it with every range it overlaps or touches.
func (s *LineRangeSet) AddRange(r LineRange) {
	if r.IsEmpty() {
		return
	}
	// First range that ends at or after r starts.
	joinStart := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].EndExclusive >= r.Start
	})
	// First range that starts after r ends.
	joinEnd := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Start > r.EndExclusive
	})

	if joinStart == joinEnd {
		s.ranges = append(s.ranges, LineRange{})
		copy(s.ranges[joinStart+1:], s.ranges[joinStart:])
		s.ranges[joinStart] = r
		return
	}

	joined := r.Join(s.ranges[joinStart]).Join(s.ranges[joinEnd-1])
	s.ranges = append(s.ranges[:joinStart], append([]LineRange{joined}, s.ranges[joinEnd:]...)...)
}

// Contains reports whether lineNumber is in the set.
func (s *LineRangeSet) Contains(lineNumber int) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Start > lineNumber
	}) - 1
	return i >= 0 && s.ranges[i].EndExclusive > lineNumber
}

// SubtractFrom returns the parts of r not covered by the set.
func (s *LineRangeSet) SubtractFrom(r LineRange) *LineRangeSet {
	joinStart := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].EndExclusive >= r.Start
	})
	joinEnd := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Start > r.EndExclusive
	})
	if joinStart == joinEnd {
		return NewLineRangeSet(r)
	}

	var result []LineRange
	start := r.Start
	for _, cur := range s.ranges[joinStart:joinEnd] {
		if cur.Start > start {
			result = append(result, NewLineRange(start, cur.Start))
		}
		start = cur.EndExclusive
	}
	if start < r.EndExclusive {
		result = append(result, NewLineRange(start, r.EndExclusive))
	}
	return NewLineRangeSet(result...)
}

// Intersect returns the lines present in both sets.
func (s *LineRangeSet) Intersect(other *LineRangeSet) *LineRangeSet {
	var result []LineRange
	i, j := 0, 0
	for i < len(s.ranges) && j < len(other.ranges) {
		r1, r2 := s.ranges[i], other.ranges[j]
		if in, ok := r1.Intersect(r2); ok && !in.IsEmpty() {
			result = append(result, in)
		}
		if r1.EndExclusive < r2.EndExclusive {
			i++
		} else {
			j++
		}
	}
	return NewLineRangeSet(result...)
}

// WithDelta shifts every range by delta.
func (s *LineRangeSet) WithDelta(delta int) *LineRangeSet {
	shifted := make([]LineRange, len(s.ranges))
	for i, r := range s.ranges {
		shifted[i] = r.Delta(delta)
	}
	return NewLineRangeSet(shifted...)
}

func (s *LineRangeSet) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
