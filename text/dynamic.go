package text

// Algorithm computes the raw diff between two sequences.
type Algorithm interface {
	// Compute returns the differing stretches of a and b. score, when non-nil,
	// weights a match between a[i] and b[j].
	Compute(a, b Sequence, deadline Deadline, score func(i, j int) float64) AlgorithmResult
}

// AlgorithmResult holds diffs sorted by position and whether the deadline
// cut the computation short.
type AlgorithmResult struct {
	Diffs      []SequenceDiff
	HitTimeout bool
}

// trivialResult reports everything as changed.
func trivialResult(a, b Sequence, hitTimeout bool) AlgorithmResult {
	return AlgorithmResult{
		Diffs: []SequenceDiff{{
			Seq1: OffsetRangeOfLength(a.Len()),
			Seq2: OffsetRangeOfLength(b.Len()),
		}},
		HitTimeout: hitTimeout,
	}
}

// DynamicProgramming is an O(N*M) longest common subsequence solver that
// prefers long diagonal runs.
type DynamicProgramming struct{}

const (
	dirHorizontal = 1
	dirVertical   = 2
	dirDiagonal   = 3
)

func (DynamicProgramming) Compute(a, b Sequence, deadline Deadline, score func(i, j int) float64) AlgorithmResult {
	n, m := a.Len(), b.Len()
	if n == 0 || m == 0 {
		return trivialResult(a, b, false)
	}

	lcs := newGrid[float64](n, m)
	directions := newGrid[uint8](n, m)
	lengths := newGrid[int](n, m)

	for s1 := 0; s1 < n; s1++ {
		for s2 := 0; s2 < m; s2++ {
			if !deadline.IsValid() {
				return trivialResult(a, b, true)
			}

			horizontal := 0.0
			if s1 > 0 {
				horizontal = lcs.at(s1-1, s2)
			}
			vertical := 0.0
			if s2 > 0 {
				vertical = lcs.at(s1, s2-1)
			}

			extended := -1.0
			if a.Element(s1) == b.Element(s2) {
				if s1 == 0 || s2 == 0 {
					extended = 0
				} else {
					extended = lcs.at(s1-1, s2-1)
				}
				if s1 > 0 && s2 > 0 && directions.at(s1-1, s2-1) == dirDiagonal {
					// Reward continuing a run.
					extended += float64(lengths.at(s1-1, s2-1))
				}
				if score != nil {
					extended += score(s1, s2)
				} else {
					extended++
				}
			}

			best := max(horizontal, vertical, extended)
			switch best {
			case extended:
				prevLen := 0
				if s1 > 0 && s2 > 0 {
					prevLen = lengths.at(s1-1, s2-1)
				}
				lengths.set(s1, s2, prevLen+1)
				directions.set(s1, s2, dirDiagonal)
			case horizontal:
				lengths.set(s1, s2, 0)
				directions.set(s1, s2, dirHorizontal)
			default:
				lengths.set(s1, s2, 0)
				directions.set(s1, s2, dirVertical)
			}
			lcs.set(s1, s2, best)
		}
	}

	var result []SequenceDiff
	lastAligningPosS1, lastAligningPosS2 := n, m
	reportDecreasingAligningPositions := func(s1, s2 int) {
		if s1+1 != lastAligningPosS1 || s2+1 != lastAligningPosS2 {
			result = append(result, SequenceDiff{
				Seq1: OffsetRange{s1 + 1, lastAligningPosS1},
				Seq2: OffsetRange{s2 + 1, lastAligningPosS2},
			})
		}
		lastAligningPosS1, lastAligningPosS2 = s1, s2
	}

	s1, s2 := n-1, m-1
	for s1 >= 0 && s2 >= 0 {
		switch directions.at(s1, s2) {
		case dirDiagonal:
			reportDecreasingAligningPositions(s1, s2)
			s1--
			s2--
		case dirHorizontal:
			s1--
		default:
			s2--
		}
	}
	reportDecreasingAligningPositions(-1, -1)

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return AlgorithmResult{Diffs: result}
}

// grid is a dense row-major two dimensional table.
type grid[T any] struct {
	cols  int
	cells []T
}

func newGrid[T any](rows, cols int) *grid[T] {
	return &grid[T]{cols: cols, cells: make([]T, rows*cols)}
}

func (g *grid[T]) at(row, col int) T { return g.cells[row*g.cols+col] }

func (g *grid[T]) set(row, col int, v T) { g.cells[row*g.cols+col] = v }
