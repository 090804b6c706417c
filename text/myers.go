package text

// Myers is the O((N+M)*D) greedy edit script search. It is used when the
// inputs are too large for DynamicProgramming.
type Myers struct{}

// snakePath records one diagonal run reached during the search. The chain of
// prev pointers replays the furthest-point history backwards.
type snakePath struct {
	prev   *snakePath
	x, y   int
	length int
}

func (Myers) Compute(a, b Sequence, deadline Deadline, _ func(i, j int) float64) AlgorithmResult {
	if a.Len() == 0 || b.Len() == 0 {
		return trivialResult(a, b, false)
	}

	seqX, seqY := a, b
	lenX, lenY := seqX.Len(), seqY.Len()

	getXAfterSnake := func(x, y int) int {
		if y < 0 {
			return x
		}
		for x < lenX && y < lenY && seqX.Element(x) == seqY.Element(y) {
			x++
			y++
		}
		return x
	}

	d := 0
	// V[k] is the furthest x reached on diagonal k = x - y.
	v := newSignedIntArray()
	v.set(0, getXAfterSnake(0, 0))

	paths := newSignedPathArray()
	if x := v.get(0); x == 0 {
		paths.set(0, nil)
	} else {
		paths.set(0, &snakePath{x: 0, y: 0, length: x})
	}

	k := 0
loop:
	for {
		d++
		if !deadline.IsValid() {
			return trivialResult(seqX, seqY, true)
		}
		lowerBound := -min(d, lenY+d%2)
		upperBound := min(d, lenX+d%2)
		for k = lowerBound; k <= upperBound; k += 2 {
			maxXofDLineTop := -1
			if k != upperBound {
				maxXofDLineTop = v.get(k + 1)
			}
			maxXofDLineLeft := -1
			if k != lowerBound {
				maxXofDLineLeft = v.get(k-1) + 1
			}
			x := min(max(maxXofDLineTop, maxXofDLineLeft), lenX)
			y := x - k
			if x > lenX || y > lenY {
				// Out of the grid; this diagonal is unreachable for now.
				continue
			}
			newMaxX := getXAfterSnake(x, y)
			v.set(k, newMaxX)
			lastPath := paths.get(k - 1)
			if x == maxXofDLineTop {
				lastPath = paths.get(k + 1)
			}
			if newMaxX != x {
				paths.set(k, &snakePath{prev: lastPath, x: x, y: y, length: newMaxX - x})
			} else {
				paths.set(k, lastPath)
			}
			if v.get(k) == lenX && v.get(k)-k == lenY {
				break loop
			}
		}
	}

	path := paths.get(k)
	var result []SequenceDiff
	lastAligningPosS1, lastAligningPosS2 := lenX, lenY
	for {
		endX, endY := 0, 0
		if path != nil {
			endX, endY = path.x+path.length, path.y+path.length
		}
		if endX != lastAligningPosS1 || endY != lastAligningPosS2 {
			result = append(result, SequenceDiff{
				Seq1: OffsetRange{endX, lastAligningPosS1},
				Seq2: OffsetRange{endY, lastAligningPosS2},
			})
		}
		if path == nil {
			break
		}
		lastAligningPosS1, lastAligningPosS2 = path.x, path.y
		path = path.prev
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return AlgorithmResult{Diffs: result}
}

// signedIntArray is an int slice addressable by negative indices. Both halves
// grow by doubling.
type signedIntArray struct {
	positive []int
	negative []int
}

func newSignedIntArray() *signedIntArray {
	return &signedIntArray{positive: make([]int, 10), negative: make([]int, 10)}
}

func (a *signedIntArray) get(idx int) int {
	if idx < 0 {
		idx = -idx - 1
		if idx >= len(a.negative) {
			return 0
		}
		return a.negative[idx]
	}
	if idx >= len(a.positive) {
		return 0
	}
	return a.positive[idx]
}

func (a *signedIntArray) set(idx, value int) {
	if idx < 0 {
		idx = -idx - 1
		a.negative = growTo(a.negative, idx)
		a.negative[idx] = value
		return
	}
	a.positive = growTo(a.positive, idx)
	a.positive[idx] = value
}

// signedPathArray is the snakePath counterpart of signedIntArray.
type signedPathArray struct {
	positive []*snakePath
	negative []*snakePath
}

func newSignedPathArray() *signedPathArray {
	return &signedPathArray{}
}

func (a *signedPathArray) get(idx int) *snakePath {
	if idx < 0 {
		idx = -idx - 1
		if idx >= len(a.negative) {
			return nil
		}
		return a.negative[idx]
	}
	if idx >= len(a.positive) {
		return nil
	}
	return a.positive[idx]
}

func (a *signedPathArray) set(idx int, value *snakePath) {
	if idx < 0 {
		idx = -idx - 1
		a.negative = growTo(a.negative, idx)
		a.negative[idx] = value
		return
	}
	a.positive = growTo(a.positive, idx)
	a.positive[idx] = value
}

func growTo[T any](s []T, idx int) []T {
	if idx < len(s) {
		return s
	}
	size := max(len(s)*2, idx+1)
	grown := make([]T, size)
	copy(grown, s)
	return grown
}
