package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInverseLineRangeMappings(t *testing.T) {
	changes := []LineRangeMapping{
		{Original: NewLineRange(3, 4), Modified: NewLineRange(3, 5)},
		{Original: NewLineRange(6, 6), Modified: NewLineRange(7, 8)},
	}

	got := InverseLineRangeMappings(changes, 8, 10)
	assert.Equal(t, []LineRangeMapping{
		{Original: NewLineRange(1, 3), Modified: NewLineRange(1, 3)},
		{Original: NewLineRange(4, 6), Modified: NewLineRange(5, 7)},
		{Original: NewLineRange(6, 9), Modified: NewLineRange(8, 11)},
	}, got, "unchanged stretches")
}

func TestComputeUnchangedRegions_KeepsContext(t *testing.T) {
	changes := []LineRangeMapping{{Original: NewLineRange(5, 6), Modified: NewLineRange(5, 6)}}

	got := ComputeUnchangedRegions(changes, 20, 20, 3, 2)
	assert.Equal(t, []UnchangedRegion{{OriginalLine: 8, ModifiedLine: 8, LineCount: 13}}, got, "only the tail is long enough")
	assert.Equal(t, NewLineRange(8, 21), got[0].OriginalRange(), "original range")
}

func TestComputeUnchangedRegions_MiddleRegion(t *testing.T) {
	changes := []LineRangeMapping{
		{Original: NewLineRange(1, 2), Modified: NewLineRange(1, 2)},
		{Original: NewLineRange(12, 13), Modified: NewLineRange(12, 14)},
	}

	got := ComputeUnchangedRegions(changes, 12, 13, 3, 2)
	assert.Equal(t, []UnchangedRegion{{OriginalLine: 4, ModifiedLine: 4, LineCount: 6}}, got, "context on both sides")
}

func TestComputeUnchangedRegions_NoChanges(t *testing.T) {
	got := ComputeUnchangedRegions(nil, 10, 10, 3, 2)
	assert.Equal(t, []UnchangedRegion{{OriginalLine: 1, ModifiedLine: 1, LineCount: 10}}, got, "whole document")
}
