package mtl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgSortTiny(t *testing.T) {
	fAs := columnArgsort([]float64{5.0, 4.0, 6.0, 1.0, 2.0})
	assert.Equal(t, []int{3, 4, 1, 0, 2}, fAs)
}

func TestFastThresholdStepData(t *testing.T) {
	x, y := stepData()
	column := x.RawMatrix().Data
	ssy := SumOfSquares(y)

	split := FastThreshold(column, y, ssy)
	require.True(t, split.Found)
	assert.Equal(t, 6.5, split.Threshold)
	assert.InDelta(t, 1.9300083333, split.SSE, 1e-8)
	assert.InDelta(t, directSSE(column, y, split.Threshold, ssy), split.SSE, SseTolerance)
}

func TestFastThresholdUnsortedColumn(t *testing.T) {
	column := []float64{3, 1, 4, 2}
	y := []float64{10, 0, 10, 0}

	split := FastThreshold(column, y, SumOfSquares(y))
	require.True(t, split.Found)
	assert.Equal(t, 2.5, split.Threshold)
	assert.InDelta(t, 0.0, split.SSE, 1e-9)
}

func TestFastThresholdKeepsFirstMaximum(t *testing.T) {
	// splits after the first and after the third row score the same
	column := []float64{1, 2, 3, 4}
	y := []float64{1, 0, 0, 1}

	split := FastThreshold(column, y, SumOfSquares(y))
	require.True(t, split.Found)
	assert.Equal(t, 1.5, split.Threshold)
}

func TestFastThresholdTiedColumn(t *testing.T) {
	column := []float64{1.1, 1.1, 1.1, 1.1}
	y := []float64{1, 2, 3, 4}
	ssy := SumOfSquares(y)

	split := FastThreshold(column, y, ssy)
	assert.False(t, split.Found)
	assert.Equal(t, 0.0, split.Threshold)
	assert.Equal(t, ssy, split.SSE)

	valid, flaw := CheckSplit(column, y, split, ssy)
	assert.False(t, valid)
	assert.Error(t, flaw)
}

func TestFastThresholdTiesInsideColumn(t *testing.T) {
	column := []float64{1, 1, 1, 5, 5, 5}
	y := []float64{1, 2, 3, 7, 8, 9}

	split := FastThreshold(column, y, SumOfSquares(y))
	require.True(t, split.Found)
	assert.Equal(t, 3.0, split.Threshold)
}

func TestCheckSplit(t *testing.T) {
	column := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 1, 5, 5, 5}
	ssy := SumOfSquares(y)
	split := FastThreshold(column, y, ssy)

	valid, flaw := CheckSplit(column, y, split, ssy)
	assert.True(t, valid)
	assert.NoError(t, flaw)

	broken := split
	broken.SSE += 1e-3
	valid, flaw = CheckSplit(column, y, broken, ssy)
	assert.False(t, valid)
	require.Error(t, flaw)
	assert.NotContains(t, flaw.Error(), "rescale")

	// within the tolerance
	close := split
	close.SSE += 1e-8
	valid, _ = CheckSplit(column, y, close, ssy)
	assert.True(t, valid)
}

func TestCheckSplitLargeTargetMismatch(t *testing.T) {
	column := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{250000.13, 250000.71, 249999.52, 251000.38, 250999.94, 251000.27}
	ssy := SumOfSquares(y)
	split := FastThreshold(column, y, ssy)
	require.True(t, split.Found)
	assert.Equal(t, 3.5, split.Threshold)

	// a gap far below the rounding of ssy but above the absolute tolerance
	shifted := split
	shifted.SSE += 1e-2
	valid, flaw := CheckSplit(column, y, shifted, ssy)
	assert.False(t, valid)
	require.Error(t, flaw)
	assert.Contains(t, flaw.Error(), "rescale the target")
	assert.Contains(t, flaw.Error(), "sse mismatch")
}

func TestFastThresholdZeroTarget(t *testing.T) {
	column := []float64{1, 2, 3, 4}
	y := []float64{0, 0, 0, 0}

	split := FastThreshold(column, y, 0)
	assert.False(t, split.Found)

	valid, flaw := CheckSplit(column, y, split, 0)
	assert.False(t, valid)
	require.Error(t, flaw)
	assert.Equal(t, "no improving threshold", flaw.Error())
}

func TestCheckSplitOutOfRangeIsNotFatal(t *testing.T) {
	column := []float64{1, 2, 3}
	y := []float64{4, 5, 6}
	ssy := SumOfSquares(y)
	mean := 5.0
	outside := ThresholdSplit{Threshold: 10, SSE: ssy - 3*mean*mean, Found: true}

	valid, flaw := CheckSplit(column, y, outside, ssy)
	assert.True(t, valid)
	require.Error(t, flaw)
	assert.Contains(t, flaw.Error(), "outside")
}

func TestInvalidThresholdIsNegativeZero(t *testing.T) {
	assert.Equal(t, 0.0, InvalidThreshold)
	assert.True(t, math.Signbit(InvalidThreshold))
}
