package mtl

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

//SseTolerance is the absolute difference allowed between the sse reported by FastThreshold
//and the one recomputed by CheckSplit.
const SseTolerance = 1e-6

//roundingGap is the mismatch relative to the sum of squares of the target below which the gap
//is float rounding of a large-magnitude target rather than a wrong split.
const roundingGap = 1e-9

//InvalidThreshold marks a column excluded from the current split decision.
var InvalidThreshold = math.Copysign(0, -1)

//ThresholdSplit contains results of the threshold selection for one column.
type ThresholdSplit struct {
	Threshold float64
	SSE       float64
	Found     bool // false when no threshold reduces the sse, e.g. all values of the column are tied
}

//columnArgsort returns row indices ordered by ascending column values.
func columnArgsort(column []float64) []int {
	order := make([]int, len(column))
	for ind := range order {
		order[ind] = ind
	}
	sort.Slice(order, func(i, j int) bool {
		return column[order[i]] < column[order[j]]
	})
	return order
}

//SumOfSquares returns the sum of squared values.
func SumOfSquares(values []float64) (ssy float64) {
	for _, v := range values {
		ssy += v * v
	}
	return
}

//splitScore is the part of sse a split removes: sumL^2/nL + sumR^2/nR. Empty sides add nothing.
func splitScore(sumLeft float64, nLeft int, sumRight float64, nRight int) (score float64) {
	if nLeft > 0 {
		score += sumLeft * sumLeft / float64(nLeft)
	}
	if nRight > 0 {
		score += sumRight * sumRight / float64(nRight)
	}
	return
}

//FastThreshold finds the best threshold of a column and the total sse of the split in O(n log n).
//ssy is the sum of squares of y in the partition. The first maximal score wins, the threshold
//is the middle point between two adjacent distinct values.
func FastThreshold(column, y []float64, ssy float64) (split ThresholdSplit) {
	n := len(column)
	order := columnArgsort(column)

	nLeft, nRight := 0, n
	sumLeft, sumRight := 0.0, 0.0
	for _, v := range y {
		sumRight += v
	}

	bestScore := 0.0
	split.SSE = ssy
	for hInd := 0; hInd < n-1; hInd++ {
		current, next := order[hInd], order[hInd+1]
		nLeft++
		nRight--
		sumLeft += y[current]
		sumRight -= y[current]

		if column[current] == column[next] {
			continue
		}
		score := splitScore(sumLeft, nLeft, sumRight, nRight)
		if score > bestScore {
			split.Found = true
			bestScore = score
			split.Threshold = (column[current] + column[next]) / 2
		}
	}

	if split.Found {
		split.SSE = ssy - bestScore
	}
	return
}

//directSSE recomputes the sse of a split in O(n) by summing y on each side of the threshold.
func directSSE(column, y []float64, threshold, ssy float64) float64 {
	nLeft, nRight := 0, 0
	sumLeft, sumRight := 0.0, 0.0
	for p, value := range column {
		if value <= threshold {
			nLeft++
			sumLeft += y[p]
		} else {
			nRight++
			sumRight += y[p]
		}
	}
	return ssy - splitScore(sumLeft, nLeft, sumRight, nRight)
}

//CheckSplit validates a split produced by FastThreshold. The sse agreement alone decides
//the result. A threshold outside the observed range of the column is reported as a flaw
//through the returned error without failing the check.
func CheckSplit(column, y []float64, split ThresholdSplit, ssy float64) (valid bool, flaw error) {
	if !split.Found {
		return false, errors.New("no improving threshold")
	}

	minValue, maxValue := math.Inf(1), math.Inf(-1)
	for _, value := range column {
		minValue = math.Min(minValue, value)
		maxValue = math.Max(maxValue, value)
	}
	if split.Threshold < minValue || split.Threshold > maxValue {
		flaw = errors.Errorf("threshold %g is outside of [%g, %g]", split.Threshold, minValue, maxValue)
	}

	sse := directSSE(column, y, split.Threshold, ssy)
	if gap := math.Abs(sse - split.SSE); gap > SseTolerance {
		mismatch := errors.Errorf("sse mismatch: fast %g, direct %g", split.SSE, sse)
		if gap <= roundingGap*math.Max(ssy, 1) {
			mismatch = errors.Wrap(mismatch, "target scale too large for the absolute sse tolerance, rescale the target")
		}
		return false, multierr.Append(flaw, mismatch)
	}
	return true, flaw
}
