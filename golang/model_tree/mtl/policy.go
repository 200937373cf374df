package mtl

import (
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Variant selects how leaves with enough rows are fitted.
type Variant int

const (
	//RegressionTree keeps the mean of the target in every leaf.
	RegressionTree Variant = iota
	//ModelTree fits a local linear model in every leaf that has more rows than columns.
	ModelTree
)

func (v Variant) String() string {
	switch v {
	case RegressionTree:
		return "rt"
	case ModelTree:
		return "mt"
	}
	return "unknown"
}

//ParseVariant parses "rt" or "mt".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "rt", "regression_tree":
		return RegressionTree, nil
	case "mt", "model_tree":
		return ModelTree, nil
	}
	return 0, errors.Errorf("unknown tree variant %q", s)
}

//LeafPolicy fits the parameters of a leaf from its partition.
type LeafPolicy interface {
	FitLeaf(part DMatrix) ([]float64, error)
}

//MeanPolicy predicts the mean of the target.
type MeanPolicy struct{}

func (MeanPolicy) FitLeaf(part DMatrix) ([]float64, error) {
	if len(part.Target) == 0 {
		return nil, errors.New("empty leaf")
	}
	return []float64{stat.Mean(part.Target, nil)}, nil
}

//LocalRegressionPolicy fits a no-intercept linear model of the target on all columns.
type LocalRegressionPolicy struct {
	Solver LinearSolver
}

func (p LocalRegressionPolicy) FitLeaf(part DMatrix) ([]float64, error) {
	if len(part.Target) == 0 {
		return nil, errors.New("empty leaf")
	}
	return p.Solver.Solve(part.Features, part.Target)
}

//evaluateParams applies leaf parameters to a row.
func evaluateParams(params, row []float64) float64 {
	if len(params) == 1 {
		return params[0]
	}
	return floats.Dot(params, row)
}

//leafLoss is the sse of leaf parameters over the partition.
func leafLoss(params []float64, part DMatrix) (sse float64) {
	for p, target := range part.Target {
		d := target - evaluateParams(params, part.Features.RawRowView(p))
		sse += d * d
	}
	return
}
