package mtl

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

//columnSplit is the candidate split of one column. Excluded columns have an infinite sse
//and the InvalidThreshold sentinel.
type columnSplit struct {
	threshold, sse float64
}

//treeBuilder grows one tree. The leaf counter is shared by every recursive call.
type treeBuilder struct {
	hyper  Hyperparameters
	policy LeafPolicy
	leaves *LeafCounter
	flaws  error
}

func (b *treeBuilder) flaw(err error, fields logrus.Fields) {
	log.WithFields(fields).Warn(err.Error())
	b.flaws = multierr.Append(b.flaws, err)
}

//scanColumns runs the threshold selection and its validation for every column of a partition.
func (b *treeBuilder) scanColumns(part DMatrix, depth int) []columnSplit {
	w := Width(part.Features)
	ssy := SumOfSquares(part.Target)
	result := make([]columnSplit, w)
	tied := make([]bool, w)
	flaws := make([]error, w)

	scan := func(q int) {
		column := part.Column(q)
		split := FastThreshold(column, part.Target, ssy)
		valid, flaw := CheckSplit(column, part.Target, split, ssy)
		tied[q] = !split.Found
		if !tied[q] {
			flaws[q] = flaw
		}
		if !valid {
			result[q] = columnSplit{threshold: InvalidThreshold, sse: math.Inf(1)}
			return
		}
		result[q] = columnSplit{threshold: split.Threshold, sse: split.SSE}
	}

	if b.hyper.ThreadsNum <= 1 {
		for q := 0; q < w; q++ {
			scan(q)
		}
	} else {
		var group errgroup.Group
		group.SetLimit(b.hyper.ThreadsNum)
		for q := 0; q < w; q++ {
			q := q
			group.Go(func() error {
				scan(q)
				return nil
			})
		}
		_ = group.Wait()
	}

	for q := 0; q < w; q++ {
		if tied[q] {
			log.WithFields(logrus.Fields{"feature": q, "depth": depth}).Debug("column has no improving threshold")
		}
		if flaws[q] != nil {
			b.flaw(errors.Wrapf(flaws[q], "feature %d at depth %d", q, depth),
				logrus.Fields{"feature": q, "depth": depth, "threshold": result[q].threshold})
		}
	}
	return result
}

//bestColumn returns the index of the minimal sse, the first index wins ties.
func bestColumn(splits []columnSplit) int {
	best := 0
	for q := 1; q < len(splits); q++ {
		if splits[q].sse < splits[best].sse {
			best = q
		}
	}
	return best
}

//buildTree recurrently builds the subtree of a partition.
func (b *treeBuilder) buildTree(part DMatrix, depth int, branch Branch, parentFeature int, parentThreshold float64) *TreeNode {
	h, w := part.Features.Dims()
	splits := b.scanColumns(part, depth)
	best := bestColumn(splits)

	if math.IsInf(splits[best].sse, 1) {
		b.flaw(errors.Errorf("no valid column for %d rows at depth %d, forced leaf", h, depth),
			logrus.Fields{"depth": depth, "rows": h})
		return b.newLeaf(part, depth, branch, parentFeature, parentThreshold)
	}

	node := &TreeNode{
		Feature:         best,
		Branch:          branch,
		Params:          []float64{stat.Mean(part.Target, nil)},
		Threshold:       splits[best].threshold,
		Depth:           depth,
		ParentThreshold: parentThreshold,
		ParentFeature:   parentFeature,
		NumberOfObjects: h,
		CurrentLoss:     splits[best].sse,
	}
	log.WithFields(logrus.Fields{"feature": best, "threshold": node.Threshold, "depth": depth, "rows": h}).Debug("split")

	left, right := part.Split(best, node.Threshold)
	for side, child := range []DMatrix{left, right} {
		rows := len(child.Target)
		if rows == 0 {
			log.WithFields(logrus.Fields{"branch": Branch(side), "depth": depth}).Debug("empty side of a split")
			continue
		}
		if depth >= b.hyper.MaxDepth-1 || rows <= w {
			node.Children = append(node.Children, b.newLeaf(child, depth+1, Branch(side), best, node.Threshold))
		} else {
			node.Children = append(node.Children, b.buildTree(child, depth+1, Branch(side), best, node.Threshold))
		}
	}
	return node
}

//newLeaf creates a leaf and registers it in the shared counter. Partitions with no more rows
//than columns always get the mean.
func (b *treeBuilder) newLeaf(part DMatrix, depth int, branch Branch, feature int, threshold float64) *TreeNode {
	b.leaves.Increment()
	h, w := part.Features.Dims()

	var policy LeafPolicy = MeanPolicy{}
	if h > w {
		policy = b.policy
	}
	params, err := policy.FitLeaf(part)
	if err != nil {
		b.flaw(errors.Wrapf(err, "leaf of %d rows at depth %d falls back to the mean", h, depth),
			logrus.Fields{"depth": depth, "rows": h})
		params = []float64{stat.Mean(part.Target, nil)}
	}

	return &TreeNode{
		Feature:         feature,
		Branch:          branch,
		Params:          params,
		Threshold:       threshold,
		Depth:           depth,
		ParentThreshold: threshold,
		ParentFeature:   feature,
		IsLeaf:          true,
		NumberOfObjects: h,
		CurrentLoss:     leafLoss(params, part),
	}
}
