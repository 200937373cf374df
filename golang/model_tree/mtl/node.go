package mtl

import (
	"fmt"
	"strings"
)

//Branch tells which side of the parent split produced a node.
type Branch int

const (
	BranchRoot  Branch = -1
	BranchLeft  Branch = 0
	BranchRight Branch = 1
)

func (b Branch) String() string {
	switch b {
	case BranchRoot:
		return "root"
	case BranchLeft:
		return "left"
	case BranchRight:
		return "right"
	}
	return fmt.Sprintf("branch(%d)", int(b))
}

//TreeNode is a node of a tree. An internal node splits its rows by Feature <= Threshold into
//Children[0] and Children[1]. A side that receives no rows is omitted, so an internal node may
//have fewer than two children and then predicts with its own Params.
//A leaf keeps Feature and Threshold of the node that created it for display only.
type TreeNode struct {
	Feature         int
	Branch          Branch
	Params          []float64
	Threshold       float64
	Depth           int
	ParentThreshold float64
	ParentFeature   int
	IsLeaf          bool
	Children        []*TreeNode
	NumberOfObjects int
	CurrentLoss     float64
}

//featureName returns a printable name of a feature.
func featureName(names []string, feature int) string {
	if feature >= 0 && feature < len(names) {
		return names[feature]
	}
	return fmt.Sprintf("f_%d", feature)
}

//Description returns a one line description of a node.
func (node *TreeNode) Description(names []string) string {
	if node.IsLeaf || len(node.Children) < 2 {
		return fmt.Sprintf("%s leaf depth=%d n=%d params=%s", node.Branch, node.Depth, node.NumberOfObjects, formatParams(node.Params))
	}
	return fmt.Sprintf("%s %s <= %.6g depth=%d n=%d sse=%.6g", node.Branch, featureName(names, node.Feature), node.Threshold,
		node.Depth, node.NumberOfObjects, node.CurrentLoss)
}

//GraphDescription returns the description of a tree node for tree rendering as a graph
func (node *TreeNode) GraphDescription(names []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintln("#", node.NumberOfObjects))
	sb.WriteString(fmt.Sprintln("depth: ", node.Depth))
	if node.IsLeaf || len(node.Children) < 2 {
		sb.WriteString("[")
		for _, val := range node.Params {
			sb.WriteString(fmt.Sprintf("  %6.2f,\n", val))
		}
		sb.WriteString("]\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintln("sse: ", node.CurrentLoss))
	sb.WriteString(fmt.Sprintf("%s <= %6.5f", featureName(names, node.Feature), node.Threshold))
	return sb.String()
}

func formatParams(params []float64) string {
	parts := make([]string, len(params))
	for ind, val := range params {
		parts[ind] = fmt.Sprintf("%.6g", val)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

//PreOrder visits the node and then its children, left before right.
func (node *TreeNode) PreOrder(visit func(*TreeNode)) {
	visit(node)
	for _, child := range node.Children {
		child.PreOrder(visit)
	}
}

//BreadthFirst visits nodes level by level.
func (node *TreeNode) BreadthFirst(visit func(*TreeNode)) {
	queue := []*TreeNode{node}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visit(current)
		queue = append(queue, current.Children...)
	}
}

//Leaves returns the leaf-flagged nodes in pre-order.
func (node *TreeNode) Leaves() (leaves []*TreeNode) {
	node.PreOrder(func(n *TreeNode) {
		if n.IsLeaf {
			leaves = append(leaves, n)
		}
	})
	return
}

//terminal walks from the node to the one answering for the row.
func (node *TreeNode) terminal(row []float64) *TreeNode {
	current := node
	for len(current.Children) >= 2 {
		if row[current.Feature] <= current.Threshold {
			current = current.Children[0]
		} else {
			current = current.Children[1]
		}
	}
	return current
}
