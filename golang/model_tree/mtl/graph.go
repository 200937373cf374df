package mtl

import (
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

//GraphFormats maps file extensions to graphviz output formats.
var GraphFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
	"dot": graphviz.XDOT,
}

func recurrentDraw(g *cgraph.Graph, node *TreeNode, names []string, nodeId *int, parentNode *cgraph.Node) error {
	if node == nil {
		return errors.New("nil tree node")
	}
	currentNode, err := g.CreateNode(fmt.Sprint(*nodeId))
	if err != nil {
		return errors.Wrap(err, "can't create a graph node")
	}
	*nodeId++

	if parentNode != nil {
		edge, err := g.CreateEdge("", parentNode, currentNode)
		if err != nil {
			return errors.Wrap(err, "can't create a graph edge")
		}
		edge.SetLabel(node.Branch.String())
	}

	currentNode.SetLabel(node.GraphDescription(names))
	if node.IsLeaf || len(node.Children) < 2 {
		currentNode.SetShape(cgraph.BoxShape)
	}
	for _, child := range node.Children {
		if err := recurrentDraw(g, child, names, nodeId, currentNode); err != nil {
			return err
		}
	}
	return nil
}

//DrawGraph builds a graphviz graph of the tree. The caller closes both returned objects.
func (t *Tree) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	if t.Root == nil {
		return nil, nil, errors.New("draw an untrained tree")
	}
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		_ = graphViz.Close()
		return nil, nil, errors.Wrap(err, "can't create a graph")
	}

	nodeId := 0
	if err := recurrentDraw(graph, t.Root, t.FeatureNames, &nodeId, nil); err != nil {
		err = multierr.Combine(err, graph.Close(), graphViz.Close())
		return nil, nil, err
	}
	return graphViz, graph, nil
}

//RenderGraph renders the tree into a file, figureType is one of GraphFormats keys.
func (t *Tree) RenderGraph(filename, figureType string) error {
	format, ok := GraphFormats[figureType]
	if !ok {
		return errors.Errorf("unknown figure type %q", figureType)
	}
	graphViz, graph, err := t.DrawGraph()
	if err != nil {
		return err
	}
	defer func() {
		_ = graph.Close()
		_ = graphViz.Close()
	}()
	return errors.Wrapf(graphViz.RenderFilename(graph, format, filename), "can't render %s", filename)
}
