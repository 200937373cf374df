package mtl

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

//Tree is a regression tree (mean leaves) or a model tree (linear leaves).
type Tree struct {
	Variant      Variant
	Hyper        Hyperparameters
	Root         *TreeNode
	NumFeatures  int
	FeatureNames []string
	LeafCount    int
	ModelDF      float64
	ErrorDF      float64

	solver      LinearSolver
	diagnostics Diagnostics
	metrics     *FitMetrics
	flaws       error
}

//Option configures a Tree.
type Option func(*Tree)

//WithSolver replaces the solver used by model tree leaves.
func WithSolver(solver LinearSolver) Option {
	return func(t *Tree) { t.solver = solver }
}

//WithDiagnostics replaces the quality of fit collaborator.
func WithDiagnostics(diagnostics Diagnostics) Option {
	return func(t *Tree) { t.diagnostics = diagnostics }
}

//WithFeatureNames sets names used when a tree is printed or rendered.
func WithFeatureNames(names ...string) Option {
	return func(t *Tree) { t.FeatureNames = names }
}

//NewTree creates an untrained tree.
func NewTree(variant Variant, hyper Hyperparameters, options ...Option) *Tree {
	t := &Tree{Variant: variant, Hyper: hyper}
	for _, option := range options {
		option(t)
	}
	if t.solver == nil {
		t.solver = NormalEquationsSolver{RegLambda: hyper.RegLambda}
	}
	if t.diagnostics == nil {
		t.diagnostics = &QualityOfFit{}
	}
	return t
}

func (t *Tree) leafPolicy() LeafPolicy {
	if t.Variant == ModelTree {
		return LocalRegressionPolicy{Solver: t.solver}
	}
	return MeanPolicy{}
}

//Train builds the tree on x and y. Only invalid input is reported as an error, problems met
//during the build are available through Flaws.
func (t *Tree) Train(x *mat.Dense, y []float64) error {
	if x == nil || x.IsEmpty() {
		return errors.New("empty data matrix")
	}
	h, w := x.Dims()
	if len(y) != h {
		return errors.Errorf("the response has %d values, the data matrix has %d rows", len(y), h)
	}
	if h < w {
		return errors.Errorf("%d rows are not enough for %d columns", h, w)
	}
	if err := t.Hyper.Validate(); err != nil {
		return err
	}

	t.NumFeatures = w
	t.ModelDF, t.ErrorDF = float64(w-1), float64(h-w)
	t.metrics, t.flaws = nil, nil

	builder := &treeBuilder{hyper: t.Hyper, policy: t.leafPolicy(), leaves: &LeafCounter{}}
	t.Root = builder.buildTree(NewDMatrix(x, y), 0, BranchRoot, -1, -1)
	t.LeafCount = builder.leaves.Count()
	t.flaws = builder.flaws

	t.ModelDF, t.ErrorDF = float64(t.LeafCount), float64(h-t.LeafCount)
	if t.ErrorDF < 0 {
		t.addFlaw(errors.Errorf("negative error degrees of freedom %g", t.ErrorDF))
	}
	t.diagnostics.ResetDegreesOfFreedom(t.ModelDF, t.ErrorDF)
	metrics, err := t.diagnostics.Diagnose(y, t.PredictMatrix(x).RawVector().Data)
	if err != nil {
		t.addFlaw(errors.Wrap(err, "can't diagnose the training fit"))
	} else {
		t.metrics = &metrics
	}

	log.WithFields(logrus.Fields{
		"variant": t.Variant,
		"rows":    h,
		"leaves":  t.LeafCount,
		"flaws":   len(multierr.Errors(t.flaws)),
	}).Info("tree is built")
	return nil
}

func (t *Tree) addFlaw(err error) {
	log.Warn(err.Error())
	t.flaws = multierr.Append(t.flaws, err)
}

//NumLeaves returns the number of leaves counted during the build.
func (t *Tree) NumLeaves() int {
	return t.LeafCount
}

//Flaws returns non-fatal problems met during the last Train, nil when there were none.
func (t *Tree) Flaws() error {
	return t.flaws
}

//Metrics returns the quality of fit on the training data, nil before training.
func (t *Tree) Metrics() *FitMetrics {
	return t.metrics
}

//Predict infers the value of one row with NumFeatures values.
func (t *Tree) Predict(row []float64) float64 {
	if t.Root == nil {
		log.Panic("predict with an untrained tree")
	}
	if len(row) != t.NumFeatures {
		log.Panicf("the row has %d values, the tree expects %d features", len(row), t.NumFeatures)
	}
	return evaluateParams(t.Root.terminal(row).Params, row)
}

//PredictMatrix infers values of all rows of x.
func (t *Tree) PredictMatrix(x mat.RawMatrixer) *mat.VecDense {
	raw := x.RawMatrix()
	prediction := mat.NewVecDense(raw.Rows, nil)
	for p := 0; p < raw.Rows; p++ {
		row := raw.Data[p*raw.Stride : p*raw.Stride+raw.Cols]
		prediction.SetVec(p, t.Predict(row))
	}
	return prediction
}

func (t *Tree) header() string {
	return fmt.Sprintf("%s tree: max depth %d, threshold %g, %d leaves\n",
		t.Variant, t.Hyper.MaxDepth, t.Hyper.Threshold, t.LeafCount)
}

//String prints the tree in pre-order, one node per line indented by depth.
func (t *Tree) String() string {
	var sb strings.Builder
	sb.WriteString(t.header())
	if t.Root != nil {
		t.Root.PreOrder(func(node *TreeNode) {
			sb.WriteString(strings.Repeat("  ", node.Depth))
			sb.WriteString(node.Description(t.FeatureNames))
			sb.WriteString("\n")
		})
	}
	return sb.String()
}

//BreadthFirstString prints the tree level by level.
func (t *Tree) BreadthFirstString() string {
	var sb strings.Builder
	sb.WriteString(t.header())
	if t.Root != nil {
		t.Root.BreadthFirst(func(node *TreeNode) {
			sb.WriteString(fmt.Sprintf("%d: %s\n", node.Depth, node.Description(t.FeatureNames)))
		})
	}
	return sb.String()
}
