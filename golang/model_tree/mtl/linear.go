package mtl

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

//LinearSolver fits a no-intercept least squares model y ~ x and returns its coefficients.
type LinearSolver interface {
	Solve(x *mat.Dense, y []float64) ([]float64, error)
}

//NormalEquationsSolver solves (XᵀX + λI)w = Xᵀy.
type NormalEquationsSolver struct {
	RegLambda float64
}

//gramMatrix computes XᵀX as the product of the transposed design tensor and the design
//tensor. Both hold a copy of x, so memory stays O(h·d).
func gramMatrix(x *mat.Dense) (*mat.Dense, error) {
	h, d := x.Dims()

	design := tensor.New(tensor.WithShape(h, d), tensor.WithBacking(mat.DenseCopyOf(x).RawMatrix().Data))
	transposed := tensor.New(tensor.WithShape(d, h), tensor.WithBacking(mat.DenseCopyOf(x.T()).RawMatrix().Data))

	product, err := transposed.MatMul(design)
	if err != nil {
		return nil, errors.Wrap(err, "can't multiply design tensors")
	}
	data := product.Float64s()
	if len(data) != d*d {
		return nil, errors.Errorf("gram matrix has %d elements, expected %d", len(data), d*d)
	}
	return mat.NewDense(d, d, append([]float64(nil), data...)), nil
}

//Solve implements LinearSolver. Ill-conditioned but finite solutions are accepted with a warning.
func (s NormalEquationsSolver) Solve(x *mat.Dense, y []float64) ([]float64, error) {
	if x == nil {
		return nil, errors.New("nil design matrix")
	}
	h, d := x.Dims()
	if len(y) != h {
		return nil, errors.Errorf("the target length %d is not equal to the design height %d", len(y), h)
	}

	hess, err := gramMatrix(x)
	if err != nil {
		return nil, err
	}
	for q := 0; q < d; q++ {
		hess.Set(q, q, hess.At(q, q)+s.RegLambda)
	}

	grad := mat.NewVecDense(d, nil)
	grad.MulVec(x.T(), mat.NewVecDense(h, append([]float64(nil), y...)))

	var weight mat.VecDense
	if err := weight.SolveVec(hess, grad); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, errors.Wrap(err, "can't solve normal equations")
		}
		log.WithField("condition", float64(cond)).Warn("ill-conditioned leaf model")
	}

	result := make([]float64, d)
	for q := 0; q < d; q++ {
		result[q] = weight.AtVec(q)
		if math.IsNaN(result[q]) || math.IsInf(result[q], 0) {
			return nil, errors.Errorf("coefficient %d is not finite", q)
		}
	}
	return result, nil
}
