package mtl

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//FitMetrics is the quality of fit of a model on one data set.
type FitMetrics struct {
	N           int
	ModelDF     float64
	ErrorDF     float64
	SSE         float64
	MSE         float64
	RMSE        float64
	MAE         float64
	MAPE        float64 // over rows with a non-zero actual value
	RSquared    float64
	AdjRSquared float64
	AIC         float64
	BIC         float64
}

//Diagnostics computes quality of fit metrics given the degrees of freedom of a model.
type Diagnostics interface {
	ResetDegreesOfFreedom(modelDF, errorDF float64)
	Diagnose(actual, predicted []float64) (FitMetrics, error)
}

//QualityOfFit is the default Diagnostics.
type QualityOfFit struct {
	modelDF, errorDF float64
}

func (q *QualityOfFit) ResetDegreesOfFreedom(modelDF, errorDF float64) {
	q.modelDF, q.errorDF = modelDF, errorDF
}

func (q *QualityOfFit) Diagnose(actual, predicted []float64) (m FitMetrics, err error) {
	if len(actual) != len(predicted) {
		return m, errors.Errorf("actual has %d values, predicted has %d", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return m, errors.New("nothing to diagnose")
	}

	n := float64(len(actual))
	m.N = len(actual)
	m.ModelDF, m.ErrorDF = q.modelDF, q.errorDF

	residuals := make([]float64, len(actual))
	floats.SubTo(residuals, actual, predicted)
	m.SSE = floats.Dot(residuals, residuals)
	m.MSE = m.SSE / n
	m.RMSE = math.Sqrt(m.MSE)
	m.MAE = floats.Norm(residuals, 1) / n

	nonZero := 0
	for p, value := range actual {
		if value != 0 {
			m.MAPE += math.Abs(residuals[p] / value)
			nonZero++
		}
	}
	if nonZero > 0 {
		m.MAPE = 100 * m.MAPE / float64(nonZero)
	}

	m.RSquared = stat.RSquaredFrom(predicted, actual, nil)
	if q.errorDF > 0 {
		m.AdjRSquared = 1 - (1-m.RSquared)*(n-1)/q.errorDF
	} else {
		m.AdjRSquared = math.NaN()
	}

	logLikelihood := n * math.Log(m.SSE/n)
	m.AIC = logLikelihood + 2*q.modelDF
	m.BIC = logLikelihood + q.modelDF*math.Log(n)
	return m, nil
}
