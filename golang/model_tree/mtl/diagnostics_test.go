package mtl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityOfFit(t *testing.T) {
	q := &QualityOfFit{}
	q.ResetDegreesOfFreedom(2, 2)

	actual := []float64{1, 2, 3, 4}
	predicted := []float64{1.5, 1.5, 3.5, 3.5}
	m, err := q.Diagnose(actual, predicted)
	require.NoError(t, err)

	assert.Equal(t, 4, m.N)
	assert.InDelta(t, 1.0, m.SSE, 1e-12)
	assert.InDelta(t, 0.25, m.MSE, 1e-12)
	assert.InDelta(t, 0.5, m.RMSE, 1e-12)
	assert.InDelta(t, 0.5, m.MAE, 1e-12)
	assert.InDelta(t, 100*(0.5+0.25+0.5/3+0.125)/4, m.MAPE, 1e-9)
	assert.InDelta(t, 0.8, m.RSquared, 1e-12)
	assert.InDelta(t, 1-0.2*3/2, m.AdjRSquared, 1e-12)
	assert.InDelta(t, 4*math.Log(0.25)+4, m.AIC, 1e-12)
	assert.InDelta(t, 4*math.Log(0.25)+2*math.Log(4), m.BIC, 1e-12)
}

func TestQualityOfFitWithoutErrorDegreesOfFreedom(t *testing.T) {
	q := &QualityOfFit{}
	q.ResetDegreesOfFreedom(4, 0)
	m, err := q.Diagnose([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.AdjRSquared))
	assert.Equal(t, 1.0, m.RSquared)
}

func TestQualityOfFitErrors(t *testing.T) {
	q := &QualityOfFit{}
	_, err := q.Diagnose([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = q.Diagnose(nil, nil)
	assert.Error(t, err)
}
