package mtl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHyperparametersFromMap(t *testing.T) {
	hyper, err := HyperparametersFromMap(map[string]float64{
		"maxDepth":   4,
		"threshold":  0.3,
		"threadsNum": 2,
		"nTrees":     100,
		"bRatio":     0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, hyper.MaxDepth)
	assert.Equal(t, 0.3, hyper.Threshold)
	assert.Equal(t, 2, hyper.ThreadsNum)
}

func TestHyperparametersDefaults(t *testing.T) {
	hyper, err := HyperparametersFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultHyperparameters(), hyper)
}

func TestHyperparametersFromMapErrors(t *testing.T) {
	for name, options := range map[string]map[string]float64{
		"zero depth":         {"maxDepth": 0},
		"fractional depth":   {"maxDepth": 2.5},
		"negative lambda":    {"regLambda": -1},
		"unknown key":        {"maxDepht": 3},
		"huge depth":         {"maxDepth": 1e19},
		"infinite depth":     {"maxDepth": math.Inf(1)},
		"fractional threads": {"threadsNum": 1.5},
		"negative threads":   {"threadsNum": -2},
		"huge threads":       {"threadsNum": 1e12},
	} {
		_, err := HyperparametersFromMap(options)
		assert.Error(t, err, name)
	}
}

func TestHyperparametersZeroThreadsIsSequential(t *testing.T) {
	hyper, err := HyperparametersFromMap(map[string]float64{"threadsNum": 0})
	require.NoError(t, err)
	assert.Equal(t, 0, hyper.ThreadsNum)
}

func TestParseVariant(t *testing.T) {
	variant, err := ParseVariant("MT")
	require.NoError(t, err)
	assert.Equal(t, ModelTree, variant)
	variant, err = ParseVariant("rt")
	require.NoError(t, err)
	assert.Equal(t, RegressionTree, variant)
	_, err = ParseVariant("forest")
	assert.Error(t, err)
}
