package mtl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//stepData is a one column data set with the largest jump of y between x=6 and x=7.
func stepData() (*mat.Dense, []float64) {
	x := mat.NewDense(10, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	y := []float64{5.56, 5.70, 5.91, 6.40, 6.80, 7.05, 8.90, 8.70, 9.00, 9.05}
	return x, y
}

func TestPartitionRows(t *testing.T) {
	left, right := PartitionRows([]float64{3, 1, 2, 5, 2}, 2)
	assert.Equal(t, []int{1, 2, 4}, left)
	assert.Equal(t, []int{0, 3}, right)

	left, right = PartitionRows([]float64{3, 4}, 10)
	assert.Equal(t, []int{0, 1}, left)
	assert.Empty(t, right)
}

func TestDMatrixSplit(t *testing.T) {
	dm := DMatrix{
		Features:  mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40}),
		Target:    []float64{0.1, 0.2, 0.3, 0.4},
		RecordIds: []int{7, 8, 9, 10},
	}

	left, right := dm.Split(1, 25)
	assert.Equal(t, []float64{0.1, 0.2}, left.Target)
	assert.Equal(t, []int{7, 8}, left.RecordIds)
	assert.Equal(t, []float64{3, 30}, right.Features.RawRowView(0))
	assert.Equal(t, []int{9, 10}, right.RecordIds)

	left, right = dm.Split(0, 100)
	assert.Equal(t, 4, Height(left.Features))
	assert.Nil(t, right.Features)
	assert.Empty(t, right.Target)
}

func TestValidatedDimensions(t *testing.T) {
	dm := NewDMatrix(mat.NewDense(3, 2, nil), []float64{1, 2, 3})
	h, w, err := dm.validatedDimensions()
	require.NoError(t, err)
	assert.Equal(t, 3, h)
	assert.Equal(t, 2, w)

	dm.Target = dm.Target[:2]
	_, _, err = dm.validatedDimensions()
	assert.Error(t, err)
}

func TestNpyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	x, y := stepData()
	featuresFile := filepath.Join(dir, "features.npy")
	targetFile := filepath.Join(dir, "target.npy")

	require.NoError(t, WriteNpy(featuresFile, x))
	require.NoError(t, WriteNpy(targetFile, mat.NewDense(len(y), 1, y)))

	dm, err := ReadDMatrix(featuresFile, targetFile)
	require.NoError(t, err)
	assert.True(t, mat.Equal(x, dm.Features))
	assert.Equal(t, y, dm.Target)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, dm.RecordIds)
}

func TestReadNpyMissingFile(t *testing.T) {
	_, err := ReadNpy(filepath.Join(t.TempDir(), "absent.npy"))
	assert.Error(t, err)
}
