package mtl

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

//DMatrix holds one partition of a data set: a features matrix, the aligned target
//and the ids of the original records.
type DMatrix struct {
	Features    *mat.Dense
	Target      []float64
	RecordIds   []int
	Description *string
}

//NewDMatrix wraps features and target into a DMatrix with record ids 0..h-1.
func NewDMatrix(features *mat.Dense, target []float64) DMatrix {
	h, _ := features.Dims()
	recordIds := make([]int, h)
	for p := range recordIds {
		recordIds[p] = p
	}
	return DMatrix{Features: features, Target: target, RecordIds: recordIds}
}

//SetDescription sets a description for a DMatrix object
func (dm *DMatrix) SetDescription(description string) {
	dm.Description = &description
}

//Height returns the number of rows of a matrix
func Height(m mat.Matrix) int {
	h, _ := m.Dims()
	return h
}

//Width returns the number of columns of a matrix
func Width(m mat.Matrix) int {
	_, w := m.Dims()
	return w
}

//Column copies the q-th feature column.
func (dm DMatrix) Column(q int) []float64 {
	return mat.Col(nil, q, dm.Features)
}

//validatedDimensions checks the consistency of dimensions and returns the height
//(the number of objects) and the width (the number of features) of the data set.
func (dm DMatrix) validatedDimensions() (h, w int, err error) {
	if dm.Features == nil {
		return 0, 0, errors.New("nil features matrix")
	}
	h, w = dm.Features.Dims()
	if len(dm.Target) != h {
		return 0, 0, errors.Errorf("the target length %d is not equal to the features height %d", len(dm.Target), h)
	}
	if dm.RecordIds != nil && len(dm.RecordIds) != h {
		return 0, 0, errors.Errorf("the record ids length %d is not equal to the features height %d", len(dm.RecordIds), h)
	}
	return h, w, nil
}

//PartitionRows splits row indices of a column by a threshold. Rows with a value <= threshold
//go left, the rest go right. Either side may be empty.
func PartitionRows(column []float64, threshold float64) (leftRows, rightRows []int) {
	leftRows, rightRows = make([]int, 0, len(column)), make([]int, 0, len(column))
	for p, value := range column {
		if value <= threshold {
			leftRows = append(leftRows, p)
		} else {
			rightRows = append(rightRows, p)
		}
	}
	return
}

//Rows gathers the given rows into a new DMatrix. An empty selection gives a DMatrix
//with a nil features matrix.
func (dm DMatrix) Rows(rows []int) DMatrix {
	_, w := dm.Features.Dims()
	result := DMatrix{Target: make([]float64, len(rows)), RecordIds: make([]int, len(rows))}
	if len(rows) == 0 {
		return result
	}
	result.Features = mat.NewDense(len(rows), w, nil)
	for ind, p := range rows {
		result.Features.SetRow(ind, dm.Features.RawRowView(p))
		result.Target[ind] = dm.Target[p]
		if dm.RecordIds != nil {
			result.RecordIds[ind] = dm.RecordIds[p]
		} else {
			result.RecordIds[ind] = p
		}
	}
	return result
}

//Split splits data of receiver by a feature and a threshold.
func (dm DMatrix) Split(featureIndex int, threshold float64) (left, right DMatrix) {
	leftRows, rightRows := PartitionRows(dm.Column(featureIndex), threshold)
	return dm.Rows(leftRows), dm.Rows(rightRows)
}

//ReadDMatrix reads features and target npy files and unites them into one DMatrix object
func ReadDMatrix(fileNameFeatures, fileNameTarget string) (dm DMatrix, err error) {
	log.WithField("file", fileNameFeatures).Info("load features")
	features, err := ReadNpy(fileNameFeatures)
	if err != nil {
		return dm, err
	}
	log.WithField("file", fileNameTarget).Info("load target")
	target, err := ReadNpy(fileNameTarget)
	if err != nil {
		return dm, err
	}

	targetH, targetW := target.Dims()
	if targetW != 1 && targetH != 1 {
		return dm, errors.Errorf("target in %s should be a vector, got %dx%d", fileNameTarget, targetH, targetW)
	}
	dm = NewDMatrix(features, mat.DenseCopyOf(target).RawMatrix().Data)
	_, _, err = dm.validatedDimensions()
	return dm, err
}

//ReadNpy reads the content of npy file
func ReadNpy(fileName string) (*mat.Dense, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", fileName)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read npy header of %s", fileName)
	}

	denseMat := &mat.Dense{}
	if err := r.Read(denseMat); err != nil {
		return nil, errors.Wrapf(err, "can't read npy data of %s", fileName)
	}
	return denseMat, nil
}

//WriteNpy writes a matrix as a npy file
func WriteNpy(fileName string, values *mat.Dense) (err error) {
	dst, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "can't create %s", fileName)
	}
	defer func() {
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
	}()
	return errors.Wrapf(npyio.Write(dst, values), "can't write %s", fileName)
}
