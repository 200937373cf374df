// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"io"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/model_trees/golang/model_tree/mtl"
)

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	trees             = make(map[uint64]*mtl.Tree)

	lastErrorMu sync.Mutex
	lastError   string

	logSilenceOnce sync.Once
)

func setLastError(err error) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getLastError() string {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastError
}

func storeTree(t *mtl.Tree) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	trees[handle] = t
	nextHandle++
	return handle
}

func fetchTree(handle uint64) (*mtl.Tree, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	tree, ok := trees[handle]
	if !ok {
		return nil, errors.Errorf("invalid tree handle %d", handle)
	}
	return tree, nil
}

//export FreeModel
func FreeModel(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(trees, uint64(handle))
}

func sliceFromPtr(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length), nil
}

//buildDense copies a row-major C buffer, the caller may release it right after the call.
func buildDense(ptr *C.double, rows, cols C.int) (*mat.Dense, error) {
	r, c := int(rows), int(cols)
	if r <= 0 || c <= 0 {
		return nil, errors.Errorf("invalid matrix dimensions %dx%d", r, c)
	}
	src, err := sliceFromPtr(ptr, r*c)
	if err != nil {
		return nil, err
	}
	data := make([]float64, len(src))
	copy(data, src)
	return mat.NewDense(r, c, data), nil
}

//export TrainModel
func TrainModel(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	targetPtr *C.double,
	variant C.int,
	maxDepth C.int,
	threshold C.double,
	threadsNum C.int,
	regLambda C.double,
) C.ulonglong {
	setLastError(nil)
	logSilenceOnce.Do(func() {
		logrus.SetOutput(io.Discard)
	})

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 0
	}
	target, err := buildDense(targetPtr, rows, 1)
	if err != nil {
		setLastError(errors.Wrap(err, "target"))
		return 0
	}

	hyper, err := mtl.HyperparametersFromMap(map[string]float64{
		"maxDepth":   float64(maxDepth),
		"threshold":  float64(threshold),
		"threadsNum": float64(threadsNum),
		"regLambda":  float64(regLambda),
	})
	if err != nil {
		setLastError(err)
		return 0
	}

	var kind mtl.Variant
	switch variant {
	case 0:
		kind = mtl.RegressionTree
	case 1:
		kind = mtl.ModelTree
	default:
		setLastError(errors.Errorf("unsupported tree variant %d", int(variant)))
		return 0
	}

	tree := mtl.NewTree(kind, hyper)
	if err := tree.Train(features, target.RawMatrix().Data); err != nil {
		setLastError(err)
		return 0
	}
	return C.ulonglong(storeTree(tree))
}

//export Predict
func Predict(
	handle C.ulonglong,
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	outputPtr *C.double,
) C.int {
	setLastError(nil)
	tree, err := fetchTree(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if int(cols) != tree.NumFeatures {
		setLastError(errors.Errorf("the model expects %d features, got %d", tree.NumFeatures, int(cols)))
		return 2
	}

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 3
	}

	outSlice, err := sliceFromPtr(outputPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 4
	}
	copy(outSlice, tree.PredictMatrix(features).RawVector().Data)
	return 0
}

//export NumLeaves
func NumLeaves(handle C.ulonglong) C.int {
	setLastError(nil)
	tree, err := fetchTree(uint64(handle))
	if err != nil {
		setLastError(err)
		return -1
	}
	return C.int(tree.NumLeaves())
}

//export SaveModel
func SaveModel(handle C.ulonglong, path *C.char) C.int {
	setLastError(nil)
	tree, err := fetchTree(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if err := tree.Save(C.GoString(path)); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export LoadModel
func LoadModel(path *C.char) C.ulonglong {
	setLastError(nil)
	tree, err := mtl.LoadModel(C.GoString(path))
	if err != nil {
		setLastError(err)
		return 0
	}
	return C.ulonglong(storeTree(tree))
}

//export RenderTree
func RenderTree(handle C.ulonglong, path, figureType *C.char) C.int {
	setLastError(nil)
	tree, err := fetchTree(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	goFigureType := C.GoString(figureType)
	if goFigureType == "" {
		goFigureType = "svg"
	}
	if err := tree.RenderGraph(C.GoString(path), goFigureType); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export DescribeModel
func DescribeModel(handle C.ulonglong) *C.char {
	setLastError(nil)
	tree, err := fetchTree(uint64(handle))
	if err != nil {
		setLastError(err)
		return nil
	}
	return C.CString(tree.String())
}

//export GetLastError
func GetLastError() *C.char {
	errStr := getLastError()
	if errStr == "" {
		return nil
	}
	return C.CString(errStr)
}

//export FreeCString
func FreeCString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
