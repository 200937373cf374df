package mtl

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

//Hyperparameters of one tree.
type Hyperparameters struct {
	MaxDepth   int     `json:"max_depth"`
	Threshold  float64 `json:"threshold"` // informational, printed with the tree
	ThreadsNum int     `json:"threads_num"`
	RegLambda  float64 `json:"reg_lambda"`
}

//DefaultHyperparameters returns the defaults used when a key is absent from a hyperparameter map.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{MaxDepth: 5, Threshold: 0.1, ThreadsNum: 1}
}

//ensembleKeys belong to forest and boosting wrappers and have no meaning for a single tree.
var ensembleKeys = map[string]bool{
	"bRatio":     true,
	"fbRatio":    true,
	"nTrees":     true,
	"iterations": true,
	"cutoff":     true,
}

//HyperparametersFromMap reads hyperparameters from a map of options.
func HyperparametersFromMap(options map[string]float64) (Hyperparameters, error) {
	hyper := DefaultHyperparameters()

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := options[key]
		switch key {
		case "maxDepth":
			depth, err := integerOption(key, value)
			if err != nil {
				return hyper, err
			}
			hyper.MaxDepth = depth
		case "threshold":
			hyper.Threshold = value
		case "threadsNum":
			threads, err := integerOption(key, value)
			if err != nil {
				return hyper, err
			}
			hyper.ThreadsNum = threads
		case "regLambda":
			hyper.RegLambda = value
		default:
			if !ensembleKeys[key] {
				return hyper, errors.Errorf("unknown hyperparameter %q", key)
			}
			log.WithField("key", key).Debug("ignore ensemble hyperparameter")
		}
	}
	return hyper, hyper.Validate()
}

//integerOption converts an option that must hold an integer within the int32 range.
func integerOption(key string, value float64) (int, error) {
	if value != math.Trunc(value) || math.IsInf(value, 0) {
		return 0, errors.Errorf("%s should be an integer, got %g", key, value)
	}
	if value < math.MinInt32 || value > math.MaxInt32 {
		return 0, errors.Errorf("%s is out of range, got %g", key, value)
	}
	return int(value), nil
}

//Validate checks ranges of hyperparameters.
func (h Hyperparameters) Validate() error {
	if h.MaxDepth < 1 {
		return errors.Errorf("maxDepth should be at least 1, got %d", h.MaxDepth)
	}
	if h.ThreadsNum < 0 {
		return errors.Errorf("threadsNum should not be negative, got %d", h.ThreadsNum)
	}
	if h.RegLambda < 0 {
		return errors.Errorf("regLambda should not be negative, got %g", h.RegLambda)
	}
	return nil
}
