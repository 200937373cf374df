package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tarstars/model_trees/golang/model_tree/mtl"
)

func decodeConfig(srcConfig string, out interface{}) error {
	v := viper.New()
	v.SetConfigFile(srcConfig)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "can't read config %s", srcConfig)
	}
	return errors.Wrapf(v.Unmarshal(out), "can't decode config %s", srcConfig)
}

type TestConfig struct {
	Description          string `mapstructure:"description"`
	FileNameTestFeatures string `mapstructure:"filename_test_features"`
	FileNameTestTarget   string `mapstructure:"filename_test_target"`
}

type TrainConfig struct {
	FileNameTrainFeatures string       `mapstructure:"filename_train_features"`
	FileNameTrainTarget   string       `mapstructure:"filename_train_target"`
	FeatureNames          []string     `mapstructure:"feature_names"`
	Tests                 []TestConfig `mapstructure:"tests"`
	FileNameModel         string       `mapstructure:"filename_model"`
	Variant               string       `mapstructure:"variant"`
	MaxDepth              int          `mapstructure:"max_depth"`
	Threshold             float64      `mapstructure:"threshold"`
	ThreadsNum            int          `mapstructure:"threads_num"`
	RegLambda             float64      `mapstructure:"reg_lambda"`
}

//hyperparameters converts the config into the hyperparameter map understood by the trees.
func (c TrainConfig) hyperparameters() (mtl.Hyperparameters, error) {
	options := map[string]float64{
		"threadsNum": float64(c.ThreadsNum),
		"regLambda":  c.RegLambda,
	}
	if c.MaxDepth != 0 {
		options["maxDepth"] = float64(c.MaxDepth)
	}
	if c.Threshold != 0 {
		options["threshold"] = c.Threshold
	}
	return mtl.HyperparametersFromMap(options)
}

type PredictConfig struct {
	FileNameFeatures   string `mapstructure:"filename_features"`
	FileNameModel      string `mapstructure:"filename_model"`
	FileNamePrediction string `mapstructure:"filename_prediction"`
}

type GraphConfig struct {
	FileNameModel  string `mapstructure:"filename_model"`
	FigureType     string `mapstructure:"figure_type"`
	FileNameFigure string `mapstructure:"filename_figure"`
}
