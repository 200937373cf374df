package main

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/model_trees/golang/model_tree/mtl"
)

var rootCmd = &cobra.Command{
	Use:          "model_tree",
	Short:        "regression and model trees",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log.SetLevel(log.DebugLevel)
		}
		if jsonLog, _ := cmd.Flags().GetBool("json-log"); jsonLog {
			log.SetFormatter(&log.JSONFormatter{})
		}
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "train a tree and save it",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _ := cmd.Flags().GetString("config")
		return train(config)
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "predict with a saved tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _ := cmd.Flags().GetString("config")
		return predict(config)
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "render a saved tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _ := cmd.Flags().GetString("config")
		return graph(config)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe MODEL",
	Short: "print a saved tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bfs, _ := cmd.Flags().GetBool("bfs")
		return describe(args[0], bfs)
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging")
	rootCmd.PersistentFlags().Bool("json-log", false, "log in json")
	trainCmd.Flags().String("config", "train_config.json", "a config file for the training")
	predictCmd.Flags().String("config", "predict_config.json", "a config file for the prediction")
	graphCmd.Flags().String("config", "graph_config.json", "a config file for the rendering")
	describeCmd.Flags().Bool("bfs", false, "print nodes level by level")
	rootCmd.AddCommand(trainCmd, predictCmd, graphCmd, describeCmd)
}

func train(srcConfig string) error {
	var trainConfig TrainConfig
	if err := decodeConfig(srcConfig, &trainConfig); err != nil {
		return err
	}
	hyper, err := trainConfig.hyperparameters()
	if err != nil {
		return err
	}
	if trainConfig.Variant == "" {
		trainConfig.Variant = mtl.RegressionTree.String()
	}
	variant, err := mtl.ParseVariant(trainConfig.Variant)
	if err != nil {
		return err
	}

	dmTrain, err := mtl.ReadDMatrix(trainConfig.FileNameTrainFeatures, trainConfig.FileNameTrainTarget)
	if err != nil {
		return err
	}

	tree := mtl.NewTree(variant, hyper, mtl.WithFeatureNames(trainConfig.FeatureNames...))
	if err := tree.Train(dmTrain.Features, dmTrain.Target); err != nil {
		return err
	}
	logMetrics("train", tree.Metrics())

	for _, testConfig := range trainConfig.Tests {
		dmTest, err := mtl.ReadDMatrix(testConfig.FileNameTestFeatures, testConfig.FileNameTestTarget)
		if err != nil {
			return err
		}
		dmTest.SetDescription(testConfig.Description)
		if err := message(tree, dmTest); err != nil {
			return err
		}
	}

	return tree.Save(trainConfig.FileNameModel)
}

//message reports the quality of fit of the tree on a data set.
func message(tree *mtl.Tree, dm mtl.DMatrix) error {
	description := ""
	if dm.Description != nil {
		description = *dm.Description
	}
	diagnostics := &mtl.QualityOfFit{}
	diagnostics.ResetDegreesOfFreedom(tree.ModelDF, float64(len(dm.Target))-tree.ModelDF)
	metrics, err := diagnostics.Diagnose(dm.Target, tree.PredictMatrix(dm.Features).RawVector().Data)
	if err != nil {
		return errors.Wrapf(err, "can't diagnose %s", description)
	}
	logMetrics(description, &metrics)
	return nil
}

func logMetrics(description string, metrics *mtl.FitMetrics) {
	if metrics == nil {
		return
	}
	log.WithFields(log.Fields{
		"rmse": metrics.RMSE,
		"mae":  metrics.MAE,
		"r2":   metrics.RSquared,
		"aic":  metrics.AIC,
	}).Info("quality of fit for ", description)
}

func predict(srcConfig string) error {
	var predictConfig PredictConfig
	if err := decodeConfig(srcConfig, &predictConfig); err != nil {
		return err
	}

	features, err := mtl.ReadNpy(predictConfig.FileNameFeatures)
	if err != nil {
		return err
	}
	tree, err := mtl.LoadModel(predictConfig.FileNameModel)
	if err != nil {
		return err
	}
	if w := mtl.Width(features); w != tree.NumFeatures {
		return errors.Errorf("the model expects %d features, got %d", tree.NumFeatures, w)
	}

	prediction := tree.PredictMatrix(features)
	return mtl.WriteNpy(predictConfig.FileNamePrediction, mat.NewDense(prediction.Len(), 1, prediction.RawVector().Data))
}

func graph(srcConfig string) error {
	var graphConfig GraphConfig
	if err := decodeConfig(srcConfig, &graphConfig); err != nil {
		return err
	}
	tree, err := mtl.LoadModel(graphConfig.FileNameModel)
	if err != nil {
		return err
	}
	return tree.RenderGraph(graphConfig.FileNameFigure, graphConfig.FigureType)
}

func describe(modelFileName string, bfs bool) error {
	tree, err := mtl.LoadModel(modelFileName)
	if err != nil {
		return err
	}
	if bfs {
		os.Stdout.WriteString(tree.BreadthFirstString())
	} else {
		os.Stdout.WriteString(tree.String())
	}

	leaves := table.NewWriter()
	leaves.SetOutputMirror(os.Stdout)
	leaves.AppendHeader(table.Row{"#", "branch", "depth", "objects", "sse", "params"})
	for ind, leaf := range tree.Root.Leaves() {
		params := ""
		for p, value := range leaf.Params {
			if p > 0 {
				params += " "
			}
			params += strconv.FormatFloat(value, 'g', 6, 64)
		}
		leaves.AppendRow(table.Row{ind, leaf.Branch, leaf.Depth, leaf.NumberOfObjects, leaf.CurrentLoss, params})
	}
	leaves.AppendFooter(table.Row{"", "", "", "", "leaves", tree.NumLeaves()})
	leaves.Render()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("model_tree failed")
	}
}
