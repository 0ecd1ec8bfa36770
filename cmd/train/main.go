// pio-train runs the training workflow once: read events, prepare, evaluate
// on a holdout, train the final model and persist it.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/IndianOnRun/PredictionIO/classifier"
	"github.com/IndianOnRun/PredictionIO/config"
	"github.com/IndianOnRun/PredictionIO/engine"
	"github.com/IndianOnRun/PredictionIO/event"
	"github.com/IndianOnRun/PredictionIO/logging"
)

func main() {
	configPath := flag.String("config", "engine.yaml", "engine configuration file")
	skipEval := flag.Bool("skip-eval", false, "skip the holdout evaluation")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	store, err := event.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open event store", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	params := cfg.Engine.Params

	ds := classifier.NewDataSource(store, params.DataSource, logger)
	td, err := ds.ReadTraining(ctx)
	if err != nil {
		logger.Fatal("read training data", zap.Error(err))
	}
	pd, err := classifier.Preparator{}.Prepare(ctx, td)
	if err != nil {
		logger.Fatal("prepare training data", zap.Error(err))
	}
	logger.Info("training data ready", zap.Int("points", len(pd.Points)))

	algoParams := firstAlgorithm(cfg)
	if !*skipEval {
		report, err := classifier.Evaluator{TestRatio: cfg.Eval.TestRatio, Seed: cfg.Eval.Seed}.
			Evaluate(ctx, pd, func() engine.Algorithm { return classifier.NewAlgorithm(algoParams) })
		if err != nil {
			logger.Fatal("evaluate", zap.Error(err))
		}
		logger.Info("holdout evaluation",
			zap.Float64("accuracy", report.Accuracy),
			zap.Int("train_size", report.TrainSize),
			zap.Int("test_size", report.TestSize),
			zap.Any("per_class", report.PerClass),
		)
	}

	algo := classifier.NewAlgorithm(algoParams)
	if err := algo.Train(ctx, pd); err != nil {
		logger.Fatal("train", zap.Error(err))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Model.Path), 0o755); err != nil {
		logger.Fatal("create model directory", zap.Error(err))
	}
	if err := algo.Model().Save(cfg.Model.Path); err != nil {
		logger.Fatal("save model", zap.Error(err))
	}
	logger.Info("model saved",
		zap.String("path", cfg.Model.Path),
		zap.String("model", modelName(algoParams)))
}

func firstAlgorithm(cfg *config.Config) classifier.AlgorithmParams {
	if len(cfg.Engine.Params.Algorithms) > 0 {
		return cfg.Engine.Params.Algorithms[0]
	}
	return classifier.AlgorithmParams{Model: "naive-bayes", Lambda: 1.0}
}

func modelName(p classifier.AlgorithmParams) string {
	if p.Model == "" {
		return "naive-bayes"
	}
	return p.Model
}
