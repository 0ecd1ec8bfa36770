// pio-deploy is the serving daemon: it restores the trained model, serves
// queries and events over HTTP, streams monitoring messages, hot-reloads the
// model file and retrains on a cron schedule when configured.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/IndianOnRun/PredictionIO/classifier"
	"github.com/IndianOnRun/PredictionIO/config"
	"github.com/IndianOnRun/PredictionIO/engine"
	"github.com/IndianOnRun/PredictionIO/event"
	qhttp "github.com/IndianOnRun/PredictionIO/http"
	"github.com/IndianOnRun/PredictionIO/logging"
	"github.com/IndianOnRun/PredictionIO/ml"
	"github.com/IndianOnRun/PredictionIO/monitoring"
	"github.com/IndianOnRun/PredictionIO/scheduler"
)

func main() {
	configPath := flag.String("config", "engine.yaml", "engine configuration file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Open the event store
	store, err := event.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open event store", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer store.Close()
	logger.Info("event store ready", zap.String("path", cfg.Database.Path))

	// 3. Restore the trained model
	model, err := ml.LoadModel(cfg.ModelType(), cfg.Model.Path, cfg.Lambda())
	if err != nil {
		logger.Fatal("load model (run `pio train` first)",
			zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	provider := ml.NewProvider(model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := monitoring.NewHub(logger)
	go hub.Run(ctx)

	// 4. Build the serving engine around the hot-swappable provider
	eng, err := engine.New(cfg.Engine.Name, classifier.EngineOptions{
		Store:    store,
		Logger:   logger,
		Params:   cfg.Engine.Params,
		Provider: provider,
	})
	if err != nil {
		logger.Fatal("build engine", zap.String("engine", cfg.Engine.Name), zap.Error(err))
	}

	go func() {
		err := ml.Watch(ctx, logger, cfg.ModelType(), cfg.Model.Path, cfg.Lambda(), provider)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("model watcher stopped", zap.Error(err))
		}
	}()

	// 5. Scheduled retraining, if configured
	if cfg.Retrain.Schedule != "" {
		retrain := scheduler.New(logger, hub, func(ctx context.Context) error {
			return trainOnce(ctx, cfg, store, logger)
		})
		if err := retrain.Schedule(cfg.Retrain.Schedule); err != nil {
			logger.Fatal("schedule retraining", zap.Error(err))
		}
		retrain.Start()
		defer retrain.Stop()
	}

	// 6. Start the query server
	api, err := qhttp.NewAPI(eng, store, hub, logger, cfg.HTTP.CacheSize)
	if err != nil {
		logger.Fatal("build API", zap.Error(err))
	}
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		AllowedOrigins: []string{"*"},
	}, api, logger)

	hub.Broadcast(monitoring.ModelDeployed, map[string]string{
		"model": cfg.ModelType(), "path": cfg.Model.Path,
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	cancel()
	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
}

// trainOnce reruns the full training workflow and rewrites the model file;
// the watcher picks the new model up without a restart.
func trainOnce(ctx context.Context, cfg *config.Config, store *event.Store, logger *zap.Logger) error {
	e, err := engine.New(cfg.Engine.Name, classifier.EngineOptions{
		Store:  store,
		Logger: logger,
		Params: cfg.Engine.Params,
	})
	if err != nil {
		return err
	}
	if err := e.Train(ctx); err != nil {
		return err
	}
	algo, ok := e.Algorithms[0].(*classifier.Algorithm)
	if !ok {
		return errors.New("engine has no persistable algorithm")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Model.Path), 0o755); err != nil {
		return err
	}
	return algo.Model().Save(cfg.Model.Path)
}
