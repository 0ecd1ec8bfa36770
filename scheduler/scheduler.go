// Package scheduler reruns the training workflow on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/IndianOnRun/PredictionIO/monitoring"
)

// Trainer runs one full training pass.
type Trainer func(ctx context.Context) error

// Service owns the cron runner.
type Service struct {
	cron   *cron.Cron
	logger *zap.Logger
	hub    *monitoring.Hub
	train  Trainer
}

func New(logger *zap.Logger, hub *monitoring.Hub, train Trainer) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		hub:    hub,
		train:  train,
	}
}

// Schedule registers the retraining job. spec is a standard 5-field cron
// expression; it is validated before registration.
func (s *Service) Schedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid retrain schedule %q: %w", spec, err)
	}
	_, err := s.cron.AddFunc(spec, func() { s.RunNow(context.Background()) })
	return err
}

// RunNow executes one training pass immediately and reports the outcome on
// the monitoring feed.
func (s *Service) RunNow(ctx context.Context) error {
	runID := uuid.New().String()
	start := time.Now()
	s.logger.Info("scheduled training started", zap.String("run_id", runID))
	s.hub.Broadcast(monitoring.TrainingStarted, map[string]string{"run_id": runID})

	if err := s.train(ctx); err != nil {
		s.logger.Error("scheduled training failed", zap.String("run_id", runID), zap.Error(err))
		s.hub.Broadcast(monitoring.TrainingDone, map[string]interface{}{
			"run_id": runID, "ok": false, "error": err.Error(),
		})
		return err
	}

	s.logger.Info("scheduled training finished",
		zap.String("run_id", runID), zap.Duration("took", time.Since(start)))
	s.hub.Broadcast(monitoring.TrainingDone, map[string]interface{}{
		"run_id": runID, "ok": true, "took_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (s *Service) Start() {
	s.cron.Start()
	s.logger.Info("retrain scheduler started")
}

func (s *Service) Stop() {
	s.cron.Stop()
	s.logger.Info("retrain scheduler stopped")
}
