package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/IndianOnRun/PredictionIO/engine"
	"github.com/IndianOnRun/PredictionIO/ml"
)

// AlgorithmParams configures one model backend.
type AlgorithmParams struct {
	Model  string  `yaml:"model"`  // "naive-bayes" (default) or "bernoulli-nb"
	Lambda float64 `yaml:"lambda"` // additive smoothing constant
}

// Algorithm delegates training and prediction to an ml.Model backend.
type Algorithm struct {
	params AlgorithmParams
	model  ml.Model
}

func NewAlgorithm(params AlgorithmParams) *Algorithm {
	return &Algorithm{params: params}
}

// NewAlgorithmWithModel wraps an already trained (or restored) model; the
// deploy path uses this after loading the model file.
func NewAlgorithmWithModel(params AlgorithmParams, model ml.Model) *Algorithm {
	return &Algorithm{params: params, model: model}
}

func (a *Algorithm) Train(ctx context.Context, pd engine.PreparedData) error {
	if len(pd.Points) == 0 {
		return errors.New("no training points; is the event store populated?")
	}
	features := make([][]float64, len(pd.Points))
	labels := make([]float64, len(pd.Points))
	for i, p := range pd.Points {
		features[i] = p.Features
		labels[i] = p.Label
	}

	model, err := ml.New(a.params.Model, a.params.Lambda)
	if err != nil {
		return err
	}
	if err := model.Train(features, labels); err != nil {
		return fmt.Errorf("train %s: %w", a.params.Model, err)
	}
	a.model = model
	return nil
}

func (a *Algorithm) Predict(ctx context.Context, q engine.Query) (engine.PredictedResult, error) {
	if a.model == nil {
		return engine.PredictedResult{}, errors.New("algorithm has no trained model")
	}
	label, err := a.model.Predict(q.Features)
	if err != nil {
		return engine.PredictedResult{}, err
	}
	return engine.PredictedResult{Label: label}, nil
}

// Model exposes the trained backend so callers can persist it.
func (a *Algorithm) Model() ml.Model {
	return a.model
}

// ProviderAlgorithm predicts through an ml.Provider so the serving daemon
// can hot-swap the model under live traffic.
type ProviderAlgorithm struct {
	Provider *ml.Provider
}

func (a *ProviderAlgorithm) Train(ctx context.Context, pd engine.PreparedData) error {
	return errors.New("provider-backed algorithm is serve-only; train with `pio train`")
}

func (a *ProviderAlgorithm) Predict(ctx context.Context, q engine.Query) (engine.PredictedResult, error) {
	model := a.Provider.Get()
	if model == nil {
		return engine.PredictedResult{}, errors.New("no model deployed")
	}
	label, err := model.Predict(q.Features)
	if err != nil {
		return engine.PredictedResult{}, err
	}
	return engine.PredictedResult{Label: label}, nil
}
