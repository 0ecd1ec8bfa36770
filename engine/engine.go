// Package engine defines the four-stage training and serving workflow:
// a data source reads training data, a preparator transforms it, one or
// more algorithms train models and answer queries, and a serving stage
// reconciles their answers into a single result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DataSource reads training data from storage.
type DataSource interface {
	ReadTraining(ctx context.Context) (TrainingData, error)
}

// Preparator transforms training data before it reaches the algorithms.
type Preparator interface {
	Prepare(ctx context.Context, td TrainingData) (PreparedData, error)
}

// Algorithm trains a model from prepared data and predicts labels for queries.
type Algorithm interface {
	Train(ctx context.Context, pd PreparedData) error
	Predict(ctx context.Context, q Query) (PredictedResult, error)
}

// Serving reconciles the predictions of all algorithms into one response.
type Serving interface {
	Serve(q Query, results []PredictedResult) (PredictedResult, error)
}

// Engine wires the stages together.
type Engine struct {
	DataSource DataSource
	Preparator Preparator
	Algorithms []Algorithm
	Serving    Serving
}

// Train runs the read -> prepare -> train workflow once.
func (e *Engine) Train(ctx context.Context) error {
	if e.DataSource == nil || e.Preparator == nil || e.Serving == nil || len(e.Algorithms) == 0 {
		return errors.New("engine is missing a stage")
	}

	td, err := e.DataSource.ReadTraining(ctx)
	if err != nil {
		return fmt.Errorf("read training data: %w", err)
	}
	pd, err := e.Preparator.Prepare(ctx, td)
	if err != nil {
		return fmt.Errorf("prepare training data: %w", err)
	}
	for i, algo := range e.Algorithms {
		if err := algo.Train(ctx, pd); err != nil {
			return fmt.Errorf("train algorithm %d: %w", i, err)
		}
	}
	return nil
}

// Predict asks every algorithm and hands the collected results to serving.
func (e *Engine) Predict(ctx context.Context, q Query) (PredictedResult, error) {
	if len(e.Algorithms) == 0 || e.Serving == nil {
		return PredictedResult{}, errors.New("engine is not deployable")
	}
	results := make([]PredictedResult, 0, len(e.Algorithms))
	for i, algo := range e.Algorithms {
		r, err := algo.Predict(ctx, q)
		if err != nil {
			return PredictedResult{}, fmt.Errorf("algorithm %d: %w", i, err)
		}
		results = append(results, r)
	}
	return e.Serving.Serve(q, results)
}

// Factory builds a fully wired engine from stage parameters. Each engine
// defines its own params type; factories type-assert what they are given.
type Factory func(params interface{}) (*Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine factory available under the given name.
// Registering a duplicate name panics, matching the database/sql convention.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		panic("engine: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("engine: Register called twice for " + name)
	}
	registry[name] = f
}

// New builds the named engine.
func New(name string, params interface{}) (*Engine, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (registered: %v)", name, Names())
	}
	return f(params)
}

// Names lists the registered engine names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
