package classifier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/IndianOnRun/PredictionIO/engine"
	"github.com/IndianOnRun/PredictionIO/event"
	"github.com/IndianOnRun/PredictionIO/ml"
)

// EngineName is the registry key of the classification engine.
const EngineName = "classification"

// Params configures every stage of the classification engine.
type Params struct {
	DataSource DataSourceParams  `yaml:"datasource"`
	Algorithms []AlgorithmParams `yaml:"algorithms"`
}

// EngineOptions bundles the params with the runtime dependencies a factory
// cannot read from configuration.
type EngineOptions struct {
	Store  *event.Store
	Logger *zap.Logger
	Params Params
	// Provider, when set, replaces the trainable algorithms with a single
	// serve-only algorithm reading from the hot-swappable model provider.
	Provider *ml.Provider
}

func init() {
	engine.Register(EngineName, newEngine)
}

func newEngine(params interface{}) (*engine.Engine, error) {
	opts, ok := params.(EngineOptions)
	if !ok {
		return nil, fmt.Errorf("classification engine expects EngineOptions, got %T", params)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &engine.Engine{
		DataSource: NewDataSource(opts.Store, opts.Params.DataSource, opts.Logger),
		Preparator: Preparator{},
		Serving:    Serving{},
	}

	if opts.Provider != nil {
		e.Algorithms = []engine.Algorithm{&ProviderAlgorithm{Provider: opts.Provider}}
		return e, nil
	}

	algoParams := opts.Params.Algorithms
	if len(algoParams) == 0 {
		algoParams = []AlgorithmParams{{Model: "naive-bayes", Lambda: 1.0}}
	}
	for _, p := range algoParams {
		e.Algorithms = append(e.Algorithms, NewAlgorithm(p))
	}
	return e, nil
}
