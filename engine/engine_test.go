package engine

import (
	"context"
	"errors"
	"testing"
)

type stubSource struct {
	td  TrainingData
	err error
}

func (s *stubSource) ReadTraining(ctx context.Context) (TrainingData, error) { return s.td, s.err }

type passThrough struct{}

func (passThrough) Prepare(ctx context.Context, td TrainingData) (PreparedData, error) {
	return PreparedData{Points: td.Points}, nil
}

type stubAlgo struct {
	trained bool
	label   float64
	err     error
}

func (a *stubAlgo) Train(ctx context.Context, pd PreparedData) error {
	a.trained = true
	return a.err
}

func (a *stubAlgo) Predict(ctx context.Context, q Query) (PredictedResult, error) {
	return PredictedResult{Label: a.label}, a.err
}

type firstServing struct{}

func (firstServing) Serve(q Query, results []PredictedResult) (PredictedResult, error) {
	if len(results) == 0 {
		return PredictedResult{}, errors.New("no results")
	}
	return results[0], nil
}

func testEngine(algos ...Algorithm) *Engine {
	return &Engine{
		DataSource: &stubSource{td: TrainingData{Points: []LabeledPoint{{Label: 1, Features: []float64{1, 2}}}}},
		Preparator: passThrough{},
		Algorithms: algos,
		Serving:    firstServing{},
	}
}

func TestEngineTrain(t *testing.T) {
	a := &stubAlgo{}
	b := &stubAlgo{}
	e := testEngine(a, b)
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !a.trained || !b.trained {
		t.Fatal("all algorithms must be trained")
	}
}

func TestEngineTrainPropagatesDataSourceError(t *testing.T) {
	e := testEngine(&stubAlgo{})
	e.DataSource = &stubSource{err: errors.New("store offline")}
	if err := e.Train(context.Background()); err == nil {
		t.Fatal("expected error from data source")
	}
}

func TestEnginePredictServesFirstResult(t *testing.T) {
	e := testEngine(&stubAlgo{label: 2}, &stubAlgo{label: 7})
	got, err := e.Predict(context.Background(), Query{Features: []float64{1, 0, 0, 0}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.Label != 2 {
		t.Fatalf("serving must return the first result, got %v", got.Label)
	}
}

func TestEnginePredictAlgorithmError(t *testing.T) {
	e := testEngine(&stubAlgo{err: errors.New("model not trained")})
	if _, err := e.Predict(context.Background(), Query{}); err == nil {
		t.Fatal("expected algorithm error")
	}
}

func TestRegistry(t *testing.T) {
	Register("test-engine", func(params interface{}) (*Engine, error) {
		return testEngine(&stubAlgo{label: 3}), nil
	})

	e, err := New("test-engine", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := e.Predict(context.Background(), Query{})
	if err != nil || got.Label != 3 {
		t.Fatalf("unexpected result %v, %v", got, err)
	}

	if _, err := New("nope", nil); err == nil {
		t.Fatal("unknown engine must error")
	}
}
