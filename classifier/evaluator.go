package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/IndianOnRun/PredictionIO/engine"
)

// Report summarizes a holdout evaluation.
type Report struct {
	TrainSize int                     `json:"train_size"`
	TestSize  int                     `json:"test_size"`
	Accuracy  float64                 `json:"accuracy"`
	PerClass  map[string]ClassMetrics `json:"per_class"`
}

// ClassMetrics carries precision and recall for one class label.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Support   int     `json:"support"`
}

// Evaluator measures an algorithm on a shuffled holdout split.
type Evaluator struct {
	TestRatio float64 // fraction held out; defaults to 0.2
	Seed      int64   // shuffle seed; fixed for reproducible reports
}

// Evaluate trains a fresh algorithm on the train split and scores it on the
// holdout. newAlgorithm must return an untrained algorithm per call.
func (ev Evaluator) Evaluate(ctx context.Context, pd engine.PreparedData, newAlgorithm func() engine.Algorithm) (Report, error) {
	ratio := ev.TestRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.2
	}
	if len(pd.Points) < 2 {
		return Report{}, errors.New("not enough points to evaluate")
	}

	rnd := rand.New(rand.NewSource(ev.Seed))
	indices := rnd.Perm(len(pd.Points))
	split := int(math.Round(float64(len(pd.Points)) * (1 - ratio)))
	if split == len(pd.Points) {
		split--
	}
	if split == 0 {
		split = 1
	}

	var train, test []engine.LabeledPoint
	for i, idx := range indices {
		if i < split {
			train = append(train, pd.Points[idx])
		} else {
			test = append(test, pd.Points[idx])
		}
	}

	algo := newAlgorithm()
	if err := algo.Train(ctx, engine.PreparedData{Points: train}); err != nil {
		return Report{}, fmt.Errorf("train on split: %w", err)
	}

	correct := 0
	truePos := map[float64]int{}
	predicted := map[float64]int{}
	actual := map[float64]int{}
	for _, p := range test {
		got, err := algo.Predict(ctx, engine.Query{Features: p.Features})
		if err != nil {
			return Report{}, fmt.Errorf("predict on holdout: %w", err)
		}
		predicted[got.Label]++
		actual[p.Label]++
		if got.Label == p.Label {
			correct++
			truePos[p.Label]++
		}
	}

	report := Report{
		TrainSize: len(train),
		TestSize:  len(test),
		Accuracy:  float64(correct) / float64(len(test)),
		PerClass:  map[string]ClassMetrics{},
	}
	for label, support := range actual {
		m := ClassMetrics{Support: support}
		if predicted[label] > 0 {
			m.Precision = float64(truePos[label]) / float64(predicted[label])
		}
		if support > 0 {
			m.Recall = float64(truePos[label]) / float64(support)
		}
		report.PerClass[fmt.Sprintf("%g", label)] = m
	}
	return report, nil
}
