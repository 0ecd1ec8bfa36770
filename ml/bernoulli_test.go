package ml

import (
	"path/filepath"
	"testing"
)

// Two classes over binary features: class 0 fires the first two, class 1
// the last two.
func binarySet() (features [][]float64, labels []float64) {
	features = [][]float64{
		{1, 1, 0, 0},
		{1, 0, 0, 0},
		{1, 1, 0, 1},
		{0, 0, 1, 1},
		{0, 1, 1, 1},
		{0, 0, 0, 1},
	}
	labels = []float64{0, 0, 0, 1, 1, 1}
	return
}

func TestBernoulliNBTrainPredict(t *testing.T) {
	features, labels := binarySet()
	nb := NewBernoulliNB()
	if err := nb.Train(features, labels); err != nil {
		t.Fatalf("Train: %v", err)
	}

	got, err := nb.Predict([]float64{1, 1, 0, 0})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected class 0, got %v", got)
	}

	got, err = nb.Predict([]float64{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected class 1, got %v", got)
	}
}

func TestBernoulliNBValidation(t *testing.T) {
	nb := NewBernoulliNB()
	if err := nb.Train(nil, nil); err == nil {
		t.Fatal("empty training set must error")
	}
	if err := nb.Train([][]float64{{1, 0}}, []float64{0, 1}); err == nil {
		t.Fatal("size mismatch must error")
	}
	if _, err := nb.Predict([]float64{1, 0}); err == nil {
		t.Fatal("untrained model must error")
	}
	if err := nb.Save(filepath.Join(t.TempDir(), "m.json")); err == nil {
		t.Fatal("saving an untrained model must error")
	}
}

func TestBernoulliNBQueryWidthMismatch(t *testing.T) {
	features, labels := binarySet()
	nb := NewBernoulliNB()
	if err := nb.Train(features, labels); err != nil {
		t.Fatal(err)
	}
	if _, err := nb.Predict([]float64{1, 0}); err == nil {
		t.Fatal("query width mismatch must error")
	}
}

func TestBernoulliNBSaveLoadRefits(t *testing.T) {
	features, labels := binarySet()
	nb := NewBernoulliNB()
	if err := nb.Train(features, labels); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := nb.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadModel("bernoulli-nb", path, 0)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	for _, q := range [][]float64{{1, 1, 0, 0}, {0, 0, 1, 1}} {
		want, err := nb.Predict(q)
		if err != nil {
			t.Fatal(err)
		}
		got, err := loaded.Predict(q)
		if err != nil {
			t.Fatalf("Predict after load: %v", err)
		}
		if got != want {
			t.Fatalf("loaded model predicts %v for %v, original %v", got, q, want)
		}
	}
}
