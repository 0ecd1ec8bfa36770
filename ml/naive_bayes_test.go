package ml

import (
	"path/filepath"
	"testing"
)

// Two well-separated classes: class 0 concentrates mass on the first two
// features, class 1 on the last two.
func separableSet() (features [][]float64, labels []float64) {
	features = [][]float64{
		{5, 4, 0, 1},
		{6, 3, 1, 0},
		{4, 5, 0, 0},
		{0, 1, 5, 6},
		{1, 0, 4, 5},
		{0, 0, 6, 4},
	}
	labels = []float64{0, 0, 0, 1, 1, 1}
	return
}

func TestNaiveBayesTrainPredict(t *testing.T) {
	features, labels := separableSet()
	nb := NewNaiveBayes(1.0)
	if err := nb.Train(features, labels); err != nil {
		t.Fatalf("Train: %v", err)
	}

	got, err := nb.Predict([]float64{7, 5, 0, 1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected class 0, got %v", got)
	}

	got, err = nb.Predict([]float64{0, 1, 8, 7})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected class 1, got %v", got)
	}
}

func TestNaiveBayesValidation(t *testing.T) {
	nb := NewNaiveBayes(1.0)
	if err := nb.Train(nil, nil); err == nil {
		t.Fatal("empty training set must error")
	}
	if err := nb.Train([][]float64{{1, 2}}, []float64{0, 1}); err == nil {
		t.Fatal("size mismatch must error")
	}
	if err := nb.Train([][]float64{{1, -2}}, []float64{0}); err == nil {
		t.Fatal("negative features must error")
	}
	if _, err := nb.Predict([]float64{1}); err == nil {
		t.Fatal("untrained model must error")
	}
}

func TestNaiveBayesQueryWidthMismatch(t *testing.T) {
	features, labels := separableSet()
	nb := NewNaiveBayes(1.0)
	if err := nb.Train(features, labels); err != nil {
		t.Fatal(err)
	}
	if _, err := nb.Predict([]float64{1, 2}); err == nil {
		t.Fatal("query width mismatch must error")
	}
}

func TestNaiveBayesSaveLoad(t *testing.T) {
	features, labels := separableSet()
	nb := NewNaiveBayes(0.5)
	if err := nb.Train(features, labels); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := nb.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadModel("naive-bayes", path, 0.5)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	want, _ := nb.Predict([]float64{5, 5, 1, 0})
	got, err := loaded.Predict([]float64{5, 5, 1, 0})
	if err != nil {
		t.Fatalf("Predict after load: %v", err)
	}
	if got != want {
		t.Fatalf("loaded model predicts %v, original %v", got, want)
	}
}

func TestNewUnknownModelType(t *testing.T) {
	if _, err := New("perceptron", 1.0); err == nil {
		t.Fatal("unknown model type must error")
	}
}
