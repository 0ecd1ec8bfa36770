package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
)

// NaiveBayes is a multinomial naive Bayes classifier with additive (Laplace)
// smoothing. Feature values must be non-negative counts or weights.
type NaiveBayes struct {
	Lambda   float64     `json:"lambda"`
	Labels   []float64   `json:"labels"`    // distinct class labels, sorted
	LogPrior []float64   `json:"log_prior"` // per class
	LogTheta [][]float64 `json:"log_theta"` // per class, per feature
	NumFeat  int         `json:"num_features"`
}

// NewNaiveBayes returns an untrained classifier. A non-positive lambda
// defaults to 1.0.
func NewNaiveBayes(lambda float64) *NaiveBayes {
	if lambda <= 0 {
		lambda = 1.0
	}
	return &NaiveBayes{Lambda: lambda}
}

func (nb *NaiveBayes) Train(features [][]float64, labels []float64) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	numFeat := len(features[0])
	if numFeat == 0 {
		return errors.New("zero-width feature vectors")
	}

	classIdx := map[float64]int{}
	var classes []float64
	for _, l := range labels {
		if _, ok := classIdx[l]; !ok {
			classIdx[l] = 0
			classes = append(classes, l)
		}
	}
	sort.Float64s(classes)
	for i, c := range classes {
		classIdx[c] = i
	}

	counts := make([]float64, len(classes))     // documents per class
	featSum := make([][]float64, len(classes))  // feature j total per class
	classTotal := make([]float64, len(classes)) // all-features total per class
	for i := range featSum {
		featSum[i] = make([]float64, numFeat)
	}

	for i, row := range features {
		if len(row) != numFeat {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), numFeat)
		}
		c := classIdx[labels[i]]
		counts[c]++
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("row %d feature %d is negative", i, j)
			}
			featSum[c][j] += v
			classTotal[c] += v
		}
	}

	n := float64(len(labels))
	k := float64(len(classes))
	nb.Labels = classes
	nb.NumFeat = numFeat
	nb.LogPrior = make([]float64, len(classes))
	nb.LogTheta = make([][]float64, len(classes))
	for c := range classes {
		nb.LogPrior[c] = math.Log((counts[c] + nb.Lambda) / (n + nb.Lambda*k))
		nb.LogTheta[c] = make([]float64, numFeat)
		denom := classTotal[c] + nb.Lambda*float64(numFeat)
		for j := 0; j < numFeat; j++ {
			nb.LogTheta[c][j] = math.Log((featSum[c][j] + nb.Lambda) / denom)
		}
	}
	return nil
}

func (nb *NaiveBayes) Predict(features []float64) (float64, error) {
	if len(nb.Labels) == 0 {
		return 0, errors.New("model not trained")
	}
	if len(features) != nb.NumFeat {
		return 0, fmt.Errorf("query has %d features, model expects %d", len(features), nb.NumFeat)
	}
	best := 0
	bestScore := math.Inf(-1)
	for c := range nb.Labels {
		score := nb.LogPrior[c]
		for j, v := range features {
			score += v * nb.LogTheta[c][j]
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return nb.Labels[best], nil
}

func (nb *NaiveBayes) Save(path string) error {
	if len(nb.Labels) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(nb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (nb *NaiveBayes) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded NaiveBayes
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Labels) == 0 {
		return errors.New("model file holds no classes")
	}
	*nb = loaded
	return nil
}
