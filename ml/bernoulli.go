package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/filters"
	"github.com/sjwhitworth/golearn/naive"
)

// BernoulliNB delegates to golearn's Bernoulli naive Bayes, which treats
// every feature as present/absent. Fitting is a single counting pass, so the
// saved form is the training matrix itself and Load refits from it.
type BernoulliNB struct {
	classifier *naive.BernoulliNBClassifier
	features   [][]float64
	labels     []float64
	numFeat    int
}

// NewBernoulliNB returns an untrained golearn-backed classifier.
func NewBernoulliNB() *BernoulliNB {
	return &BernoulliNB{}
}

func (b *BernoulliNB) Train(features [][]float64, labels []float64) error {
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

	grid, err := buildInstances(features, labels, numFeat)
	if err != nil {
		return err
	}
	binary, err := binarize(grid)
	if err != nil {
		return err
	}

	classifier := naive.NewBernoulliNBClassifier()
	if err := classifier.Fit(binary); err != nil {
		return fmt.Errorf("fit bernoulli model: %w", err)
	}

	b.classifier = classifier
	b.features = features
	b.labels = labels
	b.numFeat = numFeat
	return nil
}

func (b *BernoulliNB) Predict(features []float64) (float64, error) {
	if b.classifier == nil {
		return 0, errors.New("model not trained")
	}
	if len(features) != b.numFeat {
		return 0, fmt.Errorf("query has %d features, model expects %d", len(features), b.numFeat)
	}

	// The class column is required by the grid layout; its value is ignored.
	grid, err := buildInstances([][]float64{features}, b.labels[:1], b.numFeat)
	if err != nil {
		return 0, err
	}
	binary, err := binarize(grid)
	if err != nil {
		return 0, err
	}

	predictions, err := b.classifier.Predict(binary)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	label, err := strconv.ParseFloat(base.GetClass(predictions, 0), 64)
	if err != nil {
		return 0, fmt.Errorf("parse predicted class: %w", err)
	}
	return label, nil
}

type bernoulliSnapshot struct {
	Features [][]float64 `json:"features"`
	Labels   []float64   `json:"labels"`
}

func (b *BernoulliNB) Save(path string) error {
	if b.classifier == nil {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(bernoulliSnapshot{Features: b.features, Labels: b.labels})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (b *BernoulliNB) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap bernoulliSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return err
	}
	return b.Train(snap.Features, snap.Labels)
}

func buildInstances(features [][]float64, labels []float64, numFeat int) (*base.DenseInstances, error) {
	inst := base.NewDenseInstances()

	specs := make([]base.AttributeSpec, numFeat)
	for j := 0; j < numFeat; j++ {
		specs[j] = inst.AddAttribute(base.NewFloatAttribute(fmt.Sprintf("attr%d", j)))
	}
	classAttr := base.NewCategoricalAttribute()
	classAttr.SetName("label")
	classSpec := inst.AddAttribute(classAttr)
	if err := inst.AddClassAttribute(classAttr); err != nil {
		return nil, err
	}
	if err := inst.Extend(len(features)); err != nil {
		return nil, err
	}

	for i, row := range features {
		if len(row) != numFeat {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), numFeat)
		}
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
		label := strconv.FormatFloat(labels[i], 'g', -1, 64)
		inst.Set(classSpec, i, classAttr.GetSysValFromString(label))
	}
	return inst, nil
}

func binarize(src base.FixedDataGrid) (base.FixedDataGrid, error) {
	filter := filters.NewBinaryConvertFilter()
	for _, attr := range base.NonClassAttributes(src) {
		filter.AddAttribute(attr)
	}
	if err := filter.Train(); err != nil {
		return nil, err
	}
	return base.NewLazilyFilteredInstances(src, filter), nil
}
