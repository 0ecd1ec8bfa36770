package ml

import "fmt"

// Model is a trainable classifier over numeric feature vectors.
type Model interface {
	Train(features [][]float64, labels []float64) error
	Predict(features []float64) (float64, error)
	Save(path string) error
	Load(path string) error
}

// New builds an untrained model of the given type. lambda is the additive
// smoothing constant; backends that do not smooth ignore it.
func New(modelType string, lambda float64) (Model, error) {
	switch modelType {
	case "naive-bayes", "":
		return NewNaiveBayes(lambda), nil
	case "bernoulli-nb":
		return NewBernoulliNB(), nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
}

// LoadModel restores a previously saved model from disk.
func LoadModel(modelType, path string, lambda float64) (Model, error) {
	model, err := New(modelType, lambda)
	if err != nil {
		return nil, err
	}
	if err := model.Load(path); err != nil {
		return nil, err
	}
	return model, nil
}
