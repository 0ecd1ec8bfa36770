package engine

// Query carries the ordered feature values a prediction is requested for.
type Query struct {
	Features []float64 `json:"features"`
}

// PredictedResult is a single predicted class label.
type PredictedResult struct {
	Label float64 `json:"label"`
}

// LabeledPoint pairs a class label with its feature vector.
type LabeledPoint struct {
	Label    float64   `json:"label"`
	Features []float64 `json:"features"`
}

// TrainingData wraps the labeled points read from the data source.
type TrainingData struct {
	Points []LabeledPoint
}

// PreparedData wraps the training data after preparation.
type PreparedData struct {
	Points []LabeledPoint
}
