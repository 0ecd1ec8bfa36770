package classifier

import (
	"context"

	"github.com/IndianOnRun/PredictionIO/engine"
)

// Preparator passes training data through unchanged.
type Preparator struct{}

func (Preparator) Prepare(ctx context.Context, td engine.TrainingData) (engine.PreparedData, error) {
	return engine.PreparedData{Points: td.Points}, nil
}
