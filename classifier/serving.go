package classifier

import (
	"errors"

	"github.com/IndianOnRun/PredictionIO/engine"
)

// Serving reconciles algorithm outputs by returning the first result.
type Serving struct{}

func (Serving) Serve(q engine.Query, results []engine.PredictedResult) (engine.PredictedResult, error) {
	if len(results) == 0 {
		return engine.PredictedResult{}, errors.New("no predictions to serve")
	}
	return results[0], nil
}
