// Package classifier is the built-in classification engine: it reads labeled
// entity properties from the event store, trains a naive Bayes model and
// serves label predictions for feature-vector queries.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/IndianOnRun/PredictionIO/engine"
	"github.com/IndianOnRun/PredictionIO/event"
)

// DataSourceParams selects which stored entities become training data.
type DataSourceParams struct {
	AppID      int      `yaml:"app_id"`
	EntityType string   `yaml:"entity_type"`
	Attributes []string `yaml:"attributes"` // feature properties, in query order
	Label      string   `yaml:"label"`      // class label property
}

func (p *DataSourceParams) setDefaults() {
	if p.EntityType == "" {
		p.EntityType = "user"
	}
	if len(p.Attributes) == 0 {
		p.Attributes = []string{"attr0", "attr1", "attr2"}
	}
	if p.Label == "" {
		p.Label = "label"
	}
}

// DataSource aggregates per-entity properties into labeled points. Entities
// missing any required attribute are filtered out; a present but malformed
// attribute fails the whole read after logging the offending entity.
type DataSource struct {
	store  *event.Store
	params DataSourceParams
	logger *zap.Logger
}

func NewDataSource(store *event.Store, params DataSourceParams, logger *zap.Logger) *DataSource {
	params.setDefaults()
	return &DataSource{store: store, params: params, logger: logger}
}

func (ds *DataSource) ReadTraining(ctx context.Context) (engine.TrainingData, error) {
	entities, err := ds.store.AggregateProperties(ds.params.AppID, ds.params.EntityType)
	if err != nil {
		return engine.TrainingData{}, fmt.Errorf("aggregate properties: %w", err)
	}

	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var td engine.TrainingData
	required := append(append([]string{}, ds.params.Attributes...), ds.params.Label)

	for _, id := range ids {
		if ctx.Err() != nil {
			return engine.TrainingData{}, ctx.Err()
		}
		props := entities[id]
		if !hasAll(props, required) {
			continue
		}
		point, err := ds.extract(props)
		if err != nil {
			ds.logger.Error("failed to extract properties of entity",
				zap.String("entity_id", id), zap.Any("properties", props))
			return engine.TrainingData{}, fmt.Errorf("entity %s: %w", id, err)
		}
		td.Points = append(td.Points, point)
	}
	return td, nil
}

func (ds *DataSource) extract(props map[string]interface{}) (engine.LabeledPoint, error) {
	features := make([]float64, len(ds.params.Attributes))
	for i, attr := range ds.params.Attributes {
		v, err := toFloat(props[attr])
		if err != nil {
			return engine.LabeledPoint{}, fmt.Errorf("property %s: %w", attr, err)
		}
		features[i] = v
	}
	label, err := toFloat(props[ds.params.Label])
	if err != nil {
		return engine.LabeledPoint{}, fmt.Errorf("property %s: %w", ds.params.Label, err)
	}
	return engine.LabeledPoint{Label: label, Features: features}, nil
}

func hasAll(props map[string]interface{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := props[k]; !ok {
			return false
		}
	}
	return true
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}
