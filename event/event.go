// Package event stores timestamped entity events, the raw material the
// data source aggregates into training data.
package event

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SetEvent marks an event that sets entity properties.
const SetEvent = "$set"

// Event records one property update for an entity of an application.
type Event struct {
	ID         string                 `json:"eventId,omitempty"`
	AppID      int                    `json:"appId"`
	Event      string                 `json:"event"`
	EntityType string                 `json:"entityType"`
	EntityID   string                 `json:"entityId"`
	Properties map[string]interface{} `json:"properties"`
	EventTime  time.Time              `json:"eventTime"`
}

// Normalize fills defaults and validates required fields.
func (e *Event) Normalize() error {
	if e.EntityType == "" || e.EntityID == "" {
		return errors.New("entityType and entityId are required")
	}
	if e.Event == "" {
		e.Event = SetEvent
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.EventTime.IsZero() {
		e.EventTime = time.Now().UTC()
	}
	if e.Properties == nil {
		e.Properties = map[string]interface{}{}
	}
	return nil
}

func (e *Event) marshalProperties() (string, error) {
	payload, err := json.Marshal(e.Properties)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
