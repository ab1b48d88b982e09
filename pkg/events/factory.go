package events

import (
	"time"

	"github.com/google/uuid"
)

// Factory creates CloudEvents with a fixed source
type Factory struct {
	source string
}

// NewFactory creates a Factory for the given source
func NewFactory(source string) *Factory {
	return &Factory{source: source}
}

// NewEvent creates a CloudEvent of the given type
func (f *Factory) NewEvent(eventType, subject string, data interface{}) *CloudEvent {
	return &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// NewEventWithCorrelation creates a CloudEvent with correlation tracking
func (f *Factory) NewEventWithCorrelation(eventType, subject string, data interface{}, correlationID string) *CloudEvent {
	event := f.NewEvent(eventType, subject, data)
	event.CorrelationID = correlationID
	return event
}
