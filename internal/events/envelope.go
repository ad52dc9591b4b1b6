package events

import (
	"errors"
	"fmt"
	"time"
)

// EnvelopeVersion is the only envelope revision this service reads or writes.
const EnvelopeVersion = 1

var errInvalidEnvelope = errors.New("invalid envelope")

// EventEnvelope is the v1 wrapper every service on the events exchange uses.
// Sequence is monotonic per PartitionKey; for chat traffic that is the customer id.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      *int64    `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

type EnvelopeMetadata struct {
	CorrelationID string
	CausationID   string
}

func newEnvelope[T any](name, schema, producer, partitionKey, eventID string, seq int64, at time.Time, meta EnvelopeMetadata, payload T) EventEnvelope[T] {
	return EventEnvelope[T]{
		EventName:     name,
		EventVersion:  EnvelopeVersion,
		EventID:       eventID,
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      &seq,
		OccurredAt:    at.UTC(),
		Schema:        schema,
		Payload:       payload,
	}
}

// Validate checks the envelope identity against the event the caller expects.
func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	switch {
	case e.EventName != expectedName:
		return fmt.Errorf("%w: eventName %q, want %q", errInvalidEnvelope, e.EventName, expectedName)
	case e.EventVersion != expectedVersion:
		return fmt.Errorf("%w: eventVersion %d, want %d", errInvalidEnvelope, e.EventVersion, expectedVersion)
	case e.EventID == "":
		return fmt.Errorf("%w: missing eventId", errInvalidEnvelope)
	case e.PartitionKey == "":
		return fmt.Errorf("%w: missing partitionKey", errInvalidEnvelope)
	}
	return nil
}
