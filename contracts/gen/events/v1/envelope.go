package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CurrentSchemaVersion is the envelope layout producers emit today.
const CurrentSchemaVersion = 1

var ErrInvalidEnvelope = errors.New("invalid event envelope")

// Envelope is the versioned event envelope shared by producers and
// consumers of registry events. Fields only ever get added.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Validate checks the fields every consumer relies on.
func (e Envelope) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEnvelope)
	case e.EventType == "":
		return fmt.Errorf("%w: event_type is required", ErrInvalidEnvelope)
	case e.OccurredAt.IsZero():
		return fmt.Errorf("%w: occurred_at is required", ErrInvalidEnvelope)
	case e.SchemaVersion < 1 || e.SchemaVersion > CurrentSchemaVersion:
		return fmt.Errorf("%w: unsupported schema_version %d", ErrInvalidEnvelope, e.SchemaVersion)
	case e.PartitionKeyPath != "" && e.PartitionKey == "":
		return fmt.Errorf("%w: partition_key is required when partition_key_path is set", ErrInvalidEnvelope)
	}
	if len(e.Data) > 0 && !json.Valid(e.Data) {
		return fmt.Errorf("%w: data is not valid json", ErrInvalidEnvelope)
	}
	return nil
}

// DecodeData unmarshals the payload into target.
func (e Envelope) DecodeData(target any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: empty data", ErrInvalidEnvelope)
	}
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("decode %s data: %w", e.EventType, err)
	}
	return nil
}
