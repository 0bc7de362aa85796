package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"ballotpool/contexts/voting-market/campaign-registry/ports"
)

const (
	// Campaign-scoped events are keyed by campaign so consumers see one
	// campaign's history in order.
	campaignPartition = "campaign_name"
	adminPartition    = "admin_id"
)

// newRegistryEnvelope reads the partition key from data at partitionKeyPath,
// so the advertised path always resolves to the key.
func newRegistryEnvelope(
	eventID string,
	eventType string,
	partitionKeyPath string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	partitionKey, ok := data[partitionKeyPath].(string)
	if !ok || partitionKey == "" {
		return ports.EventEnvelope{}, fmt.Errorf("event %s has no %s partition key", eventType, partitionKeyPath)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "campaign-registry",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}
