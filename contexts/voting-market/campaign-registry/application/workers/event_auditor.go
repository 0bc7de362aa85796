package workers

import (
	"context"
	"errors"
	"log/slog"

	application "ballotpool/contexts/voting-market/campaign-registry/application"
	"ballotpool/contexts/voting-market/campaign-registry/ports"
)

// RegistryTopics lists every event type the registry emits.
var RegistryTopics = []string{
	"voting.created",
	"vote.cast",
	"prize.paid",
	"voting.finished",
	"commission.withdrawn",
}

// EventAuditor consumes registry events from the bus and writes one
// structured log line per event.
type EventAuditor struct {
	Subscriber    ports.EventSubscriber
	Topics        []string
	ConsumerGroup string
	Logger        *slog.Logger
}

func (a EventAuditor) Start(ctx context.Context) error {
	if a.Subscriber == nil {
		return errors.New("event auditor requires a subscriber")
	}
	topics := a.Topics
	if len(topics) == 0 {
		topics = RegistryTopics
	}
	group := a.ConsumerGroup
	if group == "" {
		group = "campaign-registry-audit-cg"
	}
	for _, topic := range topics {
		if err := a.Subscriber.Subscribe(ctx, topic, group, a.handle); err != nil {
			return err
		}
	}
	return nil
}

func (a EventAuditor) handle(_ context.Context, event ports.EventEnvelope) error {
	if event.EventID == "" {
		return errors.New("event without id")
	}
	var payload struct {
		CampaignName string `json:"campaign_name"`
	}
	if len(event.Data) > 0 {
		if err := event.DecodeData(&payload); err != nil {
			return err
		}
	}
	application.ResolveLogger(a.Logger).Info("registry event observed",
		"event", "registry_event_observed",
		"module", moduleName,
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
		"campaign_name", payload.CampaignName,
	)
	return nil
}
