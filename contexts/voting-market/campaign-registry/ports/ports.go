package ports

import (
	"context"
	"time"

	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	contractsv1 "ballotpool/contracts/gen/events/v1"
)

// Repository is the registry's storage. Mutations go through Atomically so
// that each operation is applied as one serialized unit.
type Repository interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error

	GetCampaign(ctx context.Context, name string) (entities.Campaign, error)
	ListCampaigns(ctx context.Context) ([]entities.Campaign, error)
	CountCampaigns(ctx context.Context) (int, error)
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]string, error)
	Custody(ctx context.Context) (int64, error)
	ListTransfers(ctx context.Context, campaignName string) ([]entities.Transfer, error)
}

// Tx is the write view handed to Atomically callbacks. Nothing written
// through it is visible to other callers until the callback returns nil.
type Tx interface {
	CampaignExists(ctx context.Context, name string) (bool, error)
	CreateCampaign(ctx context.Context, campaign entities.Campaign) error
	LockCampaign(ctx context.Context, name string) (entities.Campaign, error)
	SaveCampaign(ctx context.Context, campaign entities.Campaign) error
	LockSettledCampaigns(ctx context.Context) ([]entities.Campaign, error)
	HasVoted(ctx context.Context, campaignName string, voter string) (bool, error)
	RecordVote(ctx context.Context, vote entities.Vote) error
	RecordTransfer(ctx context.Context, transfer entities.Transfer) error
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Metrics receives business counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	CampaignCreated()
	VoteAccepted(credited int64, refunded int64)
	OperationRejected(operation string, reason string)
	CampaignFinished(winners int, paidOut int64)
	CommissionWithdrawn(amount int64)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
