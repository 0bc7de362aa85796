package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"ballotpool/contexts/voting-market/campaign-registry/adapters/memory"
	"ballotpool/contexts/voting-market/campaign-registry/application/commands"
	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	"ballotpool/contexts/voting-market/campaign-registry/ports"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type recordingPublisher struct {
	topics []string
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	if topic == p.failOn {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func newRegistry(store *memory.Store, clock *fixedClock) commands.RegistryUseCase {
	return commands.RegistryUseCase{
		Repo:  store,
		Clock: clock,
		IDGen: store,
		Admin: "admin-1",
	}
}

func createCampaign(t *testing.T, registry commands.RegistryUseCase, name string, seconds int64) {
	t.Helper()
	if _, err := registry.AddVoting(context.Background(), commands.AddVotingCommand{
		CallerID:        "admin-1",
		Name:            name,
		Candidates:      []string{"a", "b"},
		DurationSeconds: seconds,
	}); err != nil {
		t.Fatalf("add voting: %v", err)
	}
}

func TestOutboxRelayPublishesAndMarksRows(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	registry := newRegistry(store, clock)
	createCampaign(t, registry, "v1", 60)
	if _, err := registry.Vote(context.Background(), commands.VoteCommand{
		VoterID:      "voter-1",
		CampaignName: "v1",
		Candidate:    "a",
		AmountPaid:   entities.DefaultVotePrice,
	}); err != nil {
		t.Fatalf("vote: %v", err)
	}

	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: clock, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay: %v", err)
	}
	if len(publisher.topics) != 2 || publisher.topics[0] != "voting.created" || publisher.topics[1] != "vote.cast" {
		t.Fatalf("unexpected published topics %v", publisher.topics)
	}
	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %d", len(pending))
	}
}

func TestOutboxRelayStopsOnFirstFailure(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	registry := newRegistry(store, clock)
	createCampaign(t, registry, "v1", 60)
	if _, err := registry.Vote(context.Background(), commands.VoteCommand{
		VoterID:      "voter-1",
		CampaignName: "v1",
		Candidate:    "a",
		AmountPaid:   entities.DefaultVotePrice,
	}); err != nil {
		t.Fatalf("vote: %v", err)
	}

	publisher := &recordingPublisher{failOn: "vote.cast"}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: clock}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure")
	}
	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 1 || pending[0].EventType != "vote.cast" {
		t.Fatalf("expected the failed row to stay pending, got %+v", pending)
	}
}

func TestSettlementSchedulerFinishesExpiredCampaigns(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	registry := newRegistry(store, clock)
	createCampaign(t, registry, "short", 60)
	createCampaign(t, registry, "long", 3600)

	scheduler := SettlementScheduler{Repo: store, Registry: registry, Clock: clock}
	finished, err := scheduler.RunOnce(context.Background())
	if err != nil || finished != 0 {
		t.Fatalf("expected nothing to finish yet, got %d, %v", finished, err)
	}

	clock.now = clock.now.Add(2 * time.Minute)
	finished, err = scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	if finished != 1 {
		t.Fatalf("expected one finished campaign, got %d", finished)
	}
	short, _ := store.GetCampaign(context.Background(), "short")
	long, _ := store.GetCampaign(context.Background(), "long")
	if short.Active || !long.Active {
		t.Fatalf("unexpected states: short=%v long=%v", short.Active, long.Active)
	}

	finished, err = scheduler.RunOnce(context.Background())
	if err != nil || finished != 0 {
		t.Fatalf("expected idle second cycle, got %d, %v", finished, err)
	}
}

type recordingSubscriber struct {
	handlers map[string]func(context.Context, ports.EventEnvelope) error
	groups   []string
}

func (s *recordingSubscriber) Subscribe(
	_ context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if s.handlers == nil {
		s.handlers = make(map[string]func(context.Context, ports.EventEnvelope) error)
	}
	s.handlers[topic] = handler
	s.groups = append(s.groups, consumerGroup)
	return nil
}

func TestEventAuditorSubscribesToRegistryTopics(t *testing.T) {
	subscriber := &recordingSubscriber{}
	auditor := EventAuditor{Subscriber: subscriber}
	if err := auditor.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(subscriber.handlers) != len(RegistryTopics) {
		t.Fatalf("expected %d subscriptions, got %d", len(RegistryTopics), len(subscriber.handlers))
	}
	if subscriber.groups[0] != "campaign-registry-audit-cg" {
		t.Fatalf("unexpected consumer group %q", subscriber.groups[0])
	}

	handler := subscriber.handlers["vote.cast"]
	if err := handler(context.Background(), ports.EventEnvelope{EventID: "evt-1", EventType: "vote.cast"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := handler(context.Background(), ports.EventEnvelope{}); err == nil {
		t.Fatalf("expected error for event without id")
	}
	if err := handler(context.Background(), ports.EventEnvelope{EventID: "evt-2", Data: []byte("{")}); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	if err := (EventAuditor{}).Start(context.Background()); err == nil {
		t.Fatalf("expected missing subscriber error")
	}
}
