package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"ballotpool/contexts/voting-market/campaign-registry/ports"
)

const busModule = "internal/platform/messaging"

var ErrBusClosed = errors.New("event bus is closed")

// Bus is the event bus used by the worker outbox relay.
// Delivery is in-process; Brokers is carried so deployments can report the
// external cluster the relay is configured against.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscription
	closed      bool
	wg          sync.WaitGroup
	brokers     []string
	bufferSize  int
	logger      *slog.Logger
}

type subscription struct {
	group  string
	events chan ports.EventEnvelope
	done   chan struct{}
}

func NewBus(brokers []string, logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]*subscription),
		brokers:     append([]string(nil), brokers...),
		bufferSize:  128,
		logger:      logger,
	}
}

func (b *Bus) Brokers() []string {
	return append([]string(nil), b.brokers...)
}

func (b *Bus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := event.Validate(); err != nil {
		return err
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	subs := append([]*subscription(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.done:
		case sub.events <- event:
		default:
			b.log(slog.LevelWarn, "dropping event for slow subscriber",
				"event", "bus_publish_drop",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		}
	}

	b.log(slog.LevelInfo, "event published",
		"event", "bus_publish",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"subscribers", len(subs),
	)
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if handler == nil {
		return errors.New("subscriber handler is required")
	}
	sub := &subscription{
		group:  consumerGroup,
		events: make(chan ports.EventEnvelope, b.bufferSize),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, sub)
				return
			case <-sub.done:
				return
			case event := <-sub.events:
				if err := handler(ctx, event); err != nil {
					b.log(slog.LevelError, "consumer handler failed",
						"event", "bus_consume_failed",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Close stops every subscriber goroutine and waits for them to exit.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for topic, subs := range b.subscribers {
		for _, sub := range subs {
			close(sub.done)
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *Bus) removeSubscriber(topic string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]*subscription, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}

func (b *Bus) log(level slog.Level, msg string, args ...any) {
	if b.logger == nil {
		return
	}
	args = append(args, "module", busModule, "layer", "platform")
	b.logger.Log(context.Background(), level, msg, args...)
}

var (
	_ ports.EventPublisher  = (*Bus)(nil)
	_ ports.EventSubscriber = (*Bus)(nil)
)
