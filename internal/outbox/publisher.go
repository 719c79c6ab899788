// Package outbox drains committed order events to Kafka so partner
// systems (fulfillment, order webhooks) observe every terminal
// transition exactly as the engine recorded it.
package outbox

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mittal-parth/agentic-commerce/internal/store"
)

const Topic = "order-events"

type Repository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*store.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID string) error
}

// Writer is the subset of kafka.Writer the poller needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Poller struct {
	tick      time.Duration
	batchSize int
	repo      Repository
	writer    Writer
}

func NewPoller(repo Repository, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Poller{tick: time.Second, batchSize: 100, repo: repo, writer: w}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, err)
			continue
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, err)
			continue
		}
	}
}

func (p *Poller) publish(ctx context.Context, event *store.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // session id for per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
