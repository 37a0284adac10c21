package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	r "github.com/ArpitPareek/ME-QKART-BACKEND/internal/repository"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the poller uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPoller struct {
	eventTick time.Duration
	batchSize int
	repo      r.OutboxRepository
	writer    messageWriter
}

func NewOutboxPoller(repo r.OutboxRepository, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "checkout-completed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{time.Second, 100, repo, w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.UnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		log.Printf("failed to fetch events %v", err)
		return
	}

	for _, event := range events {
		errPublish := p.publishToKafka(ctx, event)
		if errPublish != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}

		errMark := p.repo.MarkEventAsProcessed(ctx, event.ID)
		if errMark != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *domain.CheckoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Email), // per-user ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("checkout.completed")},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
