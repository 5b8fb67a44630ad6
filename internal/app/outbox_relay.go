/**
 * @description
 * The outbox relay is the asynchronous half of the notification guarantee.
 * It polls the notification outbox for due rows, publishes each one to its
 * channel and settles the row only after the broker accepted the message,
 * giving at-least-once delivery for every committed mutation. Failed
 * publishes are rescheduled with exponential backoff; a row that exhausts
 * its retry ceiling is parked as dead.
 *
 * @notes
 * - Multiple relay instances can run concurrently; claim exclusivity lives
 *   in the store's claiming query, not here.
 * - The producer is built lazily and torn down on a publish error so the
 *   next tick redials a fresh connection.
 */
package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/parabank/account-service/internal/store"
	"github.com/parabank/account-service/pkg/rabbitmq"
)

const (
	defaultBatchSize       = 50
	defaultPollInterval    = 1200 * time.Millisecond
	defaultStaleProcessing = 2 * time.Minute
	defaultMaxAttempts     = 8
)

// RelaySettings tunes the outbox relay. Zero values fall back to defaults.
type RelaySettings struct {
	BatchSize       int
	PollInterval    time.Duration
	StaleProcessing time.Duration
	MaxAttempts     int
}

// OutboxRelay drains the notification outbox to the broker.
type OutboxRelay struct {
	outbox              store.OutboxRepository
	newPublisher        func() (rabbitmq.Publisher, error)
	publisher           rabbitmq.Publisher
	batchSize           int
	pollInterval        time.Duration
	staleProcessingTime time.Duration
	maxAttempts         int
}

// NewOutboxRelay creates a relay that publishes through RabbitMQ at the
// given URL.
func NewOutboxRelay(outbox store.OutboxRepository, rabbitURL string, settings RelaySettings) *OutboxRelay {
	if settings.BatchSize <= 0 {
		settings.BatchSize = defaultBatchSize
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = defaultPollInterval
	}
	if settings.StaleProcessing <= 0 {
		settings.StaleProcessing = defaultStaleProcessing
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = defaultMaxAttempts
	}
	return &OutboxRelay{
		outbox: outbox,
		newPublisher: func() (rabbitmq.Publisher, error) {
			return rabbitmq.NewQueueProducer(rabbitURL)
		},
		batchSize:           settings.BatchSize,
		pollInterval:        settings.PollInterval,
		staleProcessingTime: settings.StaleProcessing,
		maxAttempts:         settings.MaxAttempts,
	}
}

// Run polls until the context is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	defer r.closePublisher()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.flushOnce(ctx); err != nil {
				log.Printf("Outbox flush error: %v", err)
			}
		}
	}
}

func (r *OutboxRelay) flushOnce(ctx context.Context) error {
	staleAfterSeconds := int(r.staleProcessingTime.Seconds())
	messages, err := r.outbox.ClaimOutboxMessages(ctx, r.batchSize, staleAfterSeconds)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	for _, message := range messages {
		if err := r.publishMessage(ctx, message); err != nil {
			if message.Attempts >= r.maxAttempts {
				log.Printf("Outbox message %d exhausted %d attempts, dead-lettering: %v", message.ID, message.Attempts, err)
				_ = r.outbox.MarkOutboxDead(ctx, message.ID, err.Error())
				continue
			}
			retryAfter := retryDelaySeconds(message.Attempts)
			_ = r.outbox.MarkOutboxFailed(ctx, message.ID, retryAfter, err.Error())
			continue
		}
		if err := r.outbox.MarkOutboxPublished(ctx, message.ID); err != nil {
			log.Printf("Failed to mark outbox message %d as published: %v", message.ID, err)
		}
	}
	return nil
}

func (r *OutboxRelay) publishMessage(ctx context.Context, message store.OutboxMessage) error {
	if r.publisher == nil {
		publisher, err := r.newPublisher()
		if err != nil {
			return err
		}
		r.publisher = publisher
	}

	var payload interface{}
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return err
	}

	if err := r.publisher.Publish(ctx, message.Channel, payload); err != nil {
		r.closePublisher()
		return err
	}
	return nil
}

func (r *OutboxRelay) closePublisher() {
	if r.publisher != nil {
		r.publisher.Close()
		r.publisher = nil
	}
}

func retryDelaySeconds(attempt int) int {
	if attempt < 1 {
		return 1
	}
	delay := 1 << minInt(attempt, 8)
	if delay > 300 {
		return 300
	}
	return delay
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
