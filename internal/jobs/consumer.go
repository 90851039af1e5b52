package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/shared/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TriggerMessage is the queue payload published after job creation. The
// queue only carries the trigger; the database row is the source of truth.
type TriggerMessage struct {
	JobID string `json:"job_id"`
}

// ConsumerConfig holds queue consumer configuration
type ConsumerConfig struct {
	Processor     *Processor
	RabbitClient  *rabbitmq.Client
	Logger        *slog.Logger
	Concurrency   int
	PrefetchCount int
}

// Consumer dispatches queued job triggers to the processor. Because
// ProcessOne is idempotent over the atomic claim, redelivered or duplicate
// triggers are harmless.
type Consumer struct {
	processor     *Processor
	rabbitClient  *rabbitmq.Client
	logger        *slog.Logger
	concurrency   int
	prefetchCount int
	consumerID    string

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewConsumer creates a consumer instance
func NewConsumer(cfg *ConsumerConfig) *Consumer {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	prefetchCount := cfg.PrefetchCount
	if prefetchCount <= 0 {
		prefetchCount = concurrency
	}

	return &Consumer{
		processor:     cfg.Processor,
		rabbitClient:  cfg.RabbitClient,
		logger:        cfg.Logger,
		concurrency:   concurrency,
		prefetchCount: prefetchCount,
		consumerID:    "worker-" + uuid.New().String()[:8],
		stopChan:      make(chan struct{}),
	}
}

// Start sets up the consumer and spawns the processing goroutines.
func (c *Consumer) Start(ctx context.Context) error {
	channel := c.rabbitClient.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel is nil")
	}

	if err := channel.Qos(c.prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.rabbitClient.Consume(c.consumerID)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("Job trigger consumer started",
		slog.String("consumer_id", c.consumerID),
		slog.Int("concurrency", c.concurrency),
		slog.Int("prefetch_count", c.prefetchCount),
	)

	for i := 0; i < c.concurrency; i++ {
		c.wg.Add(1)
		go c.consumeLoop(ctx, deliveries)
	}

	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopChan:
			return

		case <-ctx.Done():
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			c.handleDelivery(ctx, delivery)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var msg TriggerMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		c.logger.Error("Failed to parse trigger message",
			slog.String("error", err.Error()),
			slog.String("body", string(delivery.Body)),
		)
		// Malformed messages are dropped, not requeued.
		c.nack(delivery, false)
		return
	}

	if _, err := uuid.Parse(msg.JobID); err != nil {
		c.logger.Error("Trigger message with invalid job_id",
			slog.String("job_id", msg.JobID),
			slog.String("error", err.Error()),
		)
		c.nack(delivery, false)
		return
	}

	if err := c.processor.ProcessOne(ctx, msg.JobID); err != nil {
		// Store-level error: the claim never happened, so requeueing is
		// safe and the next attempt may find the database healthy again.
		c.logger.Error("Trigger processing failed",
			slog.String("job_id", msg.JobID),
			slog.String("error", err.Error()),
		)
		c.nack(delivery, true)
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.logger.Error("Failed to ACK trigger message",
			slog.String("job_id", msg.JobID),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Consumer) nack(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Nack(false, requeue); err != nil {
		c.logger.Error("Failed to NACK trigger message",
			slog.String("error", err.Error()),
			slog.Bool("requeue", requeue),
		)
	}
}

// Stop signals the consume loops and waits for them to drain.
func (c *Consumer) Stop() {
	c.logger.Info("Stopping job trigger consumer")
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Job trigger consumer stopped")
}
