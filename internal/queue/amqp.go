// Package queue publishes benchmark reports to RabbitMQ so downstream
// consumers can aggregate runs across hosts.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/bench"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// Publisher delivers benchmark reports to an external consumer.
type Publisher interface {
	PublishReport(ctx context.Context, report bench.Report) error
	Close() error
}

// AMQPPublisher publishes reports to a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	target  string
	logger  types.Logger
	metrics types.Metrics
}

// NewAMQPPublisher connects to the broker and opens a channel. Target is
// the queue name reports are routed to.
func NewAMQPPublisher(url, target string, logger types.Logger, metrics types.Metrics) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	logger.Info(context.Background(), "Report publisher initialized", types.Fields{
		"target": target,
	})

	return &AMQPPublisher{
		conn:    conn,
		channel: channel,
		target:  target,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// PublishReport sends one report as a persistent JSON message.
func (p *AMQPPublisher) PublishReport(ctx context.Context, report bench.Report) error {
	start := time.Now()
	defer func() {
		p.metrics.RecordDuration("queue_publish", time.Since(start).Seconds())
	}()

	body, err := json.Marshal(report)
	if err != nil {
		p.metrics.RecordError("queue_publish", "marshal_failed")
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// Declaring the queue is idempotent.
	if _, err := p.channel.QueueDeclare(
		p.target,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		p.metrics.RecordError("queue_publish", "declare_failed")
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msg := amqp091.Publishing{
		DeliveryMode: amqp091.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
	}

	if err := p.channel.PublishWithContext(ctx, "", p.target, false, false, msg); err != nil {
		p.metrics.RecordError("queue_publish", "publish_failed")
		p.logger.Error(ctx, "Failed to publish report", err, types.Fields{
			"run_id": report.RunID,
			"target": p.target,
		})
		return fmt.Errorf("failed to publish report: %w", err)
	}

	p.metrics.RecordSuccess("queue_publish")
	p.logger.Info(ctx, "Report published", types.Fields{
		"run_id": report.RunID,
		"target": p.target,
		"size":   len(body),
	})

	return nil
}

// Close releases the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
