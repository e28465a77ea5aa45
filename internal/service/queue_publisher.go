// Package queue_publisher publishes domain events to RabbitMQ. Publishing
// is strictly best-effort: errors are logged and returned so callers can
// ignore them without interrupting the request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/dorjizangpo/e-learning-platform/internal/queue"
)

// Publisher holds the broker URL and a logger. A nil Publisher is a valid
// no-op, which keeps handlers free of broker-availability branching.
type Publisher struct {
	url string
	log *zap.Logger
}

func New(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, log: log}
}

// PublishUserRegistered emits ev to the user.registered queue.
func (p *Publisher) PublishUserRegistered(ctx context.Context, ev q.UserRegisteredEvent) error {
	return p.publish(ctx, q.QueueUserRegistered, ev)
}

// PublishCourseCreated emits ev to the course.created queue.
func (p *Publisher) PublishCourseCreated(ctx context.Context, ev q.CourseCreatedEvent) error {
	return p.publish(ctx, q.QueueCourseCreated, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, payload interface{}) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn("event marshal failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}
