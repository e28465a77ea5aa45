package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const activityLogPath = "logs/activity.log"

// StartActivityConsumer connects to RabbitMQ, declares the activity queues
// (durable) and consumes them into logs/activity.log, one human-readable
// line per event. It runs a reconnect loop with backoff and never returns
// under normal operation; malformed messages are rejected without requeue
// so a poison message cannot wedge the consumer.
func StartActivityConsumer(url string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("activity consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn("activity consumer: consume loop ended", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("activity consumer: set QoS failed", zap.Error(err))
	}

	for _, name := range []string{QueueUserRegistered, QueueCourseCreated} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	users, err := ch.Consume(QueueUserRegistered, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", QueueUserRegistered, err)
	}
	courses, err := ch.Consume(QueueCourseCreated, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", QueueCourseCreated, err)
	}

	for {
		select {
		case d, ok := <-users:
			if !ok {
				return fmt.Errorf("%s channel closed", QueueUserRegistered)
			}
			handleDelivery(d, QueueUserRegistered, log)
		case d, ok := <-courses:
			if !ok {
				return fmt.Errorf("%s channel closed", QueueCourseCreated)
			}
			handleDelivery(d, QueueCourseCreated, log)
		}
	}
}

func handleDelivery(d amqp.Delivery, queueName string, log *zap.Logger) {
	line, err := formatLine(queueName, d.Body)
	if err != nil {
		log.Warn("activity consumer: bad message", zap.String("queue", queueName), zap.Error(err))
		_ = d.Nack(false, false) // drop, do not requeue
		return
	}
	if err := appendLine(line); err != nil {
		log.Warn("activity consumer: write failed", zap.Error(err))
		_ = d.Nack(false, true) // requeue, the log file may come back
		return
	}
	_ = d.Ack(false)
}

func formatLine(queueName string, body []byte) (string, error) {
	switch queueName {
	case QueueUserRegistered:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s user_registered id=%d email=%s role=%s event=%s",
			ev.RegisteredAt, ev.UserID, ev.Email, ev.Role, ev.EventID), nil
	case QueueCourseCreated:
		var ev CourseCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s course_created id=%d title=%q category=%s author=%d event=%s",
			ev.CreatedAt, ev.CourseID, ev.Title, ev.CategoryName, ev.AuthorID, ev.EventID), nil
	}
	return "", fmt.Errorf("unknown queue %s", queueName)
}

func appendLine(line string) error {
	if err := os.MkdirAll(filepath.Dir(activityLogPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(activityLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteString(line + "\n")
	return err
}
