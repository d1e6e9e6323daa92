package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	customerrors "github.com/axellelanca/clickfix/internal/errors"
)

// AMQPNotifier publishes alerts as persistent JSON messages on a durable queue.
type AMQPNotifier struct {
	conn  *amqp.Connection
	queue string

	mu sync.Mutex // amqp.Channel is not safe for concurrent publishes
	ch *amqp.Channel
}

// NewAMQPNotifier dials the broker and declares the alert queue.
func NewAMQPNotifier(url, queue string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &AMQPNotifier{conn: conn, ch: ch, queue: queue}, nil
}

// Notify publishes alert to the queue through the default exchange.
func (n *AMQPNotifier) Notify(ctx context.Context, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return customerrors.ErrNotificationFailed{Sink: "amqp", Reason: err.Error()}
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode amqp payload: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.ch.Publish("", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    alert.Time,
		Type:         alert.EventType,
		Body:         body,
	})
	if err != nil {
		return customerrors.ErrNotificationFailed{Sink: "amqp", Reason: err.Error()}
	}
	return nil
}

// Close tears down the channel and the broker connection.
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ch.Close(); err != nil {
		return err
	}
	return n.conn.Close()
}
