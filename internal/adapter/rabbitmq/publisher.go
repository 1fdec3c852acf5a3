package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/YelzhanWeb/plates/internal/interfaces"
)

const exchangeKind = "fanout"

type publisher struct {
	conn     Connection
	exchange string
}

func NewPublisher(conn Connection, exchange string) interfaces.EventPublisher {
	return &publisher{conn: conn, exchange: exchange}
}

func (p *publisher) PublishOrderCreated(ctx context.Context, msg interfaces.OrderCreatedMessage) error {
	return p.publish(ctx, interfaces.EventOrderCreated, msg)
}

func (p *publisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	return p.publish(ctx, interfaces.EventOrderStatusChanged, msg)
}

func (p *publisher) publish(ctx context.Context, eventType string, msg any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Declare exchange
	if err := ch.ExchangeDeclare(p.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	return nil
}

type nopPublisher struct{}

// NewNopPublisher drops every event. Used when RabbitMQ is disabled.
func NewNopPublisher() interfaces.EventPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderCreated(context.Context, interfaces.OrderCreatedMessage) error {
	return nil
}

func (nopPublisher) PublishStatusUpdate(context.Context, interfaces.StatusUpdateMessage) error {
	return nil
}
