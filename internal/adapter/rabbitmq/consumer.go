package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn     Connection
	exchange string
	log      logger.Logger
	delay    time.Duration
}

func NewConsumer(conn Connection, exchange string, log logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, exchange: exchange, log: log, delay: reconnectDelay}
}

func (c *consumer) ConsumeNotifications(ctx context.Context, handler interfaces.NotificationHandler) error {
	for {
		err := c.consume(ctx, handler)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.log.Warn("consumer_disconnected",
			fmt.Sprintf("Notifications consumer disconnected, reconnecting in %s", c.delay), "",
			map[string]interface{}{"error": err.Error()})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
		}
	}
}

func (c *consumer) consume(ctx context.Context, handler interfaces.NotificationHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(c.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Temporary exclusive queue per subscriber
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.log.Info("consumer_started", "Listening for plate notifications", "",
		map[string]interface{}{"exchange": c.exchange, "queue": q.Name})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			// Notifications are auto-acked; a bad message is logged and dropped.
			if err := handler(ctx, msg.Type, msg.Body); err != nil {
				c.log.Error("notification_failed", "Failed to handle notification", "",
					map[string]interface{}{"event_type": msg.Type, "message_id": msg.MessageId}, err)
			}
		}
	}
}
