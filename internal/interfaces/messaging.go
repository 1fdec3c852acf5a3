package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/plates/internal/domain"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// RabbitMQ messages
type OrderCreatedMessage struct {
	OrderID       int64                `json:"order_id"`
	PlateID       int64                `json:"plate_id"`
	CustomerName  string               `json:"customer_name"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	TotalAmount   float64              `json:"total_amount"`
	CreatedAt     time.Time            `json:"created_at"`
}

type StatusUpdateMessage struct {
	OrderID   int64              `json:"order_id"`
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
	ChangedBy string             `json:"changed_by"`
	Timestamp time.Time          `json:"timestamp"`
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, msg OrderCreatedMessage) error
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
}

type MessageConsumer interface {
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
}

type NotificationHandler func(ctx context.Context, eventType string, body []byte) error
