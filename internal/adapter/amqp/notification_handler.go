package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

// NotificationHandler prints plate order events for the notification-subscriber mode.
type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger, out io.Writer) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    out,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, eventType string, body []byte) error {
	switch eventType {
	case interfaces.EventOrderCreated:
		var msg interfaces.OrderCreatedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			h.logger.Error("message_parse_failed", "Failed to parse order created event", "", nil, err)
			return err
		}

		h.logger.Debug("notification_received", fmt.Sprintf("Received new order %d", msg.OrderID), "",
			map[string]interface{}{"order_id": msg.OrderID, "plate_id": msg.PlateID})

		fmt.Fprintf(h.out, "Notification: order %d placed by %s for plate %d (%.2f, %s)\n",
			msg.OrderID, msg.CustomerName, msg.PlateID, msg.TotalAmount, msg.PaymentMethod)

	case interfaces.EventOrderStatusChanged:
		var msg interfaces.StatusUpdateMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			h.logger.Error("message_parse_failed", "Failed to parse status update", "", nil, err)
			return err
		}

		h.logger.Debug("notification_received", fmt.Sprintf("Received status update for order %d", msg.OrderID), "",
			map[string]interface{}{"order_id": msg.OrderID, "new_status": msg.NewStatus})

		fmt.Fprintf(h.out, "Notification: order %d status changed from '%s' to '%s' by %s\n",
			msg.OrderID, msg.OldStatus, msg.NewStatus, msg.ChangedBy)

	default:
		h.logger.Warn("notification_skipped", "Unknown event type", "",
			map[string]interface{}{"event_type": eventType})
	}

	return nil
}
