package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

// Recorder receives domain counters. The metrics adapter implements it.
type Recorder interface {
	OrderCreated(payment domain.PaymentMethod)
	StatusChanged(from, to domain.OrderStatus)
}

const defaultChangedBy = "dashboard"

type Service struct {
	repo      interfaces.OrderRepository
	plates    interfaces.PlateRepository
	publisher interfaces.EventPublisher
	metrics   Recorder
	logger    logger.Logger
}

func NewService(
	repo interfaces.OrderRepository,
	plates interfaces.PlateRepository,
	publisher interfaces.EventPublisher,
	metrics Recorder,
	logger logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		plates:    plates,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	plate, err := s.plates.FindByID(ctx, cmd.PlateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrUnknownPlate, cmd.PlateID)
		}
		return nil, err
	}

	payment, err := domain.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, err
	}

	// The plate price is authoritative; a client amount is only a cross-check.
	amount := plate.TotalPrice
	if cmd.TotalAmount != nil && math.Abs(*cmd.TotalAmount-plate.TotalPrice) >= 0.005 {
		return nil, fmt.Errorf("%w: expected %.2f", domain.ErrAmountMismatch, plate.TotalPrice)
	}

	order, err := domain.NewOrder(cmd.PlateID, cmd.CustomerName, cmd.CustomerPhone, cmd.DeliveryAddress,
		cmd.Latitude, cmd.Longitude, payment, amount, cmd.Notes)
	if err != nil {
		s.logger.Debug("validation_failed", "Order validation failed", "", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// Stored together with the initial status log entry
	if err := s.repo.Create(ctx, order); err != nil {
		if !errors.Is(err, domain.ErrUnknownPlate) {
			s.logger.Error("db_transaction_failed", "Failed to create order", "", nil, err)
		}
		return nil, err
	}
	s.metrics.OrderCreated(order.PaymentMethod)
	s.logger.Debug("order_received", "Order created in DB", "", map[string]interface{}{"order_id": order.ID})

	msg := interfaces.OrderCreatedMessage{
		OrderID:       order.ID,
		PlateID:       order.PlateID,
		CustomerName:  order.CustomerName,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		CreatedAt:     order.CreatedAt,
	}
	if err := s.publisher.PublishOrderCreated(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order created event", "",
			map[string]interface{}{"order_id": order.ID}, err)
	}

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.OrderWithPlate, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plate, err := s.plates.FindByID(ctx, order.PlateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plate %d for order %d: %w", order.PlateID, order.ID, err)
	}

	return &domain.OrderWithPlate{Order: *order, Plate: plate}, nil
}

func (s *Service) ListOrders(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	return s.repo.List(ctx, filter)
}

// UpdateStatus advances an order exactly one step. Only the status changes.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status, changedBy string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := order.Status
	if err := order.TransitionTo(next); err != nil {
		return nil, err
	}

	changedBy = strings.TrimSpace(changedBy)
	if changedBy == "" {
		changedBy = defaultChangedBy
	}

	if err := s.repo.UpdateStatus(ctx, id, prev, next, changedBy); err != nil {
		return nil, err
	}
	s.metrics.StatusChanged(prev, next)

	s.logger.Debug("status_updated", fmt.Sprintf("Order %d moved to %s", id, next), "",
		map[string]interface{}{"order_id": id, "old_status": prev, "new_status": next})

	msg := interfaces.StatusUpdateMessage{
		OrderID:   id,
		OldStatus: prev,
		NewStatus: next,
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", "",
			map[string]interface{}{"order_id": id}, err)
	}

	return order, nil
}

// GetHistory returns the status log oldest first.
func (s *Service) GetHistory(ctx context.Context, id int64) ([]*domain.StatusLog, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetStatusHistory(ctx, id)
}

func (s *Service) GetStats(ctx context.Context) (map[domain.OrderStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}
