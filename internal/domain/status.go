package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivered OrderStatus = "delivered"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusDelivered}

// ParseOrderStatus accepts only the four lifecycle values.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range OrderStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentCash, PaymentOnline:
		return m, nil
	default:
		return "", fmt.Errorf("%w: payment method must be cash or online", ErrValidation)
	}
}

type IngredientType string

const (
	IngredientProtein      IngredientType = "protein"
	IngredientCarbohydrate IngredientType = "carbohydrate"
	IngredientVegetable    IngredientType = "vegetable"
	IngredientSauce        IngredientType = "sauce"
)

func ParseIngredientType(s string) (IngredientType, error) {
	switch t := IngredientType(strings.ToLower(strings.TrimSpace(s))); t {
	case IngredientProtein, IngredientCarbohydrate, IngredientVegetable, IngredientSauce:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown ingredient type %q", ErrValidation, s)
	}
}

// StatusLog represents a log entry for order status changes
type StatusLog struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	ChangedBy string
	ChangedAt time.Time
	Notes     *string
}
