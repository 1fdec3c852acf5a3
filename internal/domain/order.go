package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Order represents a delivery request for one plate
type Order struct {
	ID              int64
	PlateID         int64
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	Latitude        float64
	Longitude       float64
	PaymentMethod   PaymentMethod
	TotalAmount     float64
	Status          OrderStatus
	Notes           *string
	CreatedAt       time.Time
}

// OrderWithPlate is an order hydrated with the plate it references.
type OrderWithPlate struct {
	Order
	Plate *Plate
}

// NewOrder creates a pending order with business rules applied
func NewOrder(plateID int64, customerName, customerPhone, deliveryAddress string,
	latitude, longitude float64, payment PaymentMethod, totalAmount float64, notes *string) (*Order, error) {
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		if trimmed == "" {
			notes = nil
		} else {
			notes = &trimmed
		}
	}

	order := &Order{
		PlateID:         plateID,
		CustomerName:    strings.TrimSpace(customerName),
		CustomerPhone:   strings.TrimSpace(customerPhone),
		DeliveryAddress: strings.TrimSpace(deliveryAddress),
		Latitude:        latitude,
		Longitude:       longitude,
		PaymentMethod:   payment,
		TotalAmount:     totalAmount,
		Status:          StatusPending,
		Notes:           notes,
		CreatedAt:       Now(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Now is the current UTC time at the microsecond precision Postgres stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Validate applies business validation rules
func (o *Order) Validate() error {
	if o.PlateID <= 0 {
		return fmt.Errorf("%w: plate id is required", ErrValidation)
	}
	if n := utf8.RuneCountInString(o.CustomerName); n < 2 || n > 100 {
		return fmt.Errorf("%w: customer name must be 2-100 characters", ErrValidation)
	}
	if n := utf8.RuneCountInString(o.CustomerPhone); n < 10 || n > 20 {
		return fmt.Errorf("%w: customer phone must be 10-20 characters", ErrValidation)
	}
	if n := utf8.RuneCountInString(o.DeliveryAddress); n < 5 || n > 300 {
		return fmt.Errorf("%w: delivery address must be 5-300 characters", ErrValidation)
	}
	if o.Latitude < -90 || o.Latitude > 90 || o.Longitude < -180 || o.Longitude > 180 {
		return fmt.Errorf("%w: location out of range", ErrValidation)
	}
	if o.PaymentMethod != PaymentCash && o.PaymentMethod != PaymentOnline {
		return fmt.Errorf("%w: payment method must be cash or online", ErrValidation)
	}
	if o.TotalAmount < 0 {
		return fmt.Errorf("%w: total amount must not be negative", ErrValidation)
	}
	return nil
}

// nextStatus is the only forward step allowed from each status.
var nextStatus = map[OrderStatus]OrderStatus{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusDelivered,
}

// CanTransitionTo checks if the order can move one step forward to newStatus
func (o *Order) CanTransitionTo(newStatus OrderStatus) bool {
	next, ok := nextStatus[o.Status]
	return ok && next == newStatus
}

// TransitionTo transitions the order to a new status
func (o *Order) TransitionTo(newStatus OrderStatus) error {
	if !o.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, newStatus)
	}
	o.Status = newStatus
	return nil
}
