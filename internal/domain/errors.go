package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation failed")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrUnknownIngredient       = errors.New("unknown ingredient")
	ErrUnknownPlate            = errors.New("unknown plate")
	ErrUnknownOwner            = errors.New("unknown owner")
	ErrTotalsMismatch          = errors.New("totals do not match ingredients")
	ErrAmountMismatch          = errors.New("total amount does not match plate price")
	ErrUsernameTaken           = errors.New("username already taken")
)
