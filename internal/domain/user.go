package domain

import "time"

// User only matters as the optional owner of a plate.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
