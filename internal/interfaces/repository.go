package interfaces

import (
	"context"

	"github.com/YelzhanWeb/plates/internal/domain"
)

// Repository ports. Implementations return domain.ErrNotFound for missing rows.

type IngredientRepository interface {
	ListAll(ctx context.Context) ([]*domain.Ingredient, error)
	ListByType(ctx context.Context, ingredientType string) ([]*domain.Ingredient, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Ingredient, error)
	// SeedIfEmpty inserts items only when the catalog has no rows and reports
	// whether it did. Concurrent callers seed at most once.
	SeedIfEmpty(ctx context.Context, items []*domain.Ingredient) (bool, error)
}

type PlateRepository interface {
	Create(ctx context.Context, plate *domain.Plate) error
	FindByID(ctx context.Context, id int64) (*domain.Plate, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error)
	ListFavoritesByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error)
}

type OrderFilter struct {
	Status *domain.OrderStatus
}

type OrderRepository interface {
	// Create stores the order and its initial status log entry atomically.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	// List returns orders newest first.
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	// UpdateStatus moves the order from one status to another and logs the
	// change. It fails with domain.ErrInvalidStatusTransition when the stored
	// status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, changedBy string) error
	GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.StatusLog, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
