package interfaces

import (
	"context"

	"github.com/YelzhanWeb/plates/internal/domain"
)

// Service ports (business logic)

type CatalogService interface {
	Seed(ctx context.Context) error
	ListAll(ctx context.Context) ([]*domain.Ingredient, error)
	ListByType(ctx context.Context, ingredientType string) ([]*domain.Ingredient, error)
	Resolve(ctx context.Context, ids []string) ([]domain.Ingredient, error)
}

type NutritionService interface {
	Preview(ctx context.Context, ingredientIDs []string) (*NutritionPreview, error)
}

type PlateService interface {
	Create(ctx context.Context, cmd CreatePlateCommand) (*domain.Plate, error)
	Get(ctx context.Context, id int64) (*domain.Plate, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error)
	ListFavorites(ctx context.Context, ownerID int64) ([]*domain.Plate, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.OrderWithPlate, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status, changedBy string) (*domain.Order, error)
	GetHistory(ctx context.Context, id int64) ([]*domain.StatusLog, error)
	GetStats(ctx context.Context) (map[domain.OrderStatus]int, error)
}

type UserService interface {
	Register(ctx context.Context, cmd RegisterUserCommand) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
}

// Commands

type CreatePlateCommand struct {
	OwnerID       *int64
	Name          string
	IngredientIDs []string
	// Totals is what the client computed; nil means trust the server snapshot.
	Totals     *domain.Totals
	IsFavorite bool
}

type CreateOrderCommand struct {
	PlateID         int64
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	Latitude        float64
	Longitude       float64
	PaymentMethod   string
	TotalAmount     *float64
	Notes           *string
}

type RegisterUserCommand struct {
	Username string
	Password string
}

type NutritionPreview struct {
	Ingredients []domain.Ingredient
	Totals      domain.Totals
	Progress    domain.Progress
	Target      domain.Target
}
