package http

import (
	"time"

	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

// Requests

type CreatePlateRequest struct {
	UserID        *int64   `json:"userId" validate:"omitempty,gt=0"`
	Name          string   `json:"name" validate:"required,max=200"`
	IngredientIDs []string `json:"ingredientIds" validate:"required,min=1,max=20,dive,required"`
	TotalCalories *int     `json:"totalCalories" validate:"omitempty,gte=0"`
	TotalProtein  *float64 `json:"totalProtein" validate:"omitempty,gte=0"`
	TotalPrice    *float64 `json:"totalPrice" validate:"omitempty,gte=0"`
	IsFavorite    bool     `json:"isFavorite"`
}

// totals returns the client-side aggregate when all three fields were sent.
func (r CreatePlateRequest) totals() (*domain.Totals, []ValidationError) {
	sent := 0
	for _, present := range []bool{r.TotalCalories != nil, r.TotalProtein != nil, r.TotalPrice != nil} {
		if present {
			sent++
		}
	}
	switch sent {
	case 0:
		return nil, nil
	case 3:
		return &domain.Totals{Calories: *r.TotalCalories, Protein: *r.TotalProtein, Price: *r.TotalPrice}, nil
	default:
		return nil, []ValidationError{{
			Field:   "totalCalories",
			Message: "totalCalories, totalProtein and totalPrice must be sent together",
		}}
	}
}

type CreateOrderRequest struct {
	PlateID         int64    `json:"plateId" validate:"required,gt=0"`
	CustomerName    string   `json:"customerName" validate:"required,min=2,max=100"`
	CustomerPhone   string   `json:"customerPhone" validate:"required,min=10,max=20"`
	DeliveryAddress string   `json:"deliveryAddress" validate:"required,min=5,max=300"`
	Latitude        *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	PaymentMethod   string   `json:"paymentMethod" validate:"required,oneof=cash online"`
	TotalAmount     *float64 `json:"totalAmount" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes" validate:"omitempty,max=1000"`
}

func (r CreateOrderRequest) command() interfaces.CreateOrderCommand {
	return interfaces.CreateOrderCommand{
		PlateID:         r.PlateID,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		DeliveryAddress: r.DeliveryAddress,
		Latitude:        *r.Latitude,
		Longitude:       *r.Longitude,
		PaymentMethod:   r.PaymentMethod,
		TotalAmount:     r.TotalAmount,
		Notes:           r.Notes,
	}
}

type UpdateStatusRequest struct {
	Status    string `json:"status" validate:"required"`
	ChangedBy string `json:"changedBy" validate:"max=100"`
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type NutritionPreviewRequest struct {
	IngredientIDs []string `json:"ingredientIds" validate:"max=20,dive,required"`
}

// Responses

type IngredientResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Price    float64 `json:"price"`
	Icon     string  `json:"icon"`
	Color    string  `json:"color"`
}

type PlateResponse struct {
	ID            int64    `json:"id"`
	UserID        *int64   `json:"userId"`
	Name          string   `json:"name"`
	IngredientIDs []string `json:"ingredientIds"`
	TotalCalories int      `json:"totalCalories"`
	TotalProtein  float64  `json:"totalProtein"`
	TotalPrice    float64  `json:"totalPrice"`
	IsFavorite    bool     `json:"isFavorite"`
}

type OrderResponse struct {
	ID              int64     `json:"id"`
	PlateID         int64     `json:"plateId"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	DeliveryAddress string    `json:"deliveryAddress"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	PaymentMethod   string    `json:"paymentMethod"`
	TotalAmount     float64   `json:"totalAmount"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}

type OrderWithPlateResponse struct {
	OrderResponse
	Plate PlateResponse `json:"plate"`
}

type StatusLogResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"orderId"`
	Status    string    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
	Notes     *string   `json:"notes"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type TotalsResponse struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Price    float64 `json:"price"`
}

type ProgressResponse struct {
	CaloriesPercent float64 `json:"caloriesPercent"`
	ProteinPercent  float64 `json:"proteinPercent"`
}

type TargetResponse struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
}

type NutritionPreviewResponse struct {
	Ingredients []IngredientResponse `json:"ingredients"`
	Totals      TotalsResponse       `json:"totals"`
	Progress    ProgressResponse     `json:"progress"`
	Target      TargetResponse       `json:"target"`
}

// Mapping

func toIngredientResponse(i *domain.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:       i.ID,
		Name:     i.Name,
		Type:     string(i.Type),
		Calories: i.Calories,
		Protein:  i.Protein,
		Price:    i.Price,
		Icon:     i.Icon,
		Color:    i.Color,
	}
}

func toIngredientResponses(items []*domain.Ingredient) []IngredientResponse {
	out := make([]IngredientResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toIngredientResponse(item))
	}
	return out
}

func toPlateResponse(p *domain.Plate) PlateResponse {
	ids := p.IngredientIDs
	if ids == nil {
		ids = []string{}
	}
	return PlateResponse{
		ID:            p.ID,
		UserID:        p.OwnerID,
		Name:          p.Name,
		IngredientIDs: ids,
		TotalCalories: p.TotalCalories,
		TotalProtein:  p.TotalProtein,
		TotalPrice:    p.TotalPrice,
		IsFavorite:    p.IsFavorite,
	}
}

func toPlateResponses(plates []*domain.Plate) []PlateResponse {
	out := make([]PlateResponse, 0, len(plates))
	for _, p := range plates {
		out = append(out, toPlateResponse(p))
	}
	return out
}

func toOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		PlateID:         o.PlateID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		DeliveryAddress: o.DeliveryAddress,
		Latitude:        o.Latitude,
		Longitude:       o.Longitude,
		PaymentMethod:   string(o.PaymentMethod),
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
	}
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toStatusLogResponses(logs []*domain.StatusLog) []StatusLogResponse {
	out := make([]StatusLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, StatusLogResponse{
			ID:        l.ID,
			OrderID:   l.OrderID,
			Status:    string(l.Status),
			ChangedBy: l.ChangedBy,
			ChangedAt: l.ChangedAt,
			Notes:     l.Notes,
		})
	}
	return out
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func toNutritionPreviewResponse(p *interfaces.NutritionPreview) NutritionPreviewResponse {
	items := make([]IngredientResponse, 0, len(p.Ingredients))
	for i := range p.Ingredients {
		items = append(items, toIngredientResponse(&p.Ingredients[i]))
	}
	return NutritionPreviewResponse{
		Ingredients: items,
		Totals:      TotalsResponse{Calories: p.Totals.Calories, Protein: p.Totals.Protein, Price: p.Totals.Price},
		Progress:    ProgressResponse{CaloriesPercent: p.Progress.CaloriesPercent, ProteinPercent: p.Progress.ProteinPercent},
		Target:      TargetResponse{Calories: p.Target.Calories, Protein: p.Target.Protein},
	}
}
