package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Plate is a named snapshot of chosen ingredients. Totals are computed once
// at creation and never recomputed.
type Plate struct {
	ID            int64
	OwnerID       *int64
	Name          string
	IngredientIDs []string
	TotalCalories int
	TotalProtein  float64
	TotalPrice    float64
	IsFavorite    bool
}

const (
	maxPlateName        = 200
	maxPlateIngredients = 20
)

// NewPlate builds a plate from already resolved ingredients
func NewPlate(name string, ownerID *int64, ingredients []Ingredient, isFavorite bool) (*Plate, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxPlateName {
		return nil, fmt.Errorf("%w: plate name must be 1-%d characters", ErrValidation, maxPlateName)
	}
	if len(ingredients) == 0 || len(ingredients) > maxPlateIngredients {
		return nil, fmt.Errorf("%w: plate must have 1-%d ingredients", ErrValidation, maxPlateIngredients)
	}

	ids := make([]string, len(ingredients))
	for i, ing := range ingredients {
		ids[i] = strconv.FormatInt(ing.ID, 10)
	}

	totals := Aggregate(ingredients)
	return &Plate{
		OwnerID:       ownerID,
		Name:          name,
		IngredientIDs: ids,
		TotalCalories: totals.Calories,
		TotalProtein:  totals.Protein,
		TotalPrice:    totals.Price,
		IsFavorite:    isFavorite,
	}, nil
}

func (p *Plate) Totals() Totals {
	return Totals{Calories: p.TotalCalories, Protein: p.TotalProtein, Price: p.TotalPrice}
}
