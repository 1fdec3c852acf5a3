package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type Service struct {
	repo   interfaces.IngredientRepository
	logger logger.Logger
}

func NewService(repo interfaces.IngredientRepository, logger logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Builtin returns the six catalog entries in seed order; the order fixes ids 1-6.
func Builtin() []*domain.Ingredient {
	return []*domain.Ingredient{
		{Name: "Chicken Breast", Type: domain.IngredientProtein, Calories: 165, Protein: 31, Price: 0.7, Icon: "fas fa-drumstick-bite", Color: "red"},
		{Name: "Light Tuna", Type: domain.IngredientProtein, Calories: 120, Protein: 25, Price: 0.6, Icon: "fas fa-fish", Color: "blue"},
		{Name: "Brown Rice", Type: domain.IngredientCarbohydrate, Calories: 215, Protein: 5, Price: 0.4, Icon: "fas fa-seedling", Color: "amber"},
		{Name: "Boiled Potato", Type: domain.IngredientCarbohydrate, Calories: 130, Protein: 3, Price: 0.3, Icon: "fas fa-cookie-bite", Color: "orange"},
		{Name: "Green Salad", Type: domain.IngredientVegetable, Calories: 25, Protein: 1, Price: 0.2, Icon: "fas fa-leaf", Color: "green"},
		{Name: "Diet Sauce", Type: domain.IngredientSauce, Calories: 40, Protein: 0, Price: 0.2, Icon: "fas fa-tint", Color: "purple"},
	}
}

// Seed fills an empty catalog. Safe to call on every start.
func (s *Service) Seed(ctx context.Context) error {
	seeded, err := s.repo.SeedIfEmpty(ctx, Builtin())
	if err != nil {
		s.logger.Error("catalog_seed_failed", "Failed to seed ingredient catalog", "", nil, err)
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	if seeded {
		s.logger.Info("catalog_seeded", "Ingredient catalog seeded", "", map[string]interface{}{"count": len(Builtin())})
	} else {
		s.logger.Debug("catalog_seed_skipped", "Ingredient catalog already populated", "", nil)
	}
	return nil
}

func (s *Service) ListAll(ctx context.Context) ([]*domain.Ingredient, error) {
	return s.repo.ListAll(ctx)
}

// ListByType matches the type exactly. An unknown type yields an empty list.
func (s *Service) ListByType(ctx context.Context, ingredientType string) ([]*domain.Ingredient, error) {
	return s.repo.ListByType(ctx, ingredientType)
}

// Resolve maps ids to ingredients keeping input order and duplicates.
func (s *Service) Resolve(ctx context.Context, ids []string) ([]domain.Ingredient, error) {
	parsed := make([]int64, len(ids))
	for i, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownIngredient, raw)
		}
		parsed[i] = id
	}

	found, err := s.repo.FindByIDs(ctx, parsed)
	if err != nil {
		return nil, err
	}

	resolved := make([]domain.Ingredient, len(parsed))
	for i, id := range parsed {
		item, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", domain.ErrUnknownIngredient, id)
		}
		resolved[i] = *item
	}
	return resolved, nil
}
