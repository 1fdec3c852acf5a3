package nutrition

import (
	"context"

	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

// Service computes the same totals a plate would be saved with, without saving.
type Service struct {
	catalog interfaces.CatalogService
	target  domain.Target
}

func NewService(catalog interfaces.CatalogService, target domain.Target) *Service {
	return &Service{catalog: catalog, target: target}
}

func (s *Service) Preview(ctx context.Context, ingredientIDs []string) (*interfaces.NutritionPreview, error) {
	items, err := s.catalog.Resolve(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}

	totals := domain.Aggregate(items)
	return &interfaces.NutritionPreview{
		Ingredients: items,
		Totals:      totals,
		Progress:    totals.Progress(s.target),
		Target:      s.target,
	}, nil
}
