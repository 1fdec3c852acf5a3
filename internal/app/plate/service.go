package plate

import (
	"context"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

// Recorder receives domain counters. The metrics adapter implements it.
type Recorder interface {
	PlateCreated()
}

type Service struct {
	repo    interfaces.PlateRepository
	users   interfaces.UserRepository
	catalog interfaces.CatalogService
	metrics Recorder
	logger  logger.Logger
}

func NewService(
	repo interfaces.PlateRepository,
	users interfaces.UserRepository,
	catalog interfaces.CatalogService,
	metrics Recorder,
	logger logger.Logger,
) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Service) Create(ctx context.Context, cmd interfaces.CreatePlateCommand) (*domain.Plate, error) {
	if cmd.OwnerID != nil {
		if _, err := s.users.FindByID(ctx, *cmd.OwnerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %d", domain.ErrUnknownOwner, *cmd.OwnerID)
			}
			return nil, err
		}
	}

	items, err := s.catalog.Resolve(ctx, cmd.IngredientIDs)
	if err != nil {
		return nil, err
	}

	plate, err := domain.NewPlate(cmd.Name, cmd.OwnerID, items, cmd.IsFavorite)
	if err != nil {
		return nil, err
	}

	if cmd.Totals != nil && !plate.Totals().Matches(*cmd.Totals) {
		s.logger.Warn("plate_totals_mismatch", "Client totals differ from catalog snapshot", "",
			map[string]interface{}{
				"client_calories": cmd.Totals.Calories,
				"server_calories": plate.TotalCalories,
			})
		return nil, fmt.Errorf("%w: expected %d kcal, %.2f g protein, %.2f price",
			domain.ErrTotalsMismatch, plate.TotalCalories, plate.TotalProtein, plate.TotalPrice)
	}

	if err := s.repo.Create(ctx, plate); err != nil {
		if !errors.Is(err, domain.ErrUnknownOwner) {
			s.logger.Error("db_insert_failed", "Failed to create plate", "", nil, err)
		}
		return nil, err
	}

	s.metrics.PlateCreated()
	s.logger.Debug("plate_created", "Plate saved", "", map[string]interface{}{
		"plate_id":       plate.ID,
		"total_calories": plate.TotalCalories,
	})
	return plate, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Plate, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListFavorites returns only the owner's plates flagged as favorite.
func (s *Service) ListFavorites(ctx context.Context, ownerID int64) ([]*domain.Plate, error) {
	return s.repo.ListFavoritesByOwner(ctx, ownerID)
}
