package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type plateRepository struct {
	db DB
}

func NewPlateRepository(db DB) interfaces.PlateRepository {
	return &plateRepository{db: db}
}

const plateColumns = `id, user_id, name, ingredient_ids, total_calories, total_protein, total_price, is_favorite`

func (r *plateRepository) Create(ctx context.Context, plate *domain.Plate) error {
	query := `
		INSERT INTO plates (user_id, name, ingredient_ids, total_calories, total_protein, total_price, is_favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		plate.OwnerID, plate.Name, plate.IngredientIDs,
		plate.TotalCalories, plate.TotalProtein, plate.TotalPrice, plate.IsFavorite,
	).Scan(&plate.ID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return domain.ErrUnknownOwner
		}
		return fmt.Errorf("failed to insert plate: %w", err)
	}
	return nil
}

func (r *plateRepository) FindByID(ctx context.Context, id int64) (*domain.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE id = $1`

	var plate domain.Plate
	err := r.db.QueryRow(ctx, query, id).Scan(
		&plate.ID, &plate.OwnerID, &plate.Name, &plate.IngredientIDs,
		&plate.TotalCalories, &plate.TotalProtein, &plate.TotalPrice, &plate.IsFavorite,
	)
	if err != nil {
		return nil, notFound(err, "plate")
	}
	return &plate, nil
}

func (r *plateRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE user_id = $1 ORDER BY id`
	return r.list(ctx, query, ownerID)
}

func (r *plateRepository) ListFavoritesByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE user_id = $1 AND is_favorite ORDER BY id`
	return r.list(ctx, query, ownerID)
}

func (r *plateRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Plate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plates: %w", err)
	}
	defer rows.Close()

	plates := make([]*domain.Plate, 0)
	for rows.Next() {
		var plate domain.Plate
		if err := rows.Scan(
			&plate.ID, &plate.OwnerID, &plate.Name, &plate.IngredientIDs,
			&plate.TotalCalories, &plate.TotalProtein, &plate.TotalPrice, &plate.IsFavorite,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plate: %w", err)
		}
		plates = append(plates, &plate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plates: %w", err)
	}
	return plates, nil
}
