package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type ingredientRepository struct {
	db DB
}

func NewIngredientRepository(db DB) interfaces.IngredientRepository {
	return &ingredientRepository{db: db}
}

const ingredientColumns = `id, name, type, calories, protein, price, icon, color`

func (r *ingredientRepository) ListAll(ctx context.Context) ([]*domain.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients ORDER BY id`
	return r.list(ctx, query)
}

func (r *ingredientRepository) ListByType(ctx context.Context, ingredientType string) ([]*domain.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE type = $1 ORDER BY id`
	return r.list(ctx, query, ingredientType)
}

func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Ingredient, error) {
	found := make(map[int64]*domain.Ingredient, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = ANY($1)`
	items, err := r.list(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		found[item.ID] = item
	}
	return found, nil
}

func (r *ingredientRepository) SeedIfEmpty(ctx context.Context, items []*domain.Ingredient) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent seeders; readers are not blocked.
	if _, err := tx.Exec(ctx, `LOCK TABLE ingredients IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("failed to lock ingredients: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count ingredients: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	query := `
		INSERT INTO ingredients (name, type, calories, protein, price, icon, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	for _, item := range items {
		err := tx.QueryRow(ctx, query,
			item.Name, string(item.Type), item.Calories, item.Protein, item.Price, item.Icon, item.Color,
		).Scan(&item.ID)
		if err != nil {
			return false, fmt.Errorf("failed to insert ingredient %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}

func (r *ingredientRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ingredient, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Ingredient, 0)
	for rows.Next() {
		var (
			item    domain.Ingredient
			itemTyp string
		)
		if err := rows.Scan(&item.ID, &item.Name, &itemTyp, &item.Calories,
			&item.Protein, &item.Price, &item.Icon, &item.Color); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		item.Type = domain.IngredientType(itemTyp)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ingredients: %w", err)
	}
	return items, nil
}
