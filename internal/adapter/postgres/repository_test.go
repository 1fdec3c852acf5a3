package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

func TestIngredientRepository_ListByType(t *testing.T) {
	db := newFakeDB(t, step{
		match: "WHERE type = $1",
		rows: [][]any{
			{int64(1), "Chicken Breast", "protein", 165, 31.0, 0.7, "fas fa-drumstick-bite", "red"},
			{int64(2), "Light Tuna", "protein", 120, 25.0, 0.6, "fas fa-fish", "blue"},
		},
	})
	repo := NewIngredientRepository(db)

	items, err := repo.ListByType(context.Background(), "protein")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.IngredientProtein, items[0].Type)
	assert.Equal(t, "Light Tuna", items[1].Name)
	assert.Equal(t, []any{"protein"}, db.calls[0].args)
	db.assertDone()
}

func TestIngredientRepository_FindByIDs(t *testing.T) {
	t.Run("empty input skips the query", func(t *testing.T) {
		db := newFakeDB(t)
		found, err := NewIngredientRepository(db).FindByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, found)
		assert.Empty(t, db.calls)
	})

	t.Run("indexes rows by id", func(t *testing.T) {
		db := newFakeDB(t, step{
			match: "id = ANY($1)",
			rows:  [][]any{{int64(3), "Brown Rice", "carbohydrate", 215, 5.0, 0.4, "fas fa-seedling", "amber"}},
		})
		found, err := NewIngredientRepository(db).FindByIDs(context.Background(), []int64{3, 42})
		require.NoError(t, err)
		require.Contains(t, found, int64(3))
		assert.NotContains(t, found, int64(42))
		assert.Equal(t, 215, found[3].Calories)
	})
}

func TestIngredientRepository_SeedIfEmpty(t *testing.T) {
	items := func() []*domain.Ingredient {
		return []*domain.Ingredient{
			{Name: "Chicken Breast", Type: domain.IngredientProtein, Calories: 165, Protein: 31, Price: 0.7},
			{Name: "Green Salad", Type: domain.IngredientVegetable, Calories: 25, Protein: 1, Price: 0.2},
		}
	}

	t.Run("populated catalog is left alone", func(t *testing.T) {
		db := newFakeDB(t,
			step{match: "LOCK TABLE ingredients"},
			step{match: "SELECT COUNT(*)", rows: [][]any{{6}}},
		)
		seeded, err := NewIngredientRepository(db).SeedIfEmpty(context.Background(), items())
		require.NoError(t, err)
		assert.False(t, seeded)
		assert.False(t, db.committed)
		assert.True(t, db.rolledBack)
		db.assertDone()
	})

	t.Run("empty catalog is seeded in one transaction", func(t *testing.T) {
		db := newFakeDB(t,
			step{match: "LOCK TABLE ingredients"},
			step{match: "SELECT COUNT(*)", rows: [][]any{{0}}},
			step{match: "INSERT INTO ingredients", rows: [][]any{{int64(1)}}},
			step{match: "INSERT INTO ingredients", rows: [][]any{{int64(2)}}},
		)
		seed := items()
		seeded, err := NewIngredientRepository(db).SeedIfEmpty(context.Background(), seed)
		require.NoError(t, err)
		assert.True(t, seeded)
		assert.True(t, db.committed)
		assert.Equal(t, int64(1), seed[0].ID)
		assert.Equal(t, int64(2), seed[1].ID)
		db.assertDone()
	})
}

func TestPlateRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create returns generated id", func(t *testing.T) {
		db := newFakeDB(t, step{match: "INSERT INTO plates", rows: [][]any{{int64(7)}}})
		plate := &domain.Plate{Name: "Lunch", IngredientIDs: []string{"1", "3"}, TotalCalories: 380}
		require.NoError(t, NewPlateRepository(db).Create(ctx, plate))
		assert.Equal(t, int64(7), plate.ID)
	})

	t.Run("create with unknown owner", func(t *testing.T) {
		db := newFakeDB(t, step{
			match: "INSERT INTO plates",
			err:   &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "plates_user_id_fkey"},
		})
		owner := int64(99)
		err := NewPlateRepository(db).Create(ctx, &domain.Plate{Name: "x", OwnerID: &owner})
		assert.ErrorIs(t, err, domain.ErrUnknownOwner)
	})

	t.Run("find missing plate", func(t *testing.T) {
		db := newFakeDB(t, step{match: "FROM plates WHERE id = $1", err: pgx.ErrNoRows})
		_, err := NewPlateRepository(db).FindByID(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("find scans nullable owner", func(t *testing.T) {
		db := newFakeDB(t, step{
			match: "FROM plates WHERE id = $1",
			rows:  [][]any{{int64(1), int64(5), "Lunch", []string{"1", "3"}, 380, 36.0, 1.1, true}},
		})
		plate, err := NewPlateRepository(db).FindByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, plate.OwnerID)
		assert.Equal(t, int64(5), *plate.OwnerID)
		assert.Equal(t, []string{"1", "3"}, plate.IngredientIDs)
		assert.True(t, plate.IsFavorite)
	})

	t.Run("favorites filter on is_favorite", func(t *testing.T) {
		db := newFakeDB(t, step{match: "AND is_favorite"})
		plates, err := NewPlateRepository(db).ListFavoritesByOwner(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, plates)
		assert.Equal(t, []any{int64(5)}, db.calls[0].args)
	})
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := newFakeDB(t, step{
		match: "INSERT INTO users",
		err:   &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_username_key"},
	})
	err := NewUserRepository(db).Create(context.Background(), &domain.User{Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestOrderRepository_Create(t *testing.T) {
	db := newFakeDB(t,
		step{match: "INSERT INTO orders", rows: [][]any{{int64(11)}}},
		step{match: "INSERT INTO order_status_log", affected: 1},
	)
	order := &domain.Order{
		PlateID:       1,
		PaymentMethod: domain.PaymentCash,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	require.NoError(t, NewOrderRepository(db).Create(context.Background(), order))
	assert.Equal(t, int64(11), order.ID)
	assert.True(t, db.committed)
	assert.Equal(t, "pending", db.calls[1].args[1])
	db.assertDone()
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("moves status and logs it", func(t *testing.T) {
		db := newFakeDB(t,
			step{match: "UPDATE orders SET status", affected: 1},
			step{match: "INSERT INTO order_status_log", affected: 1},
		)
		err := NewOrderRepository(db).UpdateStatus(ctx, 1, domain.StatusPending, domain.StatusConfirmed, "api")
		require.NoError(t, err)
		assert.True(t, db.committed)
		assert.Equal(t, []any{"confirmed", int64(1), "pending"}, db.calls[0].args)
	})

	t.Run("stale status is rejected", func(t *testing.T) {
		db := newFakeDB(t,
			step{match: "UPDATE orders SET status"},
			step{match: "SELECT EXISTS", rows: [][]any{{true}}},
		)
		err := NewOrderRepository(db).UpdateStatus(ctx, 1, domain.StatusPending, domain.StatusConfirmed, "api")
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
		assert.False(t, db.committed)
	})

	t.Run("missing order", func(t *testing.T) {
		db := newFakeDB(t,
			step{match: "UPDATE orders SET status"},
			step{match: "SELECT EXISTS", rows: [][]any{{false}}},
		)
		err := NewOrderRepository(db).UpdateStatus(ctx, 404, domain.StatusPending, domain.StatusConfirmed, "api")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrderRepository_List(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	row := []any{int64(2), int64(1), "Jane Doe", "+15551234567", "1 Main Street",
		43.2, 76.9, "online", 1.1, "confirmed", nil, created}

	t.Run("status filter", func(t *testing.T) {
		db := newFakeDB(t, step{match: "WHERE status = $1", rows: [][]any{row}})
		status := domain.StatusConfirmed
		orders, err := NewOrderRepository(db).List(context.Background(), interfaces.OrderFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, domain.PaymentOnline, orders[0].PaymentMethod)
		assert.Equal(t, domain.StatusConfirmed, orders[0].Status)
		assert.Nil(t, orders[0].Notes)
		assert.Equal(t, created, orders[0].CreatedAt)
	})

	t.Run("no filter", func(t *testing.T) {
		db := newFakeDB(t, step{match: "ORDER BY created_at DESC"})
		orders, err := NewOrderRepository(db).List(context.Background(), interfaces.OrderFilter{})
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.NotContains(t, db.calls[0].sql, "WHERE")
	})
}

func TestOrderRepository_CountByStatus(t *testing.T) {
	db := newFakeDB(t, step{
		match: "GROUP BY status",
		rows:  [][]any{{"pending", 3}, {"delivered", 1}},
	})
	counts, err := NewOrderRepository(db).CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[domain.OrderStatus]int{
		domain.StatusPending:   3,
		domain.StatusConfirmed: 0,
		domain.StatusPreparing: 0,
		domain.StatusDelivered: 1,
	}, counts)
}
