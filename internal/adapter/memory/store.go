// Package memory keeps every repository in process memory. It backs the
// "memory" database driver and the service and HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

// Store holds all tables behind one lock so cross-table checks stay atomic.
type Store struct {
	mu sync.RWMutex

	ingredients map[int64]domain.Ingredient
	plates      map[int64]domain.Plate
	orders      map[int64]domain.Order
	users       map[int64]domain.User
	statusLog   []domain.StatusLog

	ingredientSeq int64
	plateSeq      int64
	orderSeq      int64
	userSeq       int64
	logSeq        int64
}

func NewStore() *Store {
	return &Store{
		ingredients: make(map[int64]domain.Ingredient),
		plates:      make(map[int64]domain.Plate),
		orders:      make(map[int64]domain.Order),
		users:       make(map[int64]domain.User),
	}
}

func (s *Store) Ingredients() interfaces.IngredientRepository { return &ingredientRepository{s: s} }
func (s *Store) Plates() interfaces.PlateRepository           { return &plateRepository{s: s} }
func (s *Store) Orders() interfaces.OrderRepository           { return &orderRepository{s: s} }
func (s *Store) Users() interfaces.UserRepository             { return &userRepository{s: s} }

type ingredientRepository struct{ s *Store }

func (r *ingredientRepository) ListAll(ctx context.Context) ([]*domain.Ingredient, error) {
	return r.filter(func(domain.Ingredient) bool { return true }), nil
}

func (r *ingredientRepository) ListByType(ctx context.Context, ingredientType string) ([]*domain.Ingredient, error) {
	return r.filter(func(i domain.Ingredient) bool { return string(i.Type) == ingredientType }), nil
}

func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	found := make(map[int64]*domain.Ingredient, len(ids))
	for _, id := range ids {
		if item, ok := r.s.ingredients[id]; ok {
			found[id] = &item
		}
	}
	return found, nil
}

func (r *ingredientRepository) SeedIfEmpty(ctx context.Context, items []*domain.Ingredient) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.ingredients) > 0 {
		return false, nil
	}
	for _, item := range items {
		r.s.ingredientSeq++
		item.ID = r.s.ingredientSeq
		r.s.ingredients[item.ID] = *item
	}
	return true, nil
}

func (r *ingredientRepository) filter(keep func(domain.Ingredient) bool) []*domain.Ingredient {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]*domain.Ingredient, 0, len(r.s.ingredients))
	for _, item := range r.s.ingredients {
		if keep(item) {
			item := item
			items = append(items, &item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

type plateRepository struct{ s *Store }

func (r *plateRepository) Create(ctx context.Context, plate *domain.Plate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if plate.OwnerID != nil {
		if _, ok := r.s.users[*plate.OwnerID]; !ok {
			return domain.ErrUnknownOwner
		}
	}
	r.s.plateSeq++
	plate.ID = r.s.plateSeq
	r.s.plates[plate.ID] = clonePlate(*plate)
	return nil
}

func (r *plateRepository) FindByID(ctx context.Context, id int64) (*domain.Plate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	plate, ok := r.s.plates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := clonePlate(plate)
	return &p, nil
}

func (r *plateRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error) {
	return r.filter(ownerID, false), nil
}

func (r *plateRepository) ListFavoritesByOwner(ctx context.Context, ownerID int64) ([]*domain.Plate, error) {
	return r.filter(ownerID, true), nil
}

func (r *plateRepository) filter(ownerID int64, favoritesOnly bool) []*domain.Plate {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	plates := make([]*domain.Plate, 0)
	for _, plate := range r.s.plates {
		if plate.OwnerID == nil || *plate.OwnerID != ownerID {
			continue
		}
		if favoritesOnly && !plate.IsFavorite {
			continue
		}
		p := clonePlate(plate)
		plates = append(plates, &p)
	}
	sort.Slice(plates, func(i, j int) bool { return plates[i].ID < plates[j].ID })
	return plates
}

func clonePlate(p domain.Plate) domain.Plate {
	p.IngredientIDs = append([]string(nil), p.IngredientIDs...)
	if p.OwnerID != nil {
		owner := *p.OwnerID
		p.OwnerID = &owner
	}
	return p
}

type orderRepository struct{ s *Store }

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.plates[order.PlateID]; !ok {
		return domain.ErrUnknownPlate
	}
	r.s.orderSeq++
	order.ID = r.s.orderSeq
	r.s.orders[order.ID] = cloneOrder(*order)
	r.s.appendLog(order.ID, order.Status, "order-service", order.CreatedAt)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	order = cloneOrder(order)
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]*domain.Order, 0, len(r.s.orders))
	for _, order := range r.s.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		order := cloneOrder(order)
		orders = append(orders, &order)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, changedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if order.Status != from {
		return domain.ErrInvalidStatusTransition
	}
	order.Status = to
	r.s.orders[id] = order
	r.s.appendLog(id, to, changedBy, domain.Now())
	return nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.StatusLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	logs := make([]*domain.StatusLog, 0)
	for _, entry := range r.s.statusLog {
		if entry.OrderID == orderID {
			entry := entry
			logs = append(logs, &entry)
		}
	}
	return logs, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		counts[status] = 0
	}
	for _, order := range r.s.orders {
		counts[order.Status]++
	}
	return counts, nil
}

func cloneOrder(o domain.Order) domain.Order {
	if o.Notes != nil {
		notes := *o.Notes
		o.Notes = &notes
	}
	return o
}

// appendLog must be called with mu held.
func (s *Store) appendLog(orderID int64, status domain.OrderStatus, changedBy string, at time.Time) {
	s.logSeq++
	s.statusLog = append(s.statusLog, domain.StatusLog{
		ID:        s.logSeq,
		OrderID:   orderID,
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: at,
	})
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.s.userSeq++
	user.ID = r.s.userSeq
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}
