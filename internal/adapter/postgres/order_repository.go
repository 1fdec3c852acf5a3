package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, plate_id, customer_name, customer_phone, delivery_address,
	latitude, longitude, payment_method, total_amount, status, notes, created_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (plate_id, customer_name, customer_phone, delivery_address,
		                    latitude, longitude, payment_method, total_amount, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		order.PlateID, order.CustomerName, order.CustomerPhone, order.DeliveryAddress,
		order.Latitude, order.Longitude, string(order.PaymentMethod), order.TotalAmount,
		string(order.Status), order.Notes, order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return domain.ErrUnknownPlate
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	// Log initial status
	if err := logStatus(ctx, tx, order.ID, order.Status, "order-service", order.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "order")
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, changedBy string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: order %d is no longer %s", domain.ErrInvalidStatusTransition, id, from)
	}

	if err := logStatus(ctx, tx, id, to, changedBy, domain.Now()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.StatusLog, error) {
	query := `
		SELECT id, order_id, status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.StatusLog, 0)
	for rows.Next() {
		var (
			log    domain.StatusLog
			status string
		)
		if err := rows.Scan(&log.ID, &log.OrderID, &status, &log.ChangedBy, &log.ChangedAt, &log.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		log.Status = domain.OrderStatus(status)
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status history: %w", err)
	}
	return logs, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[domain.OrderStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order counts: %w", err)
	}
	return counts, nil
}

func logStatus(ctx context.Context, tx Tx, orderID int64, status domain.OrderStatus, changedBy string, at time.Time) error {
	query := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, query, orderID, string(status), changedBy, at); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		order   domain.Order
		payment string
		status  string
	)
	err := row.Scan(
		&order.ID, &order.PlateID, &order.CustomerName, &order.CustomerPhone, &order.DeliveryAddress,
		&order.Latitude, &order.Longitude, &payment, &order.TotalAmount, &status, &order.Notes, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = domain.PaymentMethod(payment)
	order.Status = domain.OrderStatus(status)
	return &order, nil
}
