package postgres

import (
	"context"
	"errors"
	"fmt"

	"festival-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, reference_id, account_id, booth_id, total_amount, notes, status, created_at, settled_at`

// Create inserts an order within a database transaction.
func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	query := `INSERT INTO orders (id, reference_id, account_id, booth_id, total_amount, notes, status, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		o.ID, o.ReferenceID, o.AccountID, o.BoothID, o.TotalAmount,
		o.Notes, o.Status, o.CreatedAt, o.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItems inserts the order's items within a database transaction.
func (r *OrderRepo) CreateItems(ctx context.Context, tx pgx.Tx, items []domain.OrderItem) error {
	query := `INSERT INTO order_items (id, order_id, menu_item_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID, item.OrderID, item.MenuItemID, item.Quantity, item.UnitPrice,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID fetches an order by its UUID.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id), "get order by id")
}

// GetByReference fetches an order by its client-supplied reference.
func (r *OrderRepo) GetByReference(ctx context.Context, accountID uuid.UUID, referenceID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE account_id = $1 AND reference_id = $2`
	return scanOrder(r.pool.QueryRow(ctx, query, accountID, referenceID), "get order by reference")
}

// ListItems fetches the items of an order.
func (r *OrderRepo) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, menu_item_id, quantity, unit_price FROM order_items WHERE order_id = $1`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

// CompleteIfPending flips PENDING -> COMPLETED within a transaction.
// Returns false when the order was not pending, so a replayed gateway
// return cannot settle twice.
func (r *OrderRepo) CompleteIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE orders SET status = $1, settled_at = NOW() WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, domain.OrderStatusCompleted, id, domain.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("complete order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.Row, op string) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.ReferenceID, &o.AccountID, &o.BoothID, &o.TotalAmount,
		&o.Notes, &o.Status, &o.CreatedAt, &o.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}
