package postgres

import (
	"context"
	"testing"
	"time"

	"festival-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder() *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		ReferenceID: "ref-001",
		AccountID:   uuid.New(),
		BoothID:     uuid.New(),
		TotalAmount: 45_000,
		Status:      domain.OrderStatusCompleted,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func orderTestColumns() []string {
	return []string{"id", "reference_id", "account_id", "booth_id", "total_amount", "notes", "status", "created_at", "settled_at"}
}

func orderRow(o *domain.Order) *pgxmock.Rows {
	return pgxmock.NewRows(orderTestColumns()).AddRow(
		o.ID, o.ReferenceID, o.AccountID, o.BoothID, o.TotalAmount,
		o.Notes, o.Status, o.CreatedAt, o.SettledAt,
	)
}

func TestOrderRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, o.ReferenceID, o.AccountID, o.BoothID, o.TotalAmount,
			o.Notes, o.Status, o.CreatedAt, o.SettledAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CreateItems(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	orderID := uuid.New()
	items := []domain.OrderItem{
		{ID: uuid.New(), OrderID: orderID, MenuItemID: uuid.New(), Quantity: 2, UnitPrice: 15_000},
		{ID: uuid.New(), OrderID: orderID, MenuItemID: uuid.New(), Quantity: 1, UnitPrice: 15_000},
	}

	mock.ExpectBegin()
	for _, item := range items {
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(item.ID, item.OrderID, item.MenuItemID, item.Quantity, item.UnitPrice).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.CreateItems(context.Background(), tx, items)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE account_id .+ AND reference_id").
		WithArgs(o.AccountID, o.ReferenceID).
		WillReturnRows(orderRow(o))

	result, err := repo.GetByReference(context.Background(), o.AccountID, o.ReferenceID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(orderTestColumns()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CompleteIfPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.OrderStatusCompleted, id, domain.OrderStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	done, err := repo.CompleteIfPending(context.Background(), tx, id)
	require.NoError(t, err)
	assert.True(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CompleteIfPending_AlreadyCompleted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.OrderStatusCompleted, id, domain.OrderStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	done, err := repo.CompleteIfPending(context.Background(), tx, id)
	require.NoError(t, err)
	assert.False(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}
