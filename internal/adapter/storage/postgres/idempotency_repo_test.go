package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"festival-settlement/internal/core/domain"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	log := &domain.IdempotencyLog{
		Key:          domain.BuildSettlementKey(uuid.New(), "ref-001"),
		OrderID:      uuid.New(),
		ResponseJSON: []byte(`{"order":{}}`),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_logs").
		WithArgs(log.Key, log.OrderID, log.ResponseJSON, log.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, log)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Create_DuplicateKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	log := &domain.IdempotencyLog{
		Key:          domain.BuildSettlementKey(uuid.New(), "ref-001"),
		OrderID:      uuid.New(),
		ResponseJSON: []byte(`{"order":{}}`),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	// A concurrent settlement on the same reference committed its log first.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_logs").
		WithArgs(log.Key, log.OrderID, log.ResponseJSON, log.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, log)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrDuplicateSettlement().Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	key := domain.BuildSettlementKey(uuid.New(), "ref-001")
	orderID := uuid.New()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM idempotency_logs WHERE key").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"key", "order_id", "response_json", "created_at"}).
			AddRow(key, orderID, []byte(`{"order":{}}`), createdAt))

	result, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, orderID, result.OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get_Unseen(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	key := domain.BuildSettlementKey(uuid.New(), "never-seen")

	mock.ExpectQuery("SELECT .+ FROM idempotency_logs WHERE key").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"key", "order_id", "response_json", "created_at"}))

	result, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
