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

func newTestWithdrawal() *domain.CommissionWithdrawal {
	return &domain.CommissionWithdrawal{
		ID:          uuid.New(),
		FestivalID:  uuid.New(),
		AccountID:   uuid.New(),
		RatePercent: 15,
		Amount:      300_000,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestCommissionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCommissionRepo(mock)
	w := newTestWithdrawal()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO commission_withdrawals").
		WithArgs(w.ID, w.FestivalID, w.AccountID, w.RatePercent, w.Amount, w.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommissionRepo_Create_DuplicateFestival(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCommissionRepo(mock)
	w := newTestWithdrawal()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO commission_withdrawals").
		WithArgs(w.ID, w.FestivalID, w.AccountID, w.RatePercent, w.Amount, w.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, w)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrCommissionAlreadyWithdrawn().Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommissionRepo_GetByFestival_NotWithdrawn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCommissionRepo(mock)
	festivalID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM commission_withdrawals WHERE festival_id").
		WithArgs(festivalID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "festival_id", "account_id", "rate_percent", "amount", "created_at"}))

	result, err := repo.GetByFestival(context.Background(), festivalID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommissionRepo_GetByFestival(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCommissionRepo(mock)
	w := newTestWithdrawal()

	mock.ExpectQuery("SELECT .+ FROM commission_withdrawals WHERE festival_id").
		WithArgs(w.FestivalID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "festival_id", "account_id", "rate_percent", "amount", "created_at"}).
			AddRow(w.ID, w.FestivalID, w.AccountID, w.RatePercent, w.Amount, w.CreatedAt))

	result, err := repo.GetByFestival(context.Background(), w.FestivalID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(300_000), result.Amount)
	assert.Equal(t, 15, result.RatePercent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
