package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"festival-settlement/internal/core/domain"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(accountID uuid.UUID) *domain.Wallet {
	w := domain.NewPersonalWallet(accountID, time.Now().UTC().Truncate(time.Microsecond))
	w.Balance = 100_000
	return w
}

func walletTestColumns() []string {
	return []string{"id", "kind", "account_id", "festival_id", "booth_id", "balance", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletTestColumns()).AddRow(
		w.ID, w.Kind, w.AccountID, w.FestivalID, w.BoothID,
		w.Balance, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectExec(`INSERT INTO wallets (?s).*ON CONFLICT DO NOTHING`).
		WithArgs(w.ID, w.Kind, w.AccountID, w.FestivalID, w.BoothID,
			w.Balance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Create_OwnerAlreadyExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	// A concurrent first touch already inserted a wallet for this owner; the
	// conflict clause swallows the insert and no error surfaces.
	mock.ExpectExec(`INSERT INTO wallets (?s).*ON CONFLICT DO NOTHING`).
		WithArgs(w.ID, w.Kind, w.AccountID, w.FestivalID, w.BoothID,
			w.Balance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = repo.Create(context.Background(), w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id").
		WithArgs(w.ID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, int64(100_000), result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetPersonal_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	accountID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE kind .+ AND account_id").
		WithArgs(domain.WalletKindPersonal, accountID).
		WillReturnRows(pgxmock.NewRows(walletTestColumns()))

	result, err := repo.GetPersonal(context.Background(), accountID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetFestival(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	accountID := uuid.New()
	festivalID := uuid.New()
	w := domain.NewFestivalWallet(accountID, festivalID, time.Now().UTC().Truncate(time.Microsecond))
	w.Balance = 50_000

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE kind .+ AND account_id .+ AND festival_id").
		WithArgs(domain.WalletKindFestival, accountID, festivalID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetFestival(context.Background(), accountID, festivalID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.WalletKindFestival, result.Kind)
	assert.Equal(t, festivalID, *result.FestivalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(w.ID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ApplyDelta(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance = balance").
		WithArgs(int64(-45_000), walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ApplyDelta(context.Background(), tx, walletID, -45_000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ApplyDelta_Overdraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	// The guard clause matches no row when the delta would go negative.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance = balance").
		WithArgs(int64(-999_999), walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ApplyDelta(context.Background(), tx, walletID, -999_999)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrInsufficientBalance().Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
