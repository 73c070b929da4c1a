package postgres

import (
	"context"
	"errors"
	"fmt"

	"festival-settlement/internal/core/domain"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, kind, account_id, festival_id, booth_id, balance, created_at, updated_at`

// Create inserts a new wallet. Partial unique indexes per kind (personal on
// account_id, festival on account_id + festival_id, booth on booth_id) make
// the owner key authoritative: when concurrent first touches race, DO NOTHING
// drops all but one insert and callers re-read to converge on the surviving
// row.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, kind, account_id, festival_id, booth_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.Kind, w.AccountID, w.FestivalID, w.BoothID,
		w.Balance, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, id), "get wallet by id")
}

// GetPersonal fetches an account's personal wallet.
func (r *WalletRepo) GetPersonal(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE kind = $1 AND account_id = $2`
	return scanWallet(r.pool.QueryRow(ctx, query, domain.WalletKindPersonal, accountID), "get personal wallet")
}

// GetFestival fetches the sub-wallet scoped to one (account, festival) pair.
func (r *WalletRepo) GetFestival(ctx context.Context, accountID, festivalID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE kind = $1 AND account_id = $2 AND festival_id = $3`
	return scanWallet(r.pool.QueryRow(ctx, query, domain.WalletKindFestival, accountID, festivalID), "get festival wallet")
}

// GetBooth fetches a booth's revenue wallet.
func (r *WalletRepo) GetBooth(ctx context.Context, boothID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE kind = $1 AND booth_id = $2`
	return scanWallet(r.pool.QueryRow(ctx, query, domain.WalletKindBooth, boothID), "get booth wallet")
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, id), "get wallet for update")
}

// ApplyDelta adjusts a wallet balance by a signed amount within a
// transaction. The WHERE clause rejects any delta that would drive the
// balance negative, so the database is the final guard against overdrafts.
func (r *WalletRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND balance + $1 >= 0`

	tag, err := tx.Exec(ctx, query, delta, walletID)
	if err != nil {
		return fmt.Errorf("apply wallet delta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrInsufficientBalance()
	}
	return nil
}

func scanWallet(row pgx.Row, op string) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.Kind, &w.AccountID, &w.FestivalID, &w.BoothID,
		&w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}
