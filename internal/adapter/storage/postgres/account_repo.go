package postgres

import (
	"context"
	"errors"
	"fmt"

	"festival-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `id, email, name, password_hash, role, bank_name, bank_number, created_at, updated_at`

// Create inserts an account.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, email, name, password_hash, role, bank_name, bank_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Email, a.Name, a.PasswordHash, a.Role,
		a.BankName, a.BankNumber, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by its UUID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id), "get account by id")
}

// GetByEmail fetches an account by email. Emails are stored lowercased.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email), "get account by email")
}

// UpdateBankDetails stores the bank name and the already-encrypted account
// number.
func (r *AccountRepo) UpdateBankDetails(ctx context.Context, id uuid.UUID, bankName, encryptedNumber string) error {
	query := `UPDATE accounts SET bank_name = $1, bank_number = $2, updated_at = NOW() WHERE id = $3`

	_, err := r.pool.Exec(ctx, query, bankName, encryptedNumber, id)
	if err != nil {
		return fmt.Errorf("update bank details: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row, op string) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role,
		&a.BankName, &a.BankNumber, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}
