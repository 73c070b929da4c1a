package postgres

import (
	"context"
	"fmt"

	"festival-settlement/internal/core/domain"
)

// BankRepo implements ports.BankRepository over the static bank catalog.
type BankRepo struct {
	pool Pool
}

// NewBankRepo creates a new BankRepo.
func NewBankRepo(pool Pool) *BankRepo {
	return &BankRepo{pool: pool}
}

// List returns the bank catalog ordered by name.
func (r *BankRepo) List(ctx context.Context) ([]domain.Bank, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, name FROM banks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var banks []domain.Bank
	for rows.Next() {
		var b domain.Bank
		if err := rows.Scan(&b.Code, &b.Name); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banks: %w", err)
	}
	return banks, nil
}
