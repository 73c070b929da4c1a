package postgres

import (
	"context"
	"errors"
	"fmt"

	"festival-settlement/internal/core/domain"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// CommissionRepo implements ports.CommissionRepository.
type CommissionRepo struct {
	pool Pool
}

// NewCommissionRepo creates a new CommissionRepo.
func NewCommissionRepo(pool Pool) *CommissionRepo {
	return &CommissionRepo{pool: pool}
}

// Create inserts a commission withdrawal within a transaction. The unique
// index on festival_id is the hard guard against double withdrawal; a
// violation surfaces as ErrCommissionAlreadyWithdrawn.
func (r *CommissionRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.CommissionWithdrawal) error {
	query := `INSERT INTO commission_withdrawals (id, festival_id, account_id, rate_percent, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, w.ID, w.FestivalID, w.AccountID, w.RatePercent, w.Amount, w.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.ErrCommissionAlreadyWithdrawn()
		}
		return fmt.Errorf("insert commission withdrawal: %w", err)
	}
	return nil
}

// GetByFestival fetches the withdrawal record for a festival, nil when the
// commission has not been taken yet.
func (r *CommissionRepo) GetByFestival(ctx context.Context, festivalID uuid.UUID) (*domain.CommissionWithdrawal, error) {
	query := `SELECT id, festival_id, account_id, rate_percent, amount, created_at
		FROM commission_withdrawals WHERE festival_id = $1`

	w := &domain.CommissionWithdrawal{}
	err := r.pool.QueryRow(ctx, query, festivalID).Scan(
		&w.ID, &w.FestivalID, &w.AccountID, &w.RatePercent, &w.Amount, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get commission withdrawal: %w", err)
	}
	return w, nil
}
