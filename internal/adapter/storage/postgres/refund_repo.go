package postgres

import (
	"context"
	"errors"
	"fmt"

	"festival-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RefundRepo implements ports.RefundRequestRepository.
type RefundRepo struct {
	pool Pool
}

// NewRefundRepo creates a new RefundRepo.
func NewRefundRepo(pool Pool) *RefundRepo {
	return &RefundRepo{pool: pool}
}

const refundColumns = `id, account_id, status, message, data, created_at, updated_at`

// Create inserts a pending refund request.
func (r *RefundRepo) Create(ctx context.Context, req *domain.RefundRequest) error {
	query := `INSERT INTO refund_requests (id, account_id, status, message, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.AccountID, req.Status, req.Message, req.Data,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refund request: %w", err)
	}
	return nil
}

// GetByID fetches a refund request by its UUID.
func (r *RefundRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1`

	req := &domain.RefundRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.AccountID, &req.Status, &req.Message, &req.Data,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refund request: %w", err)
	}
	return req, nil
}

// List returns refund requests, newest first, optionally filtered by status.
func (r *RefundRepo) List(ctx context.Context, status *domain.RefundStatus) ([]domain.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list refund requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.RefundRequest
	for rows.Next() {
		var req domain.RefundRequest
		if err := rows.Scan(
			&req.ID, &req.AccountID, &req.Status, &req.Message, &req.Data,
			&req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan refund request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refund requests: %w", err)
	}
	return reqs, nil
}

// MarkProcessed flips PENDING -> PROCESSED within a transaction. Returns
// false when the request was already processed, so two concurrent admins
// cannot both drain the wallet.
func (r *RefundRepo) MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE refund_requests SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, domain.RefundStatusProcessed, id, domain.RefundStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark refund processed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a refund request regardless of status.
func (r *RefundRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refund_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete refund request: %w", err)
	}
	return nil
}
