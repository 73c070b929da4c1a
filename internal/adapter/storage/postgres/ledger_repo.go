package postgres

import (
	"context"
	"fmt"

	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. The ledger is append-only;
// no update or delete statement exists here on purpose.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create appends a ledger entry within a database transaction.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, account_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.AccountID, entry.Type, entry.Amount,
		entry.Description, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// List fetches entries matching the filter, newest first.
func (r *LedgerRepo) List(ctx context.Context, filter ports.LedgerFilter) ([]domain.LedgerEntry, error) {
	query := `SELECT id, account_id, type, amount, description, created_at FROM ledger_entries`
	args := []any{}
	cond := ""

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		cond = fmt.Sprintf(" WHERE account_id = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		if cond == "" {
			cond = fmt.Sprintf(" WHERE type = $%d", len(args))
		} else {
			cond += fmt.Sprintf(" AND type = $%d", len(args))
		}
	}
	query += cond + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Amount, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}
