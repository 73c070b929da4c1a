package postgres

import (
	"context"
	"errors"
	"fmt"

	"festival-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FestivalRepo implements ports.FestivalRepository.
type FestivalRepo struct {
	pool Pool
}

// NewFestivalRepo creates a new FestivalRepo.
func NewFestivalRepo(pool Pool) *FestivalRepo {
	return &FestivalRepo{pool: pool}
}

// GetByID fetches a festival by its UUID.
func (r *FestivalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Festival, error) {
	query := `SELECT id, name, total_revenue, created_at FROM festivals WHERE id = $1`

	f := &domain.Festival{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.TotalRevenue, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get festival: %w", err)
	}
	return f, nil
}

// GetBooth fetches a booth by its UUID.
func (r *FestivalRepo) GetBooth(ctx context.Context, id uuid.UUID) (*domain.Booth, error) {
	query := `SELECT id, festival_id, name, created_at FROM booths WHERE id = $1`

	b := &domain.Booth{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.FestivalID, &b.Name, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booth: %w", err)
	}
	return b, nil
}
