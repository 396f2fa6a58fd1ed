package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, kind, handle string, refID *string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wait_events (id, kind, handle, ref_id)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), kind, handle, refID)
	return err
}
