package offers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tapvault/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActive returns the live non-premium catalog.
func (r *Repository) ListActive(ctx context.Context) ([]models.Offer, error) {
	return r.list(ctx, false)
}

// ListPremium returns the live premium catalog. Callers gate access before
// asking; this layer just reads.
func (r *Repository) ListPremium(ctx context.Context) ([]models.Offer, error) {
	return r.list(ctx, true)
}

func (r *Repository) list(ctx context.Context, premium bool) ([]models.Offer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, reward::text, active, is_premium, created_at
		FROM offers
		WHERE active AND is_premium = $1
		ORDER BY created_at DESC
	`, premium)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		var o models.Offer
		var raw string
		if err := rows.Scan(&o.ID, &o.Title, &raw, &o.Active, &o.IsPremium, &o.CreatedAt); err != nil {
			return nil, err
		}
		if o.Reward, err = decimal.NewFromString(raw); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
