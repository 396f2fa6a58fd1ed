package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapvault/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// InsertPending inserts a pending verification if none exists for the handle.
// The conflict target makes duplicate registration a no-op at the storage
// boundary, so two concurrent calls can never both create a row. Returns
// whether this call created the row.
func (r *Repository) InsertPending(ctx context.Context, tx pgx.Tx, handle string) (bool, error) {
	result, err := tx.Exec(ctx, `
		INSERT INTO verifications (handle, status)
		VALUES ($1, 'pending')
		ON CONFLICT (handle) DO NOTHING
	`, handle)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// StatusTx reads the current status inside the registration transaction.
func (r *Repository) StatusTx(ctx context.Context, tx pgx.Tx, handle string) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `
		SELECT status FROM verifications WHERE handle = $1
	`, handle).Scan(&status)
	return status, err
}

// Get returns the verification record, or ErrVerificationNotFound.
func (r *Repository) Get(ctx context.Context, handle string) (*models.Verification, error) {
	var v models.Verification
	err := r.pool.QueryRow(ctx, `
		SELECT handle, status, created_at FROM verifications WHERE handle = $1
	`, handle).Scan(&v.Handle, &v.Status, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
