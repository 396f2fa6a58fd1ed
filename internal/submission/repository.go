package submission

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

// Insert writes a fresh pending submission. Repeat submissions for the same
// offer each get their own row; there is no upsert here.
func (r *Repository) Insert(ctx context.Context, s *models.Submission) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO submissions (id, user_handle, offer_id, proof_url, status)
		VALUES ($1, $2, $3, $4, 'pending')
	`, s.ID, s.UserHandle, s.OfferID, s.ProofURL)
	return err
}

func (r *Repository) CountApproved(ctx context.Context, handle string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM submissions
		WHERE user_handle = $1 AND status = 'approved'
	`, handle).Scan(&n)
	return n, err
}

// CountApprovedByProfileID covers rows written before handles were recorded,
// which are keyed by user_id only.
func (r *Repository) CountApprovedByProfileID(ctx context.Context, profileID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM submissions
		WHERE user_id = $1 AND status = 'approved'
	`, profileID).Scan(&n)
	return n, err
}

func (r *Repository) ProfileIDByHandle(ctx context.Context, handle string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM profiles WHERE handle = $1
	`, handle).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}
