package binding

import (
	"context"
	"encoding/json"
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

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const bindColumns = `id, user_handle, username, credential_material, status, step,
	details_submitted, extra_info, admin_note, created_at, updated_at`

func scanBind(row pgx.Row) (*models.AccountBind, error) {
	var b models.AccountBind
	err := row.Scan(&b.ID, &b.UserHandle, &b.Username, &b.CredentialMaterial, &b.Status,
		&b.Step, &b.DetailsSubmitted, &b.ExtraInfo, &b.AdminNote, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBindNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// InsertTx creates a fresh bind row: status pending, step 1, details not
// submitted. Every attempt is its own row; there is no dedup.
func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, b *models.AccountBind) error {
	return tx.QueryRow(ctx, `
		INSERT INTO account_binds (id, user_handle, username, credential_material, status, step, details_submitted)
		VALUES ($1, $2, $3, $4, 'pending', 1, FALSE)
		RETURNING created_at, updated_at
	`, b.ID, b.UserHandle, b.Username, b.CredentialMaterial).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// UpdateDetailsTx applies the second-phase transition: attach extra_info,
// move step to 2, flip details_submitted. Both moves are one-way (GREATEST
// and OR keep a repeated call from ever undoing them) and status is never
// part of the SET list; that column belongs to the admin actor.
func (r *Repository) UpdateDetailsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, extraInfo json.RawMessage) (*models.AccountBind, error) {
	return scanBind(tx.QueryRow(ctx, `
		UPDATE account_binds
		SET extra_info = COALESCE($2, extra_info),
		    step = GREATEST(step, 2),
		    details_submitted = TRUE,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+bindColumns+`
	`, id, extraInfo))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.AccountBind, error) {
	return scanBind(r.pool.QueryRow(ctx, `
		SELECT `+bindColumns+` FROM account_binds WHERE id = $1
	`, id))
}

// LatestByHandle returns the most recent bind for the handle. Ties on
// created_at break toward the latest inserted row.
func (r *Repository) LatestByHandle(ctx context.Context, handle string) (*models.AccountBind, error) {
	return scanBind(r.pool.QueryRow(ctx, `
		SELECT `+bindColumns+` FROM account_binds
		WHERE user_handle = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, handle))
}

// LatestByProfileID covers historical rows the admin tooling keyed by
// profile id instead of handle.
func (r *Repository) LatestByProfileID(ctx context.Context, profileID uuid.UUID) (*models.AccountBind, error) {
	return scanBind(r.pool.QueryRow(ctx, `
		SELECT `+bindColumns+` FROM account_binds
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, profileID))
}

// ProfileIDByHandle resolves the profile id for the fallback lookup.
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
