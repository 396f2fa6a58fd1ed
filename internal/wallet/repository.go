package wallet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
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

// Balance reads the handle's balance. Values cross the wire as text so
// NUMERIC precision survives the round trip.
func (r *Repository) Balance(ctx context.Context, handle string) (decimal.Decimal, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `
		SELECT balance::text FROM profiles WHERE handle = $1
	`, handle).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrProfileNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// Withdraw debits the balance and records the withdrawal in one transaction.
// The debit is conditional: the UPDATE only matches when the balance covers
// the amount, so two racing requests can never overdraw. Zero rows means
// either no such profile or not enough balance; a follow-up existence check
// tells the two apart.
func (r *Repository) Withdraw(ctx context.Context, w *models.Withdrawal) (decimal.Decimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	amount := w.Amount.StringFixed(2)
	var raw string
	err = tx.QueryRow(ctx, `
		UPDATE profiles
		SET balance = round(balance - $1::numeric, 2), updated_at = now()
		WHERE handle = $2 AND balance >= $1::numeric
		RETURNING balance::text
	`, amount, w.UserHandle).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM profiles WHERE handle = $1)
		`, w.UserHandle).Scan(&exists); err != nil {
			return decimal.Zero, err
		}
		if !exists {
			return decimal.Zero, ErrProfileNotFound
		}
		return decimal.Zero, ErrInsufficientBalance
	}
	if err != nil {
		return decimal.Zero, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO withdrawals (id, user_handle, method, amount, upi_id, email, phone, status)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, 'pending')
	`, w.ID, w.UserHandle, w.Method, amount, w.UPIID, w.Email, w.Phone)
	if err != nil {
		return decimal.Zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *Repository) ListWithdrawals(ctx context.Context, handle string) ([]models.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_handle, method, amount::text, upi_id, email, phone, status, created_at
		FROM withdrawals
		WHERE user_handle = $1
		ORDER BY created_at DESC
	`, handle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		var raw string
		if err := rows.Scan(&w.ID, &w.UserHandle, &w.Method, &raw, &w.UPIID, &w.Email, &w.Phone, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		if w.Amount, err = decimal.NewFromString(raw); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
