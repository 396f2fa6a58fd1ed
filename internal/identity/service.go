package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tapvault/backend/internal/models"
	"github.com/tapvault/backend/internal/notify"
	"github.com/tapvault/backend/internal/polling"
)

// ErrEmptyHandle is returned when the handle is empty after normalization.
var ErrEmptyHandle = errors.New("handle is empty")

// ErrVerificationNotFound is returned when no verification exists for a handle.
var ErrVerificationNotFound = errors.New("verification not found")

// RegisterResult reports whether this call created the record and the status
// currently on file. A pre-existing record keeps its status untouched.
type RegisterResult struct {
	Created bool
	Status  string
}

// WaitResult is the end of one verification polling session.
type WaitResult struct {
	Outcome polling.Outcome
	Status  string // last observed status; "pending" on timeout
}

type Service interface {
	Register(ctx context.Context, handle string) (RegisterResult, error)
	Status(ctx context.Context, handle string) (string, error)
	AwaitVerification(ctx context.Context, handle string, cfg polling.Config, advisory func()) (WaitResult, error)
}

// Store is the persistence interface the service needs; *Repository
// satisfies it, and tests substitute an in-memory implementation.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	InsertPending(ctx context.Context, tx pgx.Tx, handle string) (bool, error)
	StatusTx(ctx context.Context, tx pgx.Tx, handle string) (string, error)
	Get(ctx context.Context, handle string) (*models.Verification, error)
}

type service struct {
	repo            Store
	insertWaitEvent notify.InsertTxFunc
	log             *slog.Logger
}

// NewService creates an identity service. insertWaitEvent is typically a
// closure over river.Client.InsertTx.
func NewService(repo Store, insertWaitEvent notify.InsertTxFunc, log *slog.Logger) *service {
	if log == nil {
		log = slog.Default()
	}
	return &service{repo: repo, insertWaitEvent: insertWaitEvent, log: log}
}

var _ Service = (*service)(nil)

// NormalizeHandle trims whitespace and strips one leading "@".
func NormalizeHandle(raw string) string {
	h := strings.TrimSpace(raw)
	h = strings.TrimPrefix(h, "@")
	return strings.TrimSpace(h)
}

func (s *service) Register(ctx context.Context, raw string) (RegisterResult, error) {
	handle := NormalizeHandle(raw)
	if handle == "" {
		return RegisterResult{}, ErrEmptyHandle
	}
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return RegisterResult{}, err
	}
	defer tx.Rollback(ctx)

	created, err := s.repo.InsertPending(ctx, tx, handle)
	if err != nil {
		return RegisterResult{}, err
	}
	status, err := s.repo.StatusTx(ctx, tx, handle)
	if err != nil {
		return RegisterResult{}, err
	}
	if created {
		if err := s.insertWaitEvent(ctx, tx, notify.RecordWaitEventArgs{
			EventKind: models.WaitVerificationSubmitted,
			Handle:    handle,
		}); err != nil {
			return RegisterResult{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{Created: created, Status: status}, nil
}

func (s *service) Status(ctx context.Context, raw string) (string, error) {
	handle := NormalizeHandle(raw)
	if handle == "" {
		return "", ErrEmptyHandle
	}
	v, err := s.repo.Get(ctx, handle)
	if err != nil {
		return "", err
	}
	return v.Status, nil
}

// AwaitVerification polls Status until it leaves pending or the bound
// elapses. Missing records count as still pending: the admin tooling may
// not have seen the row yet.
func (s *service) AwaitVerification(ctx context.Context, handle string, cfg polling.Config, advisory func()) (WaitResult, error) {
	last := models.VerificationPending
	poller := polling.New(cfg, advisory, s.log)
	outcome, err := poller.Run(ctx, func(ctx context.Context) (bool, error) {
		status, err := s.Status(ctx, handle)
		if errors.Is(err, ErrVerificationNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		last = status
		return status != models.VerificationPending, nil
	})
	if err != nil {
		return WaitResult{}, err
	}
	return WaitResult{Outcome: outcome, Status: last}, nil
}
