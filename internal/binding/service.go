package binding

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tapvault/backend/internal/credential"
	"github.com/tapvault/backend/internal/models"
	"github.com/tapvault/backend/internal/notify"
	"github.com/tapvault/backend/internal/polling"
	"github.com/tapvault/backend/internal/resolve"
)

// ErrBindNotFound is returned when no bind exists for the given id.
var ErrBindNotFound = errors.New("bind not found")

// ErrMissingFields is returned when handle, username, or credential is empty.
var ErrMissingFields = errors.New("missing required fields")

// WaitStatus is the end of one bind polling session. TimedOut is its own
// value: a wait that exhausted the bound is not a rejection.
type WaitStatus string

const (
	WaitApproved1 WaitStatus = "approved1" // first-phase approval; proceed to details
	WaitUnlocked  WaitStatus = "unlocked"
	WaitRejected  WaitStatus = "rejected"
	WaitTimedOut  WaitStatus = "timed_out"
)

type WaitResult struct {
	Status WaitStatus
	Bind   *models.AccountBind // last observed row; nil if never seen
}

// Store is the persistence interface the service needs; *Repository
// satisfies it.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	InsertTx(ctx context.Context, tx pgx.Tx, b *models.AccountBind) error
	UpdateDetailsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, extraInfo json.RawMessage) (*models.AccountBind, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccountBind, error)
	LatestByHandle(ctx context.Context, handle string) (*models.AccountBind, error)
	LatestByProfileID(ctx context.Context, profileID uuid.UUID) (*models.AccountBind, error)
	ProfileIDByHandle(ctx context.Context, handle string) (uuid.UUID, bool, error)
}

type Service interface {
	Create(ctx context.Context, handle, username, secret string) (uuid.UUID, error)
	SubmitDetails(ctx context.Context, id uuid.UUID, extraInfo json.RawMessage) (*models.AccountBind, error)
	Status(ctx context.Context, id uuid.UUID) (*models.AccountBind, error)
	IsBound(ctx context.Context, handle string) (bool, error)
	AwaitDecision(ctx context.Context, id uuid.UUID, cfg polling.Config, advisory func()) (WaitResult, error)
	AwaitUnlock(ctx context.Context, id uuid.UUID, cfg polling.Config, advisory func()) (WaitResult, error)
}

type service struct {
	repo            Store
	policy          credential.Policy
	insertWaitEvent notify.InsertTxFunc
	log             *slog.Logger
}

// NewService creates a binding service. insertWaitEvent is typically a
// closure over river.Client.InsertTx.
func NewService(repo Store, policy credential.Policy, insertWaitEvent notify.InsertTxFunc, log *slog.Logger) *service {
	if log == nil {
		log = slog.Default()
	}
	return &service{repo: repo, policy: policy, insertWaitEvent: insertWaitEvent, log: log}
}

var _ Service = (*service)(nil)

func (s *service) Create(ctx context.Context, handle, username, secret string) (uuid.UUID, error) {
	handle = strings.TrimSpace(handle)
	username = strings.TrimSpace(username)
	if handle == "" || username == "" || secret == "" {
		return uuid.Nil, ErrMissingFields
	}
	material, err := s.policy.Seal(secret)
	if err != nil {
		if errors.Is(err, credential.ErrEmptySecret) {
			return uuid.Nil, ErrMissingFields
		}
		return uuid.Nil, err
	}

	b := &models.AccountBind{
		ID:                 uuid.New(),
		UserHandle:         handle,
		Username:           username,
		CredentialMaterial: string(material),
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.repo.InsertTx(ctx, tx, b); err != nil {
		return uuid.Nil, err
	}
	ref := b.ID.String()
	if err := s.insertWaitEvent(ctx, tx, notify.RecordWaitEventArgs{
		EventKind: models.WaitBindRequested,
		Handle:    handle,
		RefID:     &ref,
	}); err != nil {
		return uuid.Nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return b.ID, nil
}

func (s *service) SubmitDetails(ctx context.Context, id uuid.UUID, extraInfo json.RawMessage) (*models.AccountBind, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := s.repo.UpdateDetailsTx(ctx, tx, id, extraInfo)
	if err != nil {
		return nil, err
	}
	ref := id.String()
	if err := s.insertWaitEvent(ctx, tx, notify.RecordWaitEventArgs{
		EventKind: models.WaitBindDetailsSubmitted,
		Handle:    updated.UserHandle,
		RefID:     &ref,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Status(ctx context.Context, id uuid.UUID) (*models.AccountBind, error) {
	return s.repo.GetByID(ctx, id)
}

// IsBound reports whether the handle's most recent bind counts as bound:
// final approval, or first-phase approval with the details step completed.
// Rows keyed by profile id are covered by the fallback strategy.
func (s *service) IsBound(ctx context.Context, handle string) (bool, error) {
	latest, found, err := resolve.First(ctx,
		func(ctx context.Context) (*models.AccountBind, bool, error) {
			b, err := s.repo.LatestByHandle(ctx, handle)
			if errors.Is(err, ErrBindNotFound) {
				return nil, false, nil
			}
			return b, err == nil, err
		},
		func(ctx context.Context) (*models.AccountBind, bool, error) {
			profileID, ok, err := s.repo.ProfileIDByHandle(ctx, handle)
			if err != nil || !ok {
				return nil, false, err
			}
			b, err := s.repo.LatestByProfileID(ctx, profileID)
			if errors.Is(err, ErrBindNotFound) {
				return nil, false, nil
			}
			return b, err == nil, err
		},
	)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return bound(latest), nil
}

func bound(b *models.AccountBind) bool {
	if b.Status == models.BindApproved {
		return true
	}
	return b.Status == models.BindApproved1 && b.Step >= models.BindStepDetails
}

// AwaitDecision waits out the first phase: any move off pending is terminal.
func (s *service) AwaitDecision(ctx context.Context, id uuid.UUID, cfg polling.Config, advisory func()) (WaitResult, error) {
	return s.await(ctx, id, cfg, advisory, func(b *models.AccountBind) (WaitStatus, bool) {
		switch b.Status {
		case models.BindRejected:
			return WaitRejected, true
		case models.BindApproved1:
			return WaitApproved1, true
		case models.BindApproved:
			return WaitUnlocked, true
		default:
			return "", false
		}
	})
}

// AwaitUnlock waits out the second phase. approved1 on its own is not
// terminal here: the wait ends successfully only on final approval with the
// details step done, and unsuccessfully on rejection.
func (s *service) AwaitUnlock(ctx context.Context, id uuid.UUID, cfg polling.Config, advisory func()) (WaitResult, error) {
	return s.await(ctx, id, cfg, advisory, func(b *models.AccountBind) (WaitStatus, bool) {
		if b.Status == models.BindRejected {
			return WaitRejected, true
		}
		if b.Status == models.BindApproved && (b.Step >= models.BindStepDetails || b.DetailsSubmitted) {
			return WaitUnlocked, true
		}
		return "", false
	})
}

func (s *service) await(ctx context.Context, id uuid.UUID, cfg polling.Config, advisory func(), terminal func(*models.AccountBind) (WaitStatus, bool)) (WaitResult, error) {
	result := WaitResult{Status: WaitTimedOut}
	poller := polling.New(cfg, advisory, s.log)
	outcome, err := poller.Run(ctx, func(ctx context.Context) (bool, error) {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		result.Bind = b
		if status, done := terminal(b); done {
			result.Status = status
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return WaitResult{}, err
	}
	if outcome == polling.OutcomeTimeout {
		result.Status = WaitTimedOut
	}
	return result, nil
}
