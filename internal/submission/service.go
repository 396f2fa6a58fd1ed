package submission

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/tapvault/backend/internal/models"
	"github.com/tapvault/backend/internal/resolve"
)

var ErrMissingFields = errors.New("handle, offer id and proof url are required")

// Store is the storage surface the service needs. *Repository satisfies it.
type Store interface {
	Insert(ctx context.Context, s *models.Submission) error
	CountApproved(ctx context.Context, handle string) (int, error)
	CountApprovedByProfileID(ctx context.Context, profileID uuid.UUID) (int, error)
	ProfileIDByHandle(ctx context.Context, handle string) (uuid.UUID, bool, error)
}

type Service interface {
	Submit(ctx context.Context, handle string, offerID uuid.UUID, proofURL string) (uuid.UUID, error)
	CountApproved(ctx context.Context, handle string) (int, error)
}

type service struct {
	repo Store
}

func NewService(repo Store) *service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

// Submit records a new pending submission. Every call inserts a fresh row so
// a rejection never blocks another attempt at the same offer.
func (s *service) Submit(ctx context.Context, handle string, offerID uuid.UUID, proofURL string) (uuid.UUID, error) {
	handle = strings.TrimSpace(handle)
	proofURL = strings.TrimSpace(proofURL)
	if handle == "" || offerID == uuid.Nil || proofURL == "" {
		return uuid.Nil, ErrMissingFields
	}
	sub := &models.Submission{
		ID:         uuid.New(),
		UserHandle: handle,
		OfferID:    offerID,
		ProofURL:   proofURL,
		Status:     models.SubmissionPending,
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return uuid.Nil, err
	}
	return sub.ID, nil
}

// CountApproved counts the handle's approved submissions, falling back to a
// profile-id keyed count for rows that predate handle tagging.
func (s *service) CountApproved(ctx context.Context, handle string) (int, error) {
	n, found, err := resolve.First(ctx,
		func(ctx context.Context) (int, bool, error) {
			n, err := s.repo.CountApproved(ctx, handle)
			if err != nil {
				return 0, false, err
			}
			return n, n > 0, nil
		},
		func(ctx context.Context) (int, bool, error) {
			profileID, ok, err := s.repo.ProfileIDByHandle(ctx, handle)
			if err != nil || !ok {
				return 0, false, err
			}
			n, err := s.repo.CountApprovedByProfileID(ctx, profileID)
			if err != nil {
				return 0, false, err
			}
			return n, n > 0, nil
		},
	)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return n, nil
}
