package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tapvault/backend/internal/models"
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("amount below withdrawal minimum")
	ErrUnknownMethod       = errors.New("unknown withdrawal method")
	ErrInvalidDestination  = errors.New("invalid destination for method")
)

// DefaultMinWithdrawal applies when no minimum is configured.
var DefaultMinWithdrawal = decimal.NewFromInt(10)

// Store is the storage surface the service needs. *Repository satisfies it.
type Store interface {
	Balance(ctx context.Context, handle string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, w *models.Withdrawal) (decimal.Decimal, error)
	ListWithdrawals(ctx context.Context, handle string) ([]models.Withdrawal, error)
}

type Service interface {
	Balance(ctx context.Context, handle string) (decimal.Decimal, error)
	RequestWithdrawal(ctx context.Context, handle, method string, amount decimal.Decimal, dest Destination) (*WithdrawalResult, error)
	ListWithdrawals(ctx context.Context, handle string) ([]models.Withdrawal, error)
}

// WithdrawalResult is the committed outcome: the recorded request plus the
// balance left after the debit.
type WithdrawalResult struct {
	Withdrawal *models.Withdrawal
	NewBalance decimal.Decimal
}

type service struct {
	repo      Store
	validator *destinationValidator
	min       decimal.Decimal
}

// NewService builds the wallet service. min is the smallest allowed
// withdrawal; pass decimal.Zero to use DefaultMinWithdrawal.
func NewService(repo Store, min decimal.Decimal) (*service, error) {
	validator, err := newDestinationValidator()
	if err != nil {
		return nil, err
	}
	if min.IsZero() {
		min = DefaultMinWithdrawal
	}
	return &service{repo: repo, validator: validator, min: min}, nil
}

var _ Service = (*service)(nil)

func (s *service) Balance(ctx context.Context, handle string) (decimal.Decimal, error) {
	return s.repo.Balance(ctx, handle)
}

// RequestWithdrawal validates the request and then applies the debit and
// the withdrawal insert as one unit. Validation order: method, amount,
// destination. Amounts are rounded to two decimals before anything else
// looks at them.
func (s *service) RequestWithdrawal(ctx context.Context, handle, method string, amount decimal.Decimal, dest Destination) (*WithdrawalResult, error) {
	if _, ok := s.validator.schemas[method]; !ok {
		return nil, ErrUnknownMethod
	}
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) || amount.LessThan(s.min) {
		return nil, ErrBelowMinimum
	}
	if err := s.validator.validate(method, dest); err != nil {
		return nil, ErrInvalidDestination
	}

	w := &models.Withdrawal{
		ID:         uuid.New(),
		UserHandle: handle,
		Method:     method,
		Amount:     amount,
		Status:     models.WithdrawalPending,
	}
	if method == models.MethodUPI {
		w.UPIID = &dest.UPIID
	} else {
		w.Email = &dest.Email
		w.Phone = &dest.Phone
	}

	newBalance, err := s.repo.Withdraw(ctx, w)
	if err != nil {
		return nil, err
	}
	return &WithdrawalResult{Withdrawal: w, NewBalance: newBalance}, nil
}

func (s *service) ListWithdrawals(ctx context.Context, handle string) ([]models.Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx, handle)
}
