package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/newsletter/internal/domain"
)

// Outcome is the terminal state of one intake.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// OutcomeOf maps the error returned by Subscribe to its terminal state.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAccepted
	case domain.IsValidationError(err):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// Service implements subscription intake. It is safe for concurrent use.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() uuid.UUID
}

// NewService creates a subscription service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.New,
	}
}

// Subscribe validates the raw form fields and, if both pass, persists a new
// subscriber with a fresh id and a UTC timestamp.
//
// Validation errors are returned as produced by the domain package. Store
// errors are wrapped with ErrStore; the underlying error stays reachable
// through errors.Is/As.
func (s *Service) Subscribe(ctx context.Context, name, email string) (*domain.Subscriber, error) {
	ns, err := domain.NewSubscriberFrom(name, email)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscriber{
		ID:           s.newID(),
		Name:         ns.Name.String(),
		Email:        ns.Email.String(),
		SubscribedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return sub, nil
}
