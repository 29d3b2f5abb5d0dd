package subscription

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Repository defines the data access contract for subscribers.
type Repository interface {
	// Insert writes one subscriber record in a single statement.
	Insert(ctx context.Context, s *domain.Subscriber) error
}
