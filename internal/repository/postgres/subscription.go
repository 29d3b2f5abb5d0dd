package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/newsletter/internal/domain"
)

// SubscriptionRepo implements subscription.Repository against PostgreSQL.
type SubscriptionRepo struct{ db *sql.DB }

// NewSubscriptionRepo creates a Postgres-backed subscription repository.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Insert writes one row. The statement is atomic on its own, so no explicit
// transaction is opened.
func (r *SubscriptionRepo) Insert(ctx context.Context, s *domain.Subscriber) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, name, email, subscribed_at)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.Name, s.Email, s.SubscribedAt)
	if err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}
