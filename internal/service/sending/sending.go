// Package sending defines the contract for transactional email delivery.
//
// emailclient.Client is the production implementation. Components that need
// to send mail depend on Dispatcher so tests can substitute a fake.
package sending

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Dispatcher sends a single plain-text email. Implementations must be safe
// for concurrent use and must not retry on their own.
type Dispatcher interface {
	Send(ctx context.Context, recipient domain.SubscriberEmail, subject, textBody string) error
}
