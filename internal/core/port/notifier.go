package port

import (
	"context"

	"github.com/boutell/sassypants/internal/core/domain"
)

// Notifier delivers lifecycle notifications to an account holder.
//
// The engine calls Send synchronously and treats an error as fatal to the
// triggering request; it never rolls back state already persisted.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}
