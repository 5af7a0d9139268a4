package port

import (
	"context"
	"time"

	"github.com/boutell/sassypants/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
//
// Every method returning matched reports whether the underlying conditional
// update applied. Implementations must perform those updates as single atomic
// store operations (precondition and mutation in one statement), never as a
// read followed by a write: two requests racing on the same code must observe
// exactly one matched = true.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetConfirmedByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.Account, error)
	GetByResetCode(ctx context.Context, code string) (*domain.Account, error)
	DeleteUnconfirmedByEmail(ctx context.Context, email string) error
	ConfirmIfCodeMatches(ctx context.Context, accountID, code string, confirmedAt time.Time) (bool, error)
	SetResetCode(ctx context.Context, email, code string, requestedAt time.Time) (bool, error)
	UpdatePasswordIfResetCodeMatches(ctx context.Context, code, passwordHash string) (bool, error)
}
