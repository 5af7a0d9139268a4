package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/boutell/sassypants/internal/core/domain"
	"github.com/boutell/sassypants/internal/core/port"
	"github.com/boutell/sassypants/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const uniqueViolation = "23505"

var accountColumns = []string{
	"id",
	"email",
	"name",
	"password_hash",
	"confirmed",
	"confirmed_at",
	"confirmation_code",
	"confirmation_requested_at",
	"reset_password_code",
	"reset_requested_at",
	"created_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
//
// All conditional transitions (confirm, set reset code, redeem reset code) are
// single UPDATE statements whose WHERE clause carries the precondition; the
// row count decides whether the caller won the race.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that
// satisfies pgExecutor; *pgxpool.Pool does in production, pgxmock in tests.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row. A unique violation on the email index is
// reported as repository.ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert("accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Email,
			account.Name,
			account.PasswordHash,
			account.Confirmed,
			account.ConfirmedAt,
			account.ConfirmationCode,
			account.ConfirmationRequestedAt,
			account.ResetPasswordCode,
			account.ResetRequestedAt,
			account.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "accounts_email_key" {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetConfirmedByEmail retrieves an account by email only if it is confirmed.
// Unconfirmed accounts are indistinguishable from absent ones to the caller.
func (r *AccountRepository) GetConfirmedByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email, "confirmed": true})
}

// GetByConfirmationCode retrieves the account holding the given code.
func (r *AccountRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"confirmation_code": code})
}

// GetByResetCode retrieves the account holding the given reset code.
func (r *AccountRepository) GetByResetCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"reset_password_code": code})
}

// DeleteUnconfirmedByEmail removes an account only while it is unconfirmed,
// letting the holder sign up again after losing the confirmation email.
// Deleting nothing is not an error.
func (r *AccountRepository) DeleteUnconfirmedByEmail(ctx context.Context, email string) error {
	stmt, args, err := r.builder.Delete("accounts").
		Where(squirrel.Eq{"email": email, "confirmed": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete unconfirmed account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete unconfirmed account: %w", err)
	}

	return nil
}

// ConfirmIfCodeMatches marks the account confirmed and clears the confirmation
// code, but only while the stored code still equals code. Under concurrent
// confirmations exactly one caller observes true.
func (r *AccountRepository) ConfirmIfCodeMatches(ctx context.Context, accountID, code string, confirmedAt time.Time) (bool, error) {
	stmt, args, err := r.builder.Update("accounts").
		Set("confirmed", true).
		Set("confirmed_at", confirmedAt.UTC()).
		Set("confirmation_code", nil).
		Where(squirrel.Eq{"id": accountID, "confirmation_code": code}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build confirm account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("confirm account: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

// SetResetCode stamps a new reset code on the account with the given email,
// overwriting (and thereby invalidating) any previous one. It reports whether
// a matching account existed.
func (r *AccountRepository) SetResetCode(ctx context.Context, email, code string, requestedAt time.Time) (bool, error) {
	stmt, args, err := r.builder.Update("accounts").
		Set("reset_password_code", code).
		Set("reset_requested_at", requestedAt.UTC()).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build set reset code sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("set reset code: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

// UpdatePasswordIfResetCodeMatches replaces the password hash and clears the
// reset code, but only while the stored reset code still equals code. A
// concurrent redemption or a newer reset request makes this a no-op.
func (r *AccountRepository) UpdatePasswordIfResetCodeMatches(ctx context.Context, code, passwordHash string) (bool, error) {
	stmt, args, err := r.builder.Update("accounts").
		Set("password_hash", passwordHash).
		Set("reset_password_code", nil).
		Set("reset_requested_at", nil).
		Where(squirrel.Eq{"reset_password_code": code}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

func (r *AccountRepository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("accounts").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		account          domain.Account
		confirmationCode sql.NullString
		resetCode        sql.NullString
	)

	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.PasswordHash,
		&account.Confirmed,
		&account.ConfirmedAt,
		&confirmationCode,
		&account.ConfirmationRequestedAt,
		&resetCode,
		&account.ResetRequestedAt,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if confirmationCode.Valid {
		val := confirmationCode.String
		account.ConfirmationCode = &val
	}
	if resetCode.Valid {
		val := resetCode.String
		account.ResetPasswordCode = &val
	}

	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
