package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boutell/sassypants/internal/core/domain"
	"github.com/boutell/sassypants/internal/core/port"
	"github.com/boutell/sassypants/internal/infra/config"
	"github.com/boutell/sassypants/internal/infra/logger"
	"github.com/boutell/sassypants/internal/infra/security"
	"github.com/boutell/sassypants/internal/repository"
)

const (
	defaultConfirmationWindow = 24 * time.Hour
	defaultResetWindow        = time.Hour

	maxNameLength = 100
)

var (
	// ErrInvalidInput indicates a malformed signup, reset, or login field.
	// Callers map it to a generic retry prompt; the offending field is only
	// named in server logs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfirmationFailed covers every unsuccessful confirmation: unknown
	// code, expired code, or a lost race. Callers must not distinguish.
	ErrConfirmationFailed = errors.New("confirmation failed")
	// ErrResetFailed covers every unsuccessful password reset redemption.
	ErrResetFailed = errors.New("reset failed")
	// ErrLoginFailed covers both unknown accounts and wrong passwords.
	ErrLoginFailed = errors.New("login failed")
)

// LifecycleEngine drives the account lifecycle: signup, confirmation,
// password reset, and login. It is the sole entry point for the transport
// layer and holds no mutable state of its own; all correctness under
// concurrency rests on the store's conditional updates.
type LifecycleEngine struct {
	accounts port.AccountRepository
	notifier port.Notifier
	hasher   *security.Hasher
	codes    *security.CodeIssuer
	logger   *zap.Logger

	baseURL            string
	confirmationWindow time.Duration
	resetWindow        time.Duration
	strictNormalize    bool

	now func() time.Time
}

// NewLifecycleEngine constructs the engine from its collaborators.
func NewLifecycleEngine(cfg *config.AppConfig, accounts port.AccountRepository, notifier port.Notifier, hasher *security.Hasher, codes *security.CodeIssuer, log *zap.Logger) *LifecycleEngine {
	if log == nil {
		log = zap.NewNop()
	}
	if hasher == nil {
		hasher = security.NewHasher(security.DefaultScryptCost)
	}
	if codes == nil {
		codes = security.NewCodeIssuer()
	}

	engine := &LifecycleEngine{
		accounts:           accounts,
		notifier:           notifier,
		hasher:             hasher,
		codes:              codes,
		logger:             log,
		confirmationWindow: defaultConfirmationWindow,
		resetWindow:        defaultResetWindow,
		now:                time.Now,
	}

	if cfg != nil {
		engine.baseURL = strings.TrimRight(cfg.App.BaseURL, "/")
		if cfg.Lifecycle.ConfirmationWindow > 0 {
			engine.confirmationWindow = cfg.Lifecycle.ConfirmationWindow
		}
		if cfg.Lifecycle.ResetWindow > 0 {
			engine.resetWindow = cfg.Lifecycle.ResetWindow
		}
		engine.strictNormalize = cfg.Lifecycle.StrictNormalizeEmail
	}

	return engine
}

// WithClock allows tests to override the clock used by the engine.
func (e *LifecycleEngine) WithClock(clock func() time.Time) {
	if clock != nil {
		e.now = clock
	}
}

// SignUp creates a new unconfirmed account and triggers the confirmation
// email. Signing up again with an unconfirmed email replaces the pending
// account and its code. A collision with a confirmed account triggers the
// existing-account email instead; both outcomes look identical to the caller
// so account existence is never disclosed.
func (e *LifecycleEngine) SignUp(ctx context.Context, email, name, password string) error {
	email, err := e.normalizeEmail(email)
	if err != nil {
		return err
	}

	name = sanitizeName(name)
	if name == "" {
		e.logger.Info("signup rejected", zap.String("reason", "empty name"))
		return ErrInvalidInput
	}
	if password == "" {
		e.logger.Info("signup rejected", zap.String("reason", "empty password"))
		return ErrInvalidInput
	}

	passwordHash, err := e.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	code, err := e.codes.Issue()
	if err != nil {
		return fmt.Errorf("issue confirmation code: %w", err)
	}

	// People lose confirmation emails constantly; an unconfirmed account is
	// replaceable so they can just sign up again. Spamming this form never
	// yields a guessable code.
	if err := e.accounts.DeleteUnconfirmedByEmail(ctx, email); err != nil {
		return fmt.Errorf("delete unconfirmed account: %w", err)
	}

	now := e.now().UTC()
	account := domain.Account{
		ID:                      uuid.NewString(),
		Email:                   email,
		Name:                    name,
		PasswordHash:            passwordHash,
		Confirmed:               false,
		ConfirmationCode:        &code,
		ConfirmationRequestedAt: &now,
		CreatedAt:               now,
	}

	if err := e.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// A confirmed account already exists. Point its holder at the
			// reset flow and report the same outcome as a fresh signup.
			e.logger.Info("signup for existing account",
				zap.String("email", logger.MaskEmail(email)),
			)
			return e.notifier.Send(ctx, domain.Notification{
				Kind:           domain.NotificationExistingAccount,
				RecipientName:  name,
				RecipientEmail: email,
				URL:            e.baseURL + "/reset",
			})
		}
		return fmt.Errorf("create account: %w", err)
	}

	return e.notifier.Send(ctx, domain.Notification{
		Kind:           domain.NotificationConfirm,
		RecipientName:  name,
		RecipientEmail: email,
		URL:            e.baseURL + "/confirm/" + code,
	})
}

// Confirm redeems a confirmation code. Exactly one of any number of
// concurrent confirmations with the same code succeeds; the rest fail the
// conditional update and report ErrConfirmationFailed like any other miss.
func (e *LifecycleEngine) Confirm(ctx context.Context, code string) error {
	if code == "" {
		return ErrConfirmationFailed
	}

	account, err := e.accounts.GetByConfirmationCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			e.logger.Info("confirmation failed", zap.String("reason", "unknown code"))
			return ErrConfirmationFailed
		}
		return fmt.Errorf("lookup confirmation code: %w", err)
	}

	now := e.now().UTC()
	if account.ConfirmationRequestedAt == nil || now.Sub(*account.ConfirmationRequestedAt) > e.confirmationWindow {
		e.logger.Info("confirmation failed",
			zap.String("reason", "code expired"),
			zap.String("email", logger.MaskEmail(account.Email)),
		)
		return ErrConfirmationFailed
	}

	matched, err := e.accounts.ConfirmIfCodeMatches(ctx, account.ID, code, now)
	if err != nil {
		return fmt.Errorf("confirm account: %w", err)
	}
	if !matched {
		e.logger.Info("confirmation failed",
			zap.String("reason", "lost confirmation race"),
			zap.String("email", logger.MaskEmail(account.Email)),
		)
		return ErrConfirmationFailed
	}

	return nil
}

// RequestReset issues a reset code for the account with the given email. The
// caller-visible outcome is identical whether or not the account exists; only
// a real account receives the reset email.
func (e *LifecycleEngine) RequestReset(ctx context.Context, email string) error {
	email, err := e.normalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := e.codes.Issue()
	if err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}

	matched, err := e.accounts.SetResetCode(ctx, email, code, e.now().UTC())
	if err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}
	if !matched {
		e.logger.Info("reset requested for unknown email",
			zap.String("email", logger.MaskEmail(email)),
		)
		return nil
	}

	account, err := e.accounts.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup account for reset email: %w", err)
	}

	return e.notifier.Send(ctx, domain.Notification{
		Kind:           domain.NotificationReset,
		RecipientName:  account.Name,
		RecipientEmail: account.Email,
		URL:            e.baseURL + "/reset/" + code,
	})
}

// ValidateResetCode checks that a reset code exists and is within the reset
// window, returning the owning account. It gates both the reset form and its
// submission.
func (e *LifecycleEngine) ValidateResetCode(ctx context.Context, code string) (*domain.Account, error) {
	if code == "" {
		return nil, ErrResetFailed
	}

	account, err := e.accounts.GetByResetCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			e.logger.Info("reset validation failed", zap.String("reason", "unknown code"))
			return nil, ErrResetFailed
		}
		return nil, fmt.Errorf("lookup reset code: %w", err)
	}

	if account.ResetRequestedAt == nil || e.now().UTC().Sub(*account.ResetRequestedAt) > e.resetWindow {
		e.logger.Info("reset validation failed",
			zap.String("reason", "code expired"),
			zap.String("email", logger.MaskEmail(account.Email)),
		)
		return nil, ErrResetFailed
	}

	return account, nil
}

// CompleteReset redeems a reset code and installs the new password. The
// conditional update consumes the code: a concurrent redemption or a newer
// reset request makes this attempt fail cleanly.
func (e *LifecycleEngine) CompleteReset(ctx context.Context, code, newPassword string) error {
	if _, err := e.ValidateResetCode(ctx, code); err != nil {
		return err
	}

	if newPassword == "" {
		e.logger.Info("reset rejected", zap.String("reason", "empty password"))
		return ErrInvalidInput
	}

	passwordHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	matched, err := e.accounts.UpdatePasswordIfResetCodeMatches(ctx, code, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if !matched {
		e.logger.Info("reset failed", zap.String("reason", "code already consumed"))
		return ErrResetFailed
	}

	return nil
}

// Login authenticates a confirmed account. Unknown emails, unconfirmed
// accounts, and wrong passwords all yield ErrLoginFailed; a corrupted
// password hash does not. Session establishment is the caller's concern.
func (e *LifecycleEngine) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	email, err := e.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		e.logger.Info("login rejected", zap.String("reason", "empty password"))
		return nil, ErrInvalidInput
	}

	account, err := e.accounts.GetConfirmedByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			e.logger.Info("login failed",
				zap.String("reason", "no confirmed account"),
				zap.String("email", logger.MaskEmail(email)),
			)
			return nil, ErrLoginFailed
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := e.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		// ErrUnsupportedAlgorithm lands here: corruption, not a mismatch.
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		e.logger.Info("login failed",
			zap.String("reason", "wrong password"),
			zap.String("email", logger.MaskEmail(email)),
		)
		return nil, ErrLoginFailed
	}

	sanitized := account.Sanitized()
	return &sanitized, nil
}

func (e *LifecycleEngine) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		e.logger.Info("invalid email", zap.String("email", logger.MaskEmail(email)))
		return "", ErrInvalidInput
	}
	if e.strictNormalize {
		email = strictNormalizeEmail(email)
	}
	return email, nil
}

// strictNormalizeEmail folds provider aliases: plus-suffixes are dropped for
// every domain, dots in the local part only for gmail.
func strictNormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}

	local, domainPart := email[:at], email[at+1:]
	if plus := strings.Index(local, "+"); plus > 0 {
		local = local[:plus]
	}
	if domainPart == "gmail.com" || domainPart == "googlemail.com" {
		local = strings.ReplaceAll(local, ".", "")
	}

	return local + "@" + domainPart
}

// sanitizeName strips quotes and commas (they would break email headers and
// CSV exports) and caps the length.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, ",", "")
	name = strings.TrimSpace(name)
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}
