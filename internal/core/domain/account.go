package domain

import "time"

// Account mirrors the persisted representation in the accounts table.
//
// ConfirmationCode is present only while Confirmed is false and is cleared
// atomically by the store when the account is confirmed. ResetPasswordCode is
// present only while a password reset is outstanding; each new reset request
// overwrites it, invalidating the previous code.
type Account struct {
	ID                      string
	Email                   string
	Name                    string
	PasswordHash            string
	Confirmed               bool
	ConfirmedAt             *time.Time
	ConfirmationCode        *string
	ConfirmationRequestedAt *time.Time
	ResetPasswordCode       *string
	ResetRequestedAt        *time.Time
	CreatedAt               time.Time
}

// Sanitized returns a copy safe to hand back to transport layers.
func (a Account) Sanitized() Account {
	out := a
	out.PasswordHash = ""
	out.ConfirmationCode = nil
	out.ResetPasswordCode = nil
	return out
}
