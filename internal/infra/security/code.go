package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const codeBytes = 32

// CodeIssuer mints single-use confirmation and reset codes.
//
// Codes carry 256 bits of entropy encoded URL-safe, so uniqueness holds by
// construction; the store's unique index on confirmation codes is a secondary
// guard, not the primary defense.
type CodeIssuer struct{}

// NewCodeIssuer constructs a CodeIssuer.
func NewCodeIssuer() *CodeIssuer {
	return &CodeIssuer{}
}

// Issue returns a fresh opaque code safe for embedding in URLs.
func (i *CodeIssuer) Issue() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
