package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	// AlgorithmScrypt tags hashes produced by this package.
	AlgorithmScrypt = "scrypt"

	// DefaultScryptCost is the scrypt N parameter used for new hashes.
	DefaultScryptCost = 16384

	saltLength      = 64
	keyLength       = 64
	scryptBlockSize = 8
	scryptParallel  = 1
)

// ErrUnsupportedAlgorithm indicates a stored hash carries a well-formed but
// unrecognized algorithm tag. This is data corruption, not a wrong password,
// and callers must not treat it as a mismatch.
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// PasswordHash is the parsed form of the stored "algorithm:cost:salt:key"
// encoding. Parse once at the boundary instead of re-splitting the string.
type PasswordHash struct {
	Algorithm string
	Cost      int
	Salt      []byte
	Key       []byte
}

// Hasher derives and verifies scrypt password hashes.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the given scrypt cost (N). Values below 2
// fall back to DefaultScryptCost.
func NewHasher(cost int) *Hasher {
	if cost < 2 {
		cost = DefaultScryptCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a fresh salted hash for the password and returns it encoded as
// "scrypt:<cost>:<base64 salt>:<base64 key>". It fails only when the entropy
// source does.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, h.cost, scryptBlockSize, scryptParallel, keyLength)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	return strings.Join([]string{
		AlgorithmScrypt,
		strconv.Itoa(h.cost),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, ":"), nil
}

// Verify compares candidate against the stored encoded hash.
//
// A malformed encoding (wrong part count, empty parts, invalid base64, or a
// non-positive cost) can never match and verifies false without error. A
// well-formed encoding with an algorithm tag other than "scrypt" returns
// ErrUnsupportedAlgorithm. The key comparison is constant-time.
func (h *Hasher) Verify(encoded, candidate string) (bool, error) {
	parsed, ok := ParsePasswordHash(encoded)
	if !ok {
		return false, nil
	}
	if parsed.Algorithm != AlgorithmScrypt {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, parsed.Algorithm)
	}

	derived, err := scrypt.Key([]byte(candidate), parsed.Salt, parsed.Cost, scryptBlockSize, scryptParallel, len(parsed.Key))
	if err != nil {
		return false, fmt.Errorf("derive key: %w", err)
	}

	return subtle.ConstantTimeCompare(derived, parsed.Key) == 1, nil
}

// ParsePasswordHash splits an encoded hash into its structured form. ok is
// false when the encoding is malformed; an unknown algorithm tag on an
// otherwise well-formed encoding still parses.
func ParsePasswordHash(encoded string) (PasswordHash, bool) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 4 {
		return PasswordHash{}, false
	}
	for _, part := range parts {
		if part == "" {
			return PasswordHash{}, false
		}
	}

	cost, err := strconv.Atoi(parts[1])
	if err != nil || cost < 2 {
		return PasswordHash{}, false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return PasswordHash{}, false
	}

	key, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return PasswordHash{}, false
	}

	return PasswordHash{Algorithm: parts[0], Cost: cost, Salt: salt, Key: key}, true
}
