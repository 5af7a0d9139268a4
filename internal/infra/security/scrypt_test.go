package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// Low cost keeps the KDF fast in tests; the encoding logic is identical.
const testCost = 1024

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hasher := NewHasher(testCost)

	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !strings.HasPrefix(encoded, "scrypt:1024:") {
		t.Fatalf("unexpected encoding prefix: %q", encoded)
	}

	ok, err := hasher.Verify(encoded, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = hasher.Verify(encoded, "correct horse battery stapl")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewHasher(testCost)

	first, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}

	for _, encoded := range []string{first, second} {
		ok, err := hasher.Verify(encoded, "hunter2")
		if err != nil {
			t.Fatalf("Verify returned error: %v", err)
		}
		if !ok {
			t.Fatalf("hash %q did not verify", encoded)
		}
	}
}

func TestVerifyMalformedEncodings(t *testing.T) {
	hasher := NewHasher(testCost)

	salt := base64.StdEncoding.EncodeToString([]byte("some salt bytes"))
	key := base64.StdEncoding.EncodeToString([]byte("some key bytes"))

	cases := map[string]string{
		"empty":            "",
		"too few parts":    "scrypt:1024:" + salt,
		"too many parts":   "scrypt:1024:" + salt + ":" + key + ":extra",
		"empty algorithm":  ":1024:" + salt + ":" + key,
		"empty cost":       "scrypt::" + salt + ":" + key,
		"non-numeric cost": "scrypt:lots:" + salt + ":" + key,
		"zero cost":        "scrypt:0:" + salt + ":" + key,
		"bad salt base64":  "scrypt:1024:!!!:" + key,
		"bad key base64":   "scrypt:1024:" + salt + ":!!!",
	}

	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := hasher.Verify(encoded, "anything")
			if err != nil {
				t.Fatalf("malformed encoding must not error, got: %v", err)
			}
			if ok {
				t.Fatal("malformed encoding must never verify")
			}
		})
	}
}

func TestVerifyUnsupportedAlgorithm(t *testing.T) {
	hasher := NewHasher(testCost)

	salt := base64.StdEncoding.EncodeToString([]byte("some salt bytes"))
	key := base64.StdEncoding.EncodeToString([]byte("some key bytes"))
	encoded := "argon2id:1024:" + salt + ":" + key

	ok, err := hasher.Verify(encoded, "anything")
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got: %v", err)
	}
	if ok {
		t.Fatal("unsupported algorithm must not report a match")
	}
}

func TestVerifyStoredCostWins(t *testing.T) {
	// A hash derived at one cost must keep verifying after the configured
	// cost changes.
	old := NewHasher(testCost)
	encoded, err := old.Hash("pw")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	current := NewHasher(testCost * 2)
	ok, err := current.Verify(encoded, "pw")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("hash derived under previous cost must still verify")
	}
}

func TestParsePasswordHash(t *testing.T) {
	hasher := NewHasher(testCost)
	encoded, err := hasher.Hash("pw")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	parsed, ok := ParsePasswordHash(encoded)
	if !ok {
		t.Fatal("expected well-formed hash to parse")
	}
	if parsed.Algorithm != AlgorithmScrypt {
		t.Fatalf("unexpected algorithm %q", parsed.Algorithm)
	}
	if parsed.Cost != testCost {
		t.Fatalf("unexpected cost %d", parsed.Cost)
	}
	if len(parsed.Salt) != 64 || len(parsed.Key) != 64 {
		t.Fatalf("unexpected salt/key lengths %d/%d", len(parsed.Salt), len(parsed.Key))
	}
}
