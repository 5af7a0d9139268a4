package security

import (
	"strings"
	"testing"
)

func TestIssueCodes(t *testing.T) {
	issuer := NewCodeIssuer()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code, err := issuer.Issue()
		if err != nil {
			t.Fatalf("Issue returned error: %v", err)
		}
		if code == "" {
			t.Fatal("Issue returned empty code")
		}
		if strings.ContainsAny(code, "+/=") {
			t.Fatalf("code %q is not URL-safe", code)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code issued: %q", code)
		}
		seen[code] = struct{}{}
	}
}

func TestIssueCodeLength(t *testing.T) {
	issuer := NewCodeIssuer()

	code, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	// 32 bytes base64url without padding.
	if len(code) != 43 {
		t.Fatalf("unexpected code length %d", len(code))
	}
}
