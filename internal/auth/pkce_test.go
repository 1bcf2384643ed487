package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
)

func TestPKCE(t *testing.T) {
	t.Run("Verifier Length And Alphabet", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			pair, err := GeneratePKCE()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(pair.Verifier) != VerifierLength {
				t.Errorf("expected verifier length %d, got %d", VerifierLength, len(pair.Verifier))
			}

			for _, ch := range pair.Verifier {
				if !strings.ContainsRune(verifierAlphabet, ch) {
					t.Errorf("verifier contains character outside allowed alphabet: %q", ch)
				}
			}
		}
	})

	t.Run("Challenge Is SHA256 Of Verifier", func(t *testing.T) {
		pair, err := GeneratePKCE()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		decoded, err := base64.RawURLEncoding.DecodeString(pair.Challenge)
		if err != nil {
			t.Fatalf("challenge should be valid unpadded base64url: %v", err)
		}

		sum := sha256.Sum256([]byte(pair.Verifier))
		if string(decoded) != string(sum[:]) {
			t.Error("decoded challenge does not equal SHA-256 of verifier")
		}

		if strings.HasSuffix(pair.Challenge, "=") {
			t.Error("challenge must not carry padding")
		}
	})

	t.Run("Challenge Is Deterministic", func(t *testing.T) {
		if ChallengeS256("fixed-verifier") != ChallengeS256("fixed-verifier") {
			t.Error("challenge must be a pure function of the verifier")
		}
	})

	t.Run("Pairs Are Independent", func(t *testing.T) {
		a, err := GeneratePKCE()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		b, err := GeneratePKCE()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if a.Verifier == b.Verifier {
			t.Error("consecutive verifiers should differ")
		}
	})
}
