package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/lamarqs/aria/internal/shared"
)

// VerifierLength is the length of generated PKCE code verifiers.
//
// RFC 7636 allows 43-128 characters; the maximum is used.
const VerifierLength = 128

// verifierAlphabet is the unreserved URL-safe character set from RFC 7636 §4.1.
const verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// PKCE holds a code verifier and its S256 challenge for one login attempt.
//
// The verifier must never be sent to the authorization endpoint, only the
// challenge. The pair is ephemeral: it lives from just before the redirect
// until the callback consumes it.
type PKCE struct {
	Verifier  string
	Challenge string
}

// GeneratePKCE produces a new verifier/challenge pair.
//
// The verifier is uniformly sampled from the unreserved alphabet using
// crypto/rand; the challenge is base64url(SHA-256(verifier)) without padding.
// Each call is independent.
func GeneratePKCE() (*PKCE, error) {
	verifier, err := randomVerifier(VerifierLength)
	if err != nil {
		return nil, err
	}
	return &PKCE{
		Verifier:  verifier,
		Challenge: ChallengeS256(verifier),
	}, nil
}

// ChallengeS256 derives the S256 code challenge for a verifier.
// It is a pure function: the same verifier always yields the same challenge.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomVerifier samples n characters from the verifier alphabet without
// modulo bias via rejection sampling.
func randomVerifier(n int) (string, error) {
	const alphabetSize = byte(len(verifierAlphabet))
	// Largest multiple of the alphabet size below 256; bytes at or above it
	// are rejected to keep the sampling uniform.
	limit := byte(256 - (256 % int(alphabetSize)))

	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrCryptoUnavailable, err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, verifierAlphabet[b%alphabetSize])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
