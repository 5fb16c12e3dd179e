// Package jwtx implements the signing and verification of the service's
// bearer tokens: compact HMAC-signed JWTs with a fixed algorithm, secret and
// TTL taken from configuration.
package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed, badly-signed and expired tokens.
	// Callers cannot tell which part of verification failed.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrUnsupportedAlgorithm reports a configured algorithm outside the
	// HMAC family.
	ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported algorithm")
)

// Codec issues and verifies tokens. It is stateless and safe for concurrent
// use; validity of a token is purely a function of the token bytes, the
// secret, and the clock.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewCodec builds a Codec for the given HMAC algorithm (HS256, HS384 or
// HS512). An empty algorithm defaults to HS256; a non-positive ttl defaults
// to DefaultTTL.
func NewCodec(secret string, algorithm string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Codec{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a fresh token for the given user. No side effects: issued
// tokens are never stored server-side.
func (c *Codec) Issue(userID int64, githubID string) (string, error) {
	return c.IssueAt(userID, githubID, time.Now().UTC())
}

// IssueAt is Issue with an explicit clock, for tests.
func (c *Codec) IssueAt(userID int64, githubID string, now time.Time) (string, error) {
	claims := NewClaims(userID, githubID, c.ttl, now)
	token := jwt.NewWithClaims(c.method, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the embedded claims. Any
// failure (bad structure, wrong signature, wrong algorithm, expired) is
// reported as ErrInvalidToken.
func (c *Codec) Verify(raw string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
