package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the default token lifetime. Tokens are long-lived;
// revocation happens through the per-request whitelist check, not expiry.
const DefaultTTL = 7 * 24 * time.Hour

// Claims are the access-token claims. The token is self-contained: everything
// a request needs to be authorized is the signature, these two ids, and exp.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric id of the user record (subject).
	UserID int64 `json:"user_id"`

	// GithubID is the external identity the user logged in with. It is the
	// join key for the per-request whitelist check.
	GithubID string `json:"github_id,omitempty"`
}

// NewClaims builds claims expiring at now+ttl.
func NewClaims(userID int64, githubID string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   userID,
		GithubID: githubID,
	}
}
