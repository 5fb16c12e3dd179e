package service

import (
	"context"
	"errors"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store"
	"github.com/quietlane/voicegate/pkg/jwtx"
	"github.com/quietlane/voicegate/pkg/slogx"
)

var (
	ErrMissingCredential = errors.New("missing_credential")
	ErrInvalidToken      = errors.New("invalid_token")
	ErrMalformedPayload  = errors.New("malformed_payload")
	ErrNotWhitelisted    = errors.New("not_whitelisted")
	ErrUserNotFound      = errors.New("user_not_found")
	ErrForbidden         = errors.New("forbidden")
)

// AuthService authorizes one request at a time. Each call performs its own
// reads against the whitelist and user store; nothing is cached between
// requests. That trades one extra lookup per request for revocation that
// takes effect on the very next request, without any token blacklist.
type AuthService struct {
	Codec *jwtx.Codec
	Store store.Store
}

// Authenticate runs the access pipeline for a raw bearer token, terminal on
// the first failure:
//
//  1. a token must be present
//  2. its signature and expiry must verify
//  3. its payload must carry both ids
//  4. the GitHub identity must be whitelisted right now
//  5. the user record must still exist
//
// On success the resolved user is returned for the request to carry.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (domain.User, error) {
	if raw == "" {
		return domain.User{}, ErrMissingCredential
	}

	claims, err := s.Codec.Verify(raw)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}

	if claims.UserID == 0 || claims.GithubID == "" {
		return domain.User{}, ErrMalformedPayload
	}

	// Whitelist is consulted fresh on every request. A cryptographically
	// valid token for a delisted identity fails here.
	allowed, err := s.Store.Whitelist().IsWhitelisted(ctx, claims.GithubID)
	if err != nil {
		return domain.User{}, err
	}
	if !allowed {
		slogx.FromContext(ctx).Info("rejected delisted identity", "github_id", claims.GithubID)
		return domain.User{}, ErrNotWhitelisted
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A valid token whose account row is gone. Deleted and
			// never-created accounts look the same to the caller.
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	return user, nil
}
