package service

import (
	"context"
	"errors"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store"
	"github.com/quietlane/voicegate/pkg/jwtx"
	"github.com/quietlane/voicegate/pkg/slogx"
)

// LoginService turns a verified external identity into a local user record
// and a signed bearer token. It is the only caller of the create-or-touch
// path; the per-request access pipeline never mutates user records.
type LoginService struct {
	Store store.Store
	Codec *jwtx.Codec
}

// Login completes an external login for an already-verified GitHub identity.
// The identity must be whitelisted; the user record is created on first
// login (never as admin) and its username, avatar and last-login stamp are
// refreshed on every subsequent one.
func (s *LoginService) Login(ctx context.Context, githubID, githubUsername, githubAvatar string) (domain.User, string, error) {
	l := slogx.FromContext(ctx)

	allowed, err := s.Store.Whitelist().IsWhitelisted(ctx, githubID)
	if err != nil {
		return domain.User{}, "", err
	}
	if !allowed {
		l.Info("login rejected, identity not whitelisted", "github_id", githubID)
		return domain.User{}, "", ErrNotWhitelisted
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByGithubID(ctx, githubID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			user, err = tx.Users().CreateUser(ctx, domain.User{
				GithubID:       githubID,
				GithubUsername: githubUsername,
				GithubAvatar:   githubAvatar,
			})
			if err != nil {
				return err
			}
			l.Info("user created", "user_id", user.ID, "github_id", githubID)
			return nil

		case err != nil:
			return err

		default:
			if err := tx.Users().TouchLogin(ctx, existing.ID, githubUsername, githubAvatar); err != nil {
				return err
			}
			existing.GithubUsername = githubUsername
			existing.GithubAvatar = githubAvatar
			user = existing
			return nil
		}
	})
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.Codec.Issue(user.ID, user.GithubID)
	if err != nil {
		return domain.User{}, "", err
	}

	return user, token, nil
}
