package service

import (
	"context"
	"errors"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store"
	"github.com/quietlane/voicegate/pkg/slogx"
)

// BootstrapService seeds the whitelist with the configured initial admin on
// first startup. It is safe to invoke repeatedly and from concurrently
// starting processes: the emptiness-check-then-insert race resolves through
// the whitelist's primary key, and the resulting conflict is treated as
// success rather than held off with a lock.
type BootstrapService struct {
	Store store.Store

	// InitialAdminGithubID disables bootstrapping entirely when empty.
	InitialAdminGithubID       string
	InitialAdminGithubUsername string
}

// EnsureInitialAdmin runs once per process start, before serving traffic.
// It only ever acts on a completely empty whitelist, so an operator's
// existing configuration is never clobbered.
func (s *BootstrapService) EnsureInitialAdmin(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	if s.InitialAdminGithubID == "" {
		return nil
	}

	empty, err := s.Store.Whitelist().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	err = s.Store.Whitelist().Add(ctx, domain.WhitelistEntry{
		GithubID:       s.InitialAdminGithubID,
		GithubUsername: s.InitialAdminGithubUsername,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Another process got there first. That is the outcome we
			// wanted, so it is not surfaced to the caller.
			l.Debug("initial admin already whitelisted, skipping")
			return nil
		}
		return err
	}

	l.Info("initial admin added to whitelist",
		"github_id", s.InitialAdminGithubID,
		"github_username", s.InitialAdminGithubUsername,
	)
	return nil
}
