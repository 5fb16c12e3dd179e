package service

import (
	"context"
	"errors"
	"time"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store"
	"github.com/quietlane/voicegate/pkg/slogx"
)

var ErrDuplicateEntry = errors.New("duplicate_entry")

// WhitelistService manages the set of GitHub identities permitted to
// authenticate. Removal is the system's revocation mechanism: it takes
// effect on the next request, not by invalidating issued tokens.
type WhitelistService struct {
	Store store.Store
}

// List returns all entries, most recently created first.
func (s *WhitelistService) List(ctx context.Context) ([]domain.WhitelistEntry, error) {
	return s.Store.Whitelist().List(ctx)
}

// Add whitelists a GitHub identity. Adding an identity that is already
// present fails with ErrDuplicateEntry rather than silently succeeding.
func (s *WhitelistService) Add(ctx context.Context, githubID, githubUsername string) (domain.WhitelistEntry, error) {
	if githubID == "" {
		return domain.WhitelistEntry{}, errors.New("github id must not be empty")
	}

	entry := domain.WhitelistEntry{
		GithubID:       githubID,
		GithubUsername: githubUsername,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Store.Whitelist().Add(ctx, entry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.WhitelistEntry{}, ErrDuplicateEntry
		}
		return domain.WhitelistEntry{}, err
	}

	slogx.FromContext(ctx).Info("whitelist entry added",
		"github_id", githubID, "github_username", githubUsername)
	return entry, nil
}

// Remove delists a GitHub identity, reporting whether an entry existed. Any
// still-valid token for that identity is rejected from the next request on.
func (s *WhitelistService) Remove(ctx context.Context, githubID string) (bool, error) {
	removed, err := s.Store.Whitelist().Remove(ctx, githubID)
	if err != nil {
		return false, err
	}
	if removed {
		slogx.FromContext(ctx).Info("whitelist entry removed", "github_id", githubID)
	}
	return removed, nil
}
