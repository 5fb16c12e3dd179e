package service

import (
	"context"
	"testing"
	"time"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/stretchr/testify/require"
)

func TestWhitelistAdd(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	svc := &WhitelistService{Store: st}

	t.Run("adds an entry", func(t *testing.T) {
		entry, err := svc.Add(ctx, "gh-1001", "alice")
		require.NoError(t, err)
		require.Equal(t, "gh-1001", entry.GithubID)

		allowed, err := st.Whitelist().IsWhitelisted(ctx, "gh-1001")
		require.NoError(t, err)
		require.True(t, allowed)
	})

	t.Run("returned entry matches the stored row", func(t *testing.T) {
		entry, err := svc.Add(ctx, "gh-3003", "carol")
		require.NoError(t, err)
		require.False(t, entry.CreatedAt.IsZero())

		entries, err := svc.List(ctx)
		require.NoError(t, err)

		var stored domain.WhitelistEntry
		for _, e := range entries {
			if e.GithubID == "gh-3003" {
				stored = e
			}
		}
		require.Equal(t, "gh-3003", stored.GithubID)
		require.WithinDuration(t, stored.CreatedAt, entry.CreatedAt, time.Second)
	})

	t.Run("duplicates are rejected", func(t *testing.T) {
		_, err := svc.Add(ctx, "gh-1001", "alice-again")
		require.ErrorIs(t, err, ErrDuplicateEntry)
	})

	t.Run("empty github id is rejected", func(t *testing.T) {
		_, err := svc.Add(ctx, "", "nobody")
		require.Error(t, err)
	})
}

func TestWhitelistRemove(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	svc := &WhitelistService{Store: st}

	_, err := svc.Add(ctx, "gh-2002", "bob")
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, "gh-2002")
	require.NoError(t, err)
	require.True(t, removed)

	allowed, err := st.Whitelist().IsWhitelisted(ctx, "gh-2002")
	require.NoError(t, err)
	require.False(t, allowed)

	removed, err = svc.Remove(ctx, "gh-2002")
	require.NoError(t, err)
	require.False(t, removed)
}
