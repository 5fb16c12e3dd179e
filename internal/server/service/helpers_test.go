package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store/drivers/sqlite"
	"github.com/quietlane/voicegate/pkg/jwtx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	codec, err := jwtx.NewCodec("test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	return codec
}

// seedUser creates a whitelisted user, optionally with the admin flag set.
func seedUser(t *testing.T, st *sqlite.Store, githubID, username string, admin bool) domain.User {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.Whitelist().Add(ctx, domain.WhitelistEntry{
		GithubID:       githubID,
		GithubUsername: username,
	}))

	user, err := st.Users().CreateUser(ctx, domain.User{
		GithubID:       githubID,
		GithubUsername: username,
	})
	require.NoError(t, err)

	if admin {
		require.NoError(t, st.Users().SetAdmin(ctx, user.ID, true))
		user.IsAdmin = true
	}
	return user
}
