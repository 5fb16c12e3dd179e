package service

import (
	"context"
	"errors"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store"
	"github.com/quietlane/voicegate/pkg/slogx"
)

var (
	ErrNotFound = errors.New("not_found")

	// ErrProtectedAccount guards admin accounts from deletion: an admin can
	// only be demoted first, never deleted outright.
	ErrProtectedAccount = errors.New("protected_account")

	// ErrSelfModification stops an admin from changing their own status, so
	// demotions always require a second administrator.
	ErrSelfModification = errors.New("self_modification")

	// ErrProtectedInitialAdmin keeps the configured bootstrap administrator
	// demotable by nobody, guaranteeing one recoverable admin identity.
	ErrProtectedInitialAdmin = errors.New("protected_initial_admin")
)

// UserService implements the privileged account-management operations and
// the invariants around them. Together the rules guarantee administrative
// control cannot be fully and accidentally relinquished through this API.
type UserService struct {
	Store store.Store

	// InitialAdminGithubID is the externally configured bootstrap admin
	// identity. Empty means no identity is protected.
	InitialAdminGithubID string
}

// ListUsers returns all accounts, most recently created first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// DeleteUser removes a non-admin account. Deleting an admin fails with
// ErrProtectedAccount; demote first.
func (s *UserService) DeleteUser(ctx context.Context, targetID int64) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		if target.IsAdmin {
			return ErrProtectedAccount
		}

		if _, err := tx.Users().DeleteUser(ctx, targetID); err != nil {
			return err
		}

		slogx.FromContext(ctx).Info("user deleted",
			"user_id", targetID, "github_id", target.GithubID)
		return nil
	})
}

// UpdateAdmin sets the target's admin flag on behalf of actingAdminID,
// enforcing the mutation invariants before committing.
func (s *UserService) UpdateAdmin(
	ctx context.Context,
	targetID int64,
	isAdmin bool,
	actingAdminID int64,
) (domain.User, error) {
	var updated domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		if target.ID == actingAdminID {
			return ErrSelfModification
		}

		if s.InitialAdminGithubID != "" &&
			target.GithubID == s.InitialAdminGithubID && !isAdmin {
			return ErrProtectedInitialAdmin
		}

		if err := tx.Users().SetAdmin(ctx, targetID, isAdmin); err != nil {
			return err
		}

		target.IsAdmin = isAdmin
		updated = target

		slogx.FromContext(ctx).Info("admin status changed",
			"user_id", targetID, "is_admin", isAdmin, "acting_admin_id", actingAdminID)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return updated, nil
}
