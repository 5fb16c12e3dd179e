package store

import (
	"context"
	"errors"

	"github.com/quietlane/voicegate/internal/server/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories are exposed as methods to keep concerns
// tidy and stop callers from accidentally nesting transactions.
type Store interface {
	Users() Users
	Whitelist() Whitelist
	UserDictionary() UserDictionary
	GlobalDictionary() GlobalDictionary

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. All multi-step
	// mutations go through this so partial application is never observable.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Users() Users
	Whitelist() Whitelist
	UserDictionary() UserDictionary
	GlobalDictionary() GlobalDictionary

	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by numeric id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByGithubID returns a user by its external GitHub identity.
	GetUserByGithubID(ctx context.Context, githubID string) (domain.User, error)

	// CreateUser inserts a new user and returns it with the assigned id.
	// The github_id column is UNIQUE; a duplicate insert fails with
	// ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// TouchLogin refreshes the mutable login-derived fields (username,
	// avatar) and stamps last_login_at. It never touches is_admin.
	TouchLogin(ctx context.Context, id int64, username, avatar string) error

	// SetAdmin flips the is_admin flag. No policy checks happen here; the
	// admin invariants are enforced by the caller.
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error

	// DeleteUser removes a user, reporting whether a row existed.
	DeleteUser(ctx context.Context, id int64) (bool, error)

	// ListUsers returns all users, most recently created first.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Whitelist interface {
	// IsWhitelisted reports whether the GitHub identity is currently
	// permitted. Always a fresh read, never cached.
	IsWhitelisted(ctx context.Context, githubID string) (bool, error)

	// Add inserts an entry. A duplicate add fails with ErrAlreadyExists.
	Add(ctx context.Context, e domain.WhitelistEntry) error

	// Remove deletes an entry, reporting whether one existed. Removing a
	// non-member is not an error.
	Remove(ctx context.Context, githubID string) (bool, error)

	// List returns all entries, most recently created first.
	List(ctx context.Context) ([]domain.WhitelistEntry, error)

	// IsEmpty reports whether the whitelist has no entries.
	IsEmpty(ctx context.Context) (bool, error)
}

type UserDictionary interface {
	// ListByUser returns the user's entries in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]domain.UserDictionaryEntry, error)

	// CountByUser returns the number of entries the user has.
	CountByUser(ctx context.Context, userID int64) (int, error)

	// Create inserts an entry and returns it with the assigned id.
	Create(ctx context.Context, e domain.UserDictionaryEntry) (domain.UserDictionaryEntry, error)

	// Delete removes an entry owned by userID, reporting whether a row
	// matched both id and owner.
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

type GlobalDictionary interface {
	// List returns all global entries in insertion order.
	List(ctx context.Context) ([]domain.GlobalDictionaryEntry, error)

	// Create inserts an entry and returns it with the assigned id.
	Create(ctx context.Context, e domain.GlobalDictionaryEntry) (domain.GlobalDictionaryEntry, error)

	// Delete removes an entry, reporting whether a row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}
