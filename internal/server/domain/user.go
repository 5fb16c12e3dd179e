package domain

import "time"

// User is one registered account. Users come into existence on first
// successful GitHub login; GithubID is the immutable anchor for all lookups
// and is never reused across records.
type User struct {
	ID             int64
	GithubID       string
	GithubUsername string     // optional display name, refreshed on login
	GithubAvatar   string     // optional avatar URL, refreshed on login
	IsAdmin        bool       // flips only via the admin management path
	CreatedAt      time.Time
	LastLoginAt    *time.Time // nil until the second login
}
