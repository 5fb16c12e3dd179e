package domain

import "time"

// WhitelistEntry marks one GitHub identity as permitted to authenticate.
// Presence in the whitelist is the sole authority for whether a credential
// may be used right now: it is re-checked on every request, so removing an
// entry revokes access on the next request without invalidating tokens.
type WhitelistEntry struct {
	GithubID       string
	GithubUsername string // informational only
	CreatedAt      time.Time
}
