package domain

import "time"

// UserDictionaryEntry is a per-user text replacement applied to that user's
// transcripts.
type UserDictionaryEntry struct {
	ID          int64
	UserID      int64
	Pattern     string
	Replacement string
	CreatedAt   time.Time
}

// GlobalDictionaryEntry is an admin-managed replacement applied to every
// user's transcripts. CreatedBy records the admin who added it and is nil if
// that account was later deleted.
type GlobalDictionaryEntry struct {
	ID          int64
	Pattern     string
	Replacement string
	CreatedBy   *int64
	CreatedAt   time.Time
}
