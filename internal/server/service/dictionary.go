package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store"
)

const (
	// UserDictionaryLimit caps how many replacement entries one user may
	// keep.
	UserDictionaryLimit = 100

	maxEntryLength = 255
)

var (
	ErrDictionaryLimit = errors.New("dictionary_limit_exceeded")
	ErrInvalidEntry    = errors.New("invalid_dictionary_entry")
)

// DictionaryService manages the text-replacement dictionaries: one global
// set curated by admins and one private set per user, both applied to that
// user's transcripts.
type DictionaryService struct {
	Store store.Store
}

// UserEntries returns the caller's own entries.
func (s *DictionaryService) UserEntries(ctx context.Context, userID int64) ([]domain.UserDictionaryEntry, error) {
	return s.Store.UserDictionary().ListByUser(ctx, userID)
}

// AddUserEntry adds an entry for the user, enforcing the per-user limit. The
// count and insert run in one transaction so concurrent adds cannot exceed
// the limit.
func (s *DictionaryService) AddUserEntry(ctx context.Context, userID int64, pattern, replacement string) (domain.UserDictionaryEntry, error) {
	if err := validateEntry(pattern, replacement); err != nil {
		return domain.UserDictionaryEntry{}, err
	}

	var entry domain.UserDictionaryEntry
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.UserDictionary().CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count >= UserDictionaryLimit {
			return ErrDictionaryLimit
		}

		entry, err = tx.UserDictionary().Create(ctx, domain.UserDictionaryEntry{
			UserID:      userID,
			Pattern:     pattern,
			Replacement: replacement,
		})
		return err
	})
	if err != nil {
		return domain.UserDictionaryEntry{}, err
	}
	return entry, nil
}

// DeleteUserEntry removes one of the caller's entries. Ownership is part of
// the delete predicate, so a user cannot remove someone else's entry.
func (s *DictionaryService) DeleteUserEntry(ctx context.Context, userID, entryID int64) (bool, error) {
	return s.Store.UserDictionary().Delete(ctx, userID, entryID)
}

// GlobalEntries returns the admin-curated entries applied to everyone.
func (s *DictionaryService) GlobalEntries(ctx context.Context) ([]domain.GlobalDictionaryEntry, error) {
	return s.Store.GlobalDictionary().List(ctx)
}

// AddGlobalEntry adds a global entry, recording the admin who created it.
func (s *DictionaryService) AddGlobalEntry(ctx context.Context, pattern, replacement string, createdBy int64) (domain.GlobalDictionaryEntry, error) {
	if err := validateEntry(pattern, replacement); err != nil {
		return domain.GlobalDictionaryEntry{}, err
	}

	return s.Store.GlobalDictionary().Create(ctx, domain.GlobalDictionaryEntry{
		Pattern:     pattern,
		Replacement: replacement,
		CreatedBy:   &createdBy,
	})
}

// DeleteGlobalEntry removes a global entry, reporting whether one existed.
func (s *DictionaryService) DeleteGlobalEntry(ctx context.Context, entryID int64) (bool, error) {
	return s.Store.GlobalDictionary().Delete(ctx, entryID)
}

// ApplyReplacements rewrites text with the global entries followed by the
// user's own. Longer patterns run first so "voice gate" wins over "voice".
func (s *DictionaryService) ApplyReplacements(ctx context.Context, userID int64, text string) (string, error) {
	global, err := s.Store.GlobalDictionary().List(ctx)
	if err != nil {
		return "", err
	}
	personal, err := s.Store.UserDictionary().ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	type rule struct{ pattern, replacement string }
	rules := make([]rule, 0, len(global)+len(personal))
	for _, e := range global {
		rules = append(rules, rule{e.Pattern, e.Replacement})
	}
	for _, e := range personal {
		rules = append(rules, rule{e.Pattern, e.Replacement})
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].pattern) > len(rules[j].pattern)
	})

	for _, r := range rules {
		text = strings.ReplaceAll(text, r.pattern, r.replacement)
	}
	return text, nil
}

func validateEntry(pattern, replacement string) error {
	if strings.TrimSpace(pattern) == "" {
		return ErrInvalidEntry
	}
	if len(pattern) > maxEntryLength || len(replacement) > maxEntryLength {
		return ErrInvalidEntry
	}
	return nil
}
