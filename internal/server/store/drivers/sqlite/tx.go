package sqlite

import (
	"database/sql"

	"github.com/quietlane/voicegate/internal/server/store"
)

// Tx is a transaction-scoped store sharing the repository implementations
// with the root Store.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Users() store.Users                       { return &usersRepo{db: t.tx} }
func (t *Tx) Whitelist() store.Whitelist               { return &whitelistRepo{db: t.tx} }
func (t *Tx) UserDictionary() store.UserDictionary     { return &userDictionaryRepo{db: t.tx} }
func (t *Tx) GlobalDictionary() store.GlobalDictionary { return &globalDictionaryRepo{db: t.tx} }

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }
