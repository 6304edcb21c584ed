package repositories

import (
	"context"
	"dialog-hub/contract"
	stderrors "errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.IRevocationList = (*RevocationRepository)(nil)

// RevocationRepository is a denylist of token ids.
// Entries expire with the token they revoke, so the list never outgrows the live token set.
type RevocationRepository struct {
	db *badger.DB
}

func NewRevocationRepository(db *badger.DB) *RevocationRepository {
	return &RevocationRepository{db: db}
}

func (r *RevocationRepository) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(revokedKey(tokenID), nil).WithTTL(ttl))
	})
}

func (r *RevocationRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	revoked := false
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(revokedKey(tokenID))
		switch {
		case err == nil:
			revoked = true
			return nil
		case stderrors.Is(err, badger.ErrKeyNotFound):
			return nil
		default:
			return err
		}
	})
	return revoked, err
}
