package repositories

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.IDialogStore = (*DialogRepository)(nil)

type DialogRepository struct {
	db  *badger.DB
	log *slog.Logger
	ids *badger.Sequence
	now func() time.Time
}

// NewDialogRepository leases dialog ids from a Badger sequence.
// Close must be called to give the unused part of the lease back.
// A read-only database gets a repository that cannot create dialogs.
func NewDialogRepository(db *badger.DB, log *slog.Logger) (*DialogRepository, error) {
	repository := &DialogRepository{db: db, log: log, now: time.Now}
	if db.Opts().ReadOnly {
		return repository, nil
	}
	ids, err := db.GetSequence([]byte(dialogSequence), 100)
	if err != nil {
		return nil, fmt.Errorf("dialog sequence: %w", err)
	}
	repository.ids = ids
	return repository, nil
}

func (r *DialogRepository) Close() error {
	if r.ids == nil {
		return nil
	}
	return r.ids.Release()
}

// CreateDialog returns the dialog of the pair, creating it on first contact.
// A pair owns at most one dialog for life.
func (r *DialogRepository) CreateDialog(_ context.Context, a, b domain.UserID) (domain.Dialog, error) {
	if a == b {
		return domain.Dialog{}, fmt.Errorf("%w: participants must differ (%d)", errors.ErrInvalidDialog, a)
	}
	var dialog domain.Dialog
	err := update(r.db, func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(a, b))
		switch {
		case err == nil:
			var id domain.DialogID
			if err = item.Value(func(val []byte) error {
				parsed, err := strconv.ParseInt(string(val), 10, 64)
				id = domain.DialogID(parsed)
				return err
			}); err != nil {
				return err
			}
			dialog, err = getDialog(txn, id)
			return err
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if r.ids == nil {
			return badger.ErrReadOnlyTxn
		}
		next, err := r.ids.Next()
		if err != nil {
			return err
		}
		dialog, err = domain.NewDialog(domain.DialogID(next+1), a, b, r.now().UTC())
		if err != nil {
			return err
		}
		if err = putDialog(txn, dialog); err != nil {
			return err
		}
		if err = txn.Set(pairKey(a, b), []byte(dialog.ID.String())); err != nil {
			return err
		}
		if err = txn.Set(membershipKey(a, dialog.ID), nil); err != nil {
			return err
		}
		return txn.Set(membershipKey(b, dialog.ID), nil)
	})
	return dialog, err
}

func (r *DialogRepository) GetDialog(_ context.Context, id domain.DialogID) (domain.Dialog, error) {
	var dialog domain.Dialog
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		dialog, err = getDialog(txn, id)
		return err
	})
	return dialog, err
}

func (r *DialogRepository) SetBlocked(_ context.Context, id domain.DialogID, by *domain.UserID) error {
	return r.mutate(id, func(d domain.Dialog) domain.Dialog {
		d.BlockedBy = by
		return d
	})
}

func (r *DialogRepository) SetDeletedFor(_ context.Context, id domain.DialogID, user domain.UserID) error {
	return r.mutate(id, func(d domain.Dialog) domain.Dialog {
		return d.WithDeletedFor(user)
	})
}

func (r *DialogRepository) ClearDeletedFor(_ context.Context, id domain.DialogID, users []domain.UserID) error {
	return r.mutate(id, func(d domain.Dialog) domain.Dialog {
		return d.WithoutDeletedFor(users...)
	})
}

// DialogsOf walks the membership index of user, oldest dialog first.
func (r *DialogRepository) DialogsOf(_ context.Context, user domain.UserID) ([]domain.Dialog, error) {
	var dialogs []domain.Dialog
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := membershipPrefix(user)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var ids []domain.DialogID
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw := string(it.Item().Key()[len(prefix):])
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				r.log.Warn("Skipping malformed membership key", "key", string(it.Item().Key()))
				continue
			}
			ids = append(ids, domain.DialogID(id))
		}
		for _, id := range ids {
			dialog, err := getDialog(txn, id)
			if err != nil {
				return err
			}
			dialogs = append(dialogs, dialog)
		}
		return nil
	})
	return dialogs, err
}

// AllDialogs scans every dialog record. Meant for operators, not request paths.
func (r *DialogRepository) AllDialogs(_ context.Context) ([]domain.Dialog, error) {
	var dialogs []domain.Dialog
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(DialogPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var dialog domain.Dialog
				if err := json.Unmarshal(val, &dialog); err != nil {
					return err
				}
				dialogs = append(dialogs, dialog)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return dialogs, err
}

func (r *DialogRepository) mutate(id domain.DialogID, fn func(domain.Dialog) domain.Dialog) error {
	return update(r.db, func(txn *badger.Txn) error {
		dialog, err := getDialog(txn, id)
		if err != nil {
			return err
		}
		return putDialog(txn, fn(dialog))
	})
}

func getDialog(txn *badger.Txn, id domain.DialogID) (domain.Dialog, error) {
	var dialog domain.Dialog
	item, err := txn.Get(dialogKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return dialog, fmt.Errorf("%w: %d", errors.ErrDialogNotFound, id)
	}
	if err != nil {
		return dialog, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &dialog)
	})
	return dialog, err
}

func putDialog(txn *badger.Txn, dialog domain.Dialog) error {
	bytes, err := json.Marshal(dialog)
	if err != nil {
		return err
	}
	return txn.Set(dialogKey(dialog.ID), bytes)
}
