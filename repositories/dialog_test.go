package repositories

import (
	"context"
	"dialog-hub/domain"
	"dialog-hub/errors"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newDialogRepository(t *testing.T, db *badger.DB) *DialogRepository {
	t.Helper()
	repository, err := NewDialogRepository(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func TestDialogRepository_CreateDialog(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newDialogRepository(t, openTestDB(t))

	// Given a first contact between users 1 and 2
	first, err := repository.CreateDialog(ctx, 1, 2)
	req.NoError(err)
	req.Equal(domain.DialogID(1), first.ID)

	// When the pair is created again in the other order
	again, err := repository.CreateDialog(ctx, 2, 1)

	// Then the same dialog is returned
	req.NoError(err)
	req.Equal(first.ID, again.ID)

	// And another pair gets a new id
	other, err := repository.CreateDialog(ctx, 1, 3)
	req.NoError(err)
	req.Equal(domain.DialogID(2), other.ID)
}

func TestDialogRepository_CreateDialog_RejectsSelfDialog(t *testing.T) {
	req := require.New(t)
	repository := newDialogRepository(t, openTestDB(t))

	_, err := repository.CreateDialog(context.Background(), 5, 5)
	req.ErrorIs(err, errors.ErrInvalidDialog)
}

func TestDialogRepository_GetDialog_NotFound(t *testing.T) {
	req := require.New(t)
	repository := newDialogRepository(t, openTestDB(t))

	_, err := repository.GetDialog(context.Background(), 99)
	req.ErrorIs(err, errors.ErrDialogNotFound)
}

func TestDialogRepository_BlockAndSoftDelete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newDialogRepository(t, openTestDB(t))
	dialog, err := repository.CreateDialog(ctx, 1, 2)
	req.NoError(err)

	// When user 2 blocks and user 1 hides the dialog
	blocker := domain.UserID(2)
	req.NoError(repository.SetBlocked(ctx, dialog.ID, &blocker))
	req.NoError(repository.SetDeletedFor(ctx, dialog.ID, 1))
	req.NoError(repository.SetDeletedFor(ctx, dialog.ID, 1))

	// Then the state is persisted once
	stored, err := repository.GetDialog(ctx, dialog.ID)
	req.NoError(err)
	req.NotNil(stored.BlockedBy)
	req.Equal(blocker, *stored.BlockedBy)
	req.Equal([]domain.UserID{1}, stored.DeletedFor)

	// When the block is lifted and the dialog resurrected
	req.NoError(repository.SetBlocked(ctx, dialog.ID, nil))
	req.NoError(repository.ClearDeletedFor(ctx, dialog.ID, []domain.UserID{1, 2}))

	stored, err = repository.GetDialog(ctx, dialog.ID)
	req.NoError(err)
	req.Nil(stored.BlockedBy)
	req.Empty(stored.DeletedFor)
}

func TestDialogRepository_DialogsOf(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newDialogRepository(t, openTestDB(t))

	d12, err := repository.CreateDialog(ctx, 1, 2)
	req.NoError(err)
	d31, err := repository.CreateDialog(ctx, 3, 1)
	req.NoError(err)
	_, err = repository.CreateDialog(ctx, 2, 3)
	req.NoError(err)

	dialogs, err := repository.DialogsOf(ctx, 1)
	req.NoError(err)
	req.Len(dialogs, 2)
	req.Equal(d12.ID, dialogs[0].ID)
	req.Equal(d31.ID, dialogs[1].ID)

	all, err := repository.AllDialogs(ctx)
	req.NoError(err)
	req.Len(all, 3)
}

func TestDialogRepository_IdsSurviveReopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	path := t.TempDir()

	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository, err := NewDialogRepository(db, slog.Default())
	req.NoError(err)
	first, err := repository.CreateDialog(ctx, 1, 2)
	req.NoError(err)
	req.NoError(repository.Close())
	req.NoError(db.Close())

	db, err = badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	repository, err = NewDialogRepository(db, slog.Default())
	req.NoError(err)
	defer repository.Close()

	second, err := repository.CreateDialog(ctx, 3, 4)
	req.NoError(err)
	req.Greater(second.ID, first.ID)

	existing, err := repository.CreateDialog(ctx, 2, 1)
	req.NoError(err)
	req.Equal(first.ID, existing.ID)
}
