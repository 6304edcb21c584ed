package domain

import (
	"dialog-hub/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDialog_RejectsSelfDialog(t *testing.T) {
	req := require.New(t)
	_, err := NewDialog(1, 5, 5, time.Now())
	req.ErrorIs(err, errors.ErrInvalidDialog)
}

func TestDialog_CanSend(t *testing.T) {
	req := require.New(t)
	dialog, err := NewDialog(1, 10, 20, time.Now())
	req.NoError(err)

	// Outsiders are refused
	req.ErrorIs(dialog.CanSend(30), errors.ErrNotParticipant)

	// Given 20 blocked 10
	by := UserID(20)
	dialog.BlockedBy = &by

	// Then 10 is refused while 20 keeps writing
	req.ErrorIs(dialog.CanSend(10), errors.ErrBlocked)
	req.NoError(dialog.CanSend(20))
	req.True(dialog.IsBlocked())
}

func TestDialog_DeletedForIsPerUser(t *testing.T) {
	req := require.New(t)
	dialog, err := NewDialog(1, 10, 20, time.Now())
	req.NoError(err)

	hidden := dialog.WithDeletedFor(10).WithDeletedFor(10)
	req.Equal([]UserID{10}, hidden.DeletedFor)
	req.True(hidden.IsDeletedFor(10))
	req.False(hidden.IsDeletedFor(20))
	// The receiver is not modified
	req.False(dialog.IsDeletedFor(10))

	visible := hidden.WithoutDeletedFor(10, 20)
	req.Nil(visible.DeletedFor)
}

func TestDialog_Other(t *testing.T) {
	req := require.New(t)
	dialog := Dialog{ID: 1, ParticipantA: 10, ParticipantB: 20}
	req.Equal(UserID(20), dialog.Other(10))
	req.Equal(UserID(10), dialog.Other(20))
}

func TestMessage_TimestampsOnlyMoveForward(t *testing.T) {
	req := require.New(t)
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	message := Message{SenderID: 1, CreatedAt: created}

	// A delivery clocked before creation is clamped
	req.True(message.MarkDelivered(created.Add(-time.Second)))
	req.Equal(created, *message.DeliveredAt)
	req.False(message.MarkDelivered(created.Add(time.Hour)))
	req.Equal(created, *message.DeliveredAt)

	// Reading is set once
	readAt := created.Add(time.Minute)
	req.True(message.MarkRead(readAt))
	req.False(message.MarkRead(readAt.Add(time.Minute)))
	req.Equal(readAt, *message.ReadAt)
	req.False(message.IsUnreadFor(2))
}

func TestMessage_ReadImpliesDelivered(t *testing.T) {
	req := require.New(t)
	created := time.Now()
	message := Message{SenderID: 1, CreatedAt: created}
	req.True(message.IsUnreadFor(2))
	req.False(message.IsUnreadFor(1))

	message.MarkRead(created.Add(time.Second))

	req.True(message.IsDelivered())
	req.Equal(*message.DeliveredAt, *message.ReadAt)
}

func TestNormalizeBody(t *testing.T) {
	req := require.New(t)

	body, err := NormalizeBody("  hello  ", 10)
	req.NoError(err)
	req.Equal("hello", body)

	_, err = NormalizeBody(" \n\t ", 10)
	req.ErrorIs(err, errors.ErrEmptyBody)

	// Length is counted in runes
	_, err = NormalizeBody(strings.Repeat("é", 10), 10)
	req.NoError(err)
	_, err = NormalizeBody(strings.Repeat("é", 11), 10)
	req.ErrorIs(err, errors.ErrBodyTooLong)
}
