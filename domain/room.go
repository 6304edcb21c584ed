package domain

import (
	"dialog-hub/errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
)

type DialogID int64

func (d DialogID) String() string {
	return strconv.FormatInt(int64(d), 10)
}

// Dialog is a two-participant conversation thread.
// Participants are fixed at creation; only the block and soft-delete state changes.
type Dialog struct {
	ID           DialogID  `json:"id"`
	ParticipantA UserID    `json:"participant_a"`
	ParticipantB UserID    `json:"participant_b"`
	BlockedBy    *UserID   `json:"blocked_by,omitempty"`
	DeletedFor   []UserID  `json:"deleted_for,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewDialog(id DialogID, a, b UserID, at time.Time) (Dialog, error) {
	d := Dialog{ID: id, ParticipantA: a, ParticipantB: b, CreatedAt: at}
	return d, d.Validate()
}

func (d Dialog) Validate() error {
	if d.ParticipantA == d.ParticipantB {
		return fmt.Errorf("%w: participants must differ (%d)", errors.ErrInvalidDialog, d.ParticipantA)
	}
	return nil
}

func (d Dialog) IsParticipant(user UserID) bool {
	return user == d.ParticipantA || user == d.ParticipantB
}

// Other returns the participant that is not user.
// The result is meaningless when user is not a participant.
func (d Dialog) Other(user UserID) UserID {
	if user == d.ParticipantA {
		return d.ParticipantB
	}
	return d.ParticipantA
}

// CanSend reports whether user may append to the dialog.
// The blocker keeps the ability to send; only the blocked side is refused.
func (d Dialog) CanSend(user UserID) error {
	if !d.IsParticipant(user) {
		return errors.ErrNotParticipant
	}
	if d.BlockedBy != nil && *d.BlockedBy == d.Other(user) {
		return errors.ErrBlocked
	}
	return nil
}

func (d Dialog) IsBlocked() bool {
	return d.BlockedBy != nil
}

func (d Dialog) IsDeletedFor(user UserID) bool {
	return lo.Contains(d.DeletedFor, user)
}

// WithDeletedFor returns a copy hidden for user.
func (d Dialog) WithDeletedFor(user UserID) Dialog {
	if !d.IsDeletedFor(user) {
		d.DeletedFor = append(append([]UserID(nil), d.DeletedFor...), user)
	}
	return d
}

// WithoutDeletedFor returns a copy visible again for users.
func (d Dialog) WithoutDeletedFor(users ...UserID) Dialog {
	d.DeletedFor = lo.Without(d.DeletedFor, users...)
	if len(d.DeletedFor) == 0 {
		d.DeletedFor = nil
	}
	return d
}
