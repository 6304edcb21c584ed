package runtime

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/errors"
	"fmt"
)

// Unread derives unread counters from the message log on every call.
// There is no stored counter to drift from the read state.
type Unread struct {
	dialogs  contract.IDialogStore
	messages contract.IMessageLog
}

func NewUnread(dialogs contract.IDialogStore, messages contract.IMessageLog) *Unread {
	return &Unread{dialogs: dialogs, messages: messages}
}

// Count sums the unread messages of user over the dialogs it has not hidden.
func (u *Unread) Count(ctx context.Context, user domain.UserID) (int, error) {
	dialogs, err := u.dialogs.DialogsOf(ctx, user)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, dialog := range dialogs {
		if dialog.IsDeletedFor(user) {
			continue
		}
		count, err := u.messages.CountUnread(ctx, dialog.ID, user)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (u *Unread) CountInDialog(ctx context.Context, user domain.UserID, dialogID domain.DialogID) (int, error) {
	dialog, err := u.dialogs.GetDialog(ctx, dialogID)
	if err != nil {
		return 0, err
	}
	if !dialog.IsParticipant(user) {
		return 0, fmt.Errorf("%w: user %d, dialog %d", errors.ErrNotParticipant, user, dialogID)
	}
	return u.messages.CountUnread(ctx, dialogID, user)
}
