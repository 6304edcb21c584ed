package repositories

import (
	"dialog-hub/domain"
	"encoding/binary"
	"fmt"
)

// Key layout. Numbers are zero padded so that lexicographical order is numeric order.
//
//	dialog:{dialog_id}                      -> Dialog (json)
//	pair:{low_user}:{high_user}             -> dialog id
//	user:{user_id}:dialog:{dialog_id}       -> empty (membership index)
//	msgseq:{dialog_id}                      -> last assigned sequence (big endian uint64)
//	msg:{dialog_id}:{sequence}              -> Message (json)
//	revoked:{jti}                           -> empty, expires with the token
const (
	DialogPrefix   = "dialog:"
	MessagePrefix  = "msg:"
	RevokedPrefix  = "revoked:"
	dialogSequence = "seq:dialog"
)

func dialogKey(id domain.DialogID) []byte {
	return []byte(fmt.Sprintf("%s%019d", DialogPrefix, id))
}

func pairKey(a, b domain.UserID) []byte {
	if a > b {
		a, b = b, a
	}
	return []byte(fmt.Sprintf("pair:%019d:%019d", a, b))
}

func membershipPrefix(user domain.UserID) []byte {
	return []byte(fmt.Sprintf("user:%019d:dialog:", user))
}

func membershipKey(user domain.UserID, id domain.DialogID) []byte {
	return append(membershipPrefix(user), []byte(fmt.Sprintf("%019d", id))...)
}

func sequenceKey(dialog domain.DialogID) []byte {
	return []byte(fmt.Sprintf("msgseq:%019d", dialog))
}

func dialogMessagesPrefix(dialog domain.DialogID) []byte {
	return []byte(fmt.Sprintf("%s%019d:", MessagePrefix, dialog))
}

func messageKey(dialog domain.DialogID, sequence uint64) []byte {
	return append(dialogMessagesPrefix(dialog), []byte(fmt.Sprintf("%020d", sequence))...)
}

func revokedKey(tokenID string) []byte {
	return []byte(RevokedPrefix + tokenID)
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
