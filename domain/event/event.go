// Package event defines the frames exchanged with live connections.
// Outbound frames are produced by the router and encoded by sessions,
// inbound frames are decoded and validated here before dispatch.
package event

import (
	"dialog-hub/domain"
	"dialog-hub/errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	SendType        Type = "send"
	ReadType        Type = "read"
	TypingType      Type = "typing"
	PingType        Type = "ping"
	MessageType     Type = "message"
	AckType         Type = "ack"
	ReadReceiptType Type = "read_receipt"
	PresenceType    Type = "presence"
	PongType        Type = "pong"
	ErrorType       Type = "error"
	ConnectedType   Type = "connected"
)

type PresenceState string

const (
	Online  PresenceState = "online"
	Offline PresenceState = "offline"
)

// Outbound is any frame pushed to a connection.
type Outbound interface {
	EventType() Type
}

type Message struct {
	Type      Type            `json:"type"`
	DialogID  domain.DialogID `json:"dialog_id"`
	MessageID uuid.UUID       `json:"message_id"`
	SenderID  domain.UserID   `json:"sender_id"`
	Sequence  uint64          `json:"sequence"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"created_at"`
}

func (e Message) EventType() Type { return e.Type }

func NewMessage(m domain.Message) Message {
	return Message{
		Type:      MessageType,
		DialogID:  m.DialogID,
		MessageID: m.ID,
		SenderID:  m.SenderID,
		Sequence:  m.Sequence,
		Text:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

// Ack is echoed to every connection of the sender once the message is persisted.
// It carries the full message so that other devices of the sender converge.
type Ack struct {
	Type      Type            `json:"type"`
	DialogID  domain.DialogID `json:"dialog_id"`
	MessageID uuid.UUID       `json:"message_id"`
	Sequence  uint64          `json:"sequence"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"created_at"`
}

func (e Ack) EventType() Type { return e.Type }

func NewAck(m domain.Message) Ack {
	return Ack{
		Type:      AckType,
		DialogID:  m.DialogID,
		MessageID: m.ID,
		Sequence:  m.Sequence,
		Text:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

type ReadReceipt struct {
	Type         Type            `json:"type"`
	DialogID     domain.DialogID `json:"dialog_id"`
	UpToSequence uint64          `json:"up_to_sequence"`
	By           domain.UserID   `json:"by"`
}

func (e ReadReceipt) EventType() Type { return e.Type }

func NewReadReceipt(dialog domain.DialogID, upTo uint64, by domain.UserID) ReadReceipt {
	return ReadReceipt{Type: ReadReceiptType, DialogID: dialog, UpToSequence: upTo, By: by}
}

type Presence struct {
	Type   Type          `json:"type"`
	UserID domain.UserID `json:"user_id"`
	State  PresenceState `json:"state"`
}

func (e Presence) EventType() Type { return e.Type }

func NewPresence(user domain.UserID, state PresenceState) Presence {
	return Presence{Type: PresenceType, UserID: user, State: state}
}

type Typing struct {
	Type     Type            `json:"type"`
	DialogID domain.DialogID `json:"dialog_id"`
	UserID   domain.UserID   `json:"user_id"`
}

func (e Typing) EventType() Type { return e.Type }

func NewTyping(dialog domain.DialogID, user domain.UserID) Typing {
	return Typing{Type: TypingType, DialogID: dialog, UserID: user}
}

type Pong struct {
	Type Type `json:"type"`
}

func (e Pong) EventType() Type { return e.Type }

func NewPong() Pong { return Pong{Type: PongType} }

type Connected struct {
	Type   Type          `json:"type"`
	UserID domain.UserID `json:"user_id"`
}

func (e Connected) EventType() Type { return e.Type }

func NewConnected(user domain.UserID) Connected {
	return Connected{Type: ConnectedType, UserID: user}
}

// Error reports a failed request without closing the connection.
type Error struct {
	Type     Type            `json:"type"`
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	DialogID domain.DialogID `json:"dialog_id,omitempty"`
}

func (e Error) EventType() Type { return e.Type }

// Internal failures are reported without their cause.
func NewError(err error, dialog domain.DialogID) Error {
	code := errors.Code(err)
	message := err.Error()
	if code == errors.CodeInternal {
		message = "internal error"
	}
	return Error{Type: ErrorType, Code: code, Message: message, DialogID: dialog}
}
