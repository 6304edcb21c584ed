// Package domain contains core concepts of the conversation layer.
// This file defines Message records and their timestamp rules.
// A message is immutable once appended, except for DeliveredAt and ReadAt
// which only ever move forward.
package domain

import (
	"dialog-hub/errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultMaxBodyLength mirrors the REST schema limit on message text.
const DefaultMaxBodyLength = 5000

type Message struct {
	ID          uuid.UUID  `json:"id"`
	DialogID    DialogID   `json:"dialog_id"`
	SenderID    UserID     `json:"sender_id"`
	Sequence    uint64     `json:"sequence"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

func (m Message) IsDelivered() bool { return m.DeliveredAt != nil }

func (m Message) IsRead() bool { return m.ReadAt != nil }

// MarkDelivered sets DeliveredAt once. It never moves the timestamp
// before CreatedAt and never overwrites an existing value.
func (m *Message) MarkDelivered(at time.Time) bool {
	if m.DeliveredAt != nil {
		return false
	}
	if at.Before(m.CreatedAt) {
		at = m.CreatedAt
	}
	m.DeliveredAt = &at
	return true
}

// MarkRead sets ReadAt once. A message read without a recorded delivery
// is considered delivered at the same instant.
func (m *Message) MarkRead(at time.Time) bool {
	if m.ReadAt != nil {
		return false
	}
	m.MarkDelivered(at)
	if at.Before(*m.DeliveredAt) {
		at = *m.DeliveredAt
	}
	m.ReadAt = &at
	return true
}

// IsUnreadFor reports whether the message counts towards user's unread total.
func (m Message) IsUnreadFor(user UserID) bool {
	return m.SenderID != user && m.ReadAt == nil
}

// NormalizeBody trims the body and checks its length in runes.
func NormalizeBody(body string, maxLength int) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", errors.ErrEmptyBody
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxBodyLength
	}
	if n := utf8.RuneCountInString(body); n > maxLength {
		return "", fmt.Errorf("%w: %d > %d", errors.ErrBodyTooLong, n, maxLength)
	}
	return body, nil
}
