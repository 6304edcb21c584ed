// Package domain contains core concepts of the conversation layer.
// This file defines participant identities and related invariants.
// No runtime, network, or storage logic should be added here.
package domain

import "strconv"

// UserID is the opaque identity of a marketplace user.
type UserID int64

func (u UserID) String() string {
	return strconv.FormatInt(int64(u), 10)
}

// ParseUserID parses the decimal representation carried by access tokens and URLs.
func ParseUserID(s string) (UserID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return UserID(id), nil
}
