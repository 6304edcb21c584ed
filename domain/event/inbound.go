package event

import (
	"dialog-hub/domain"
	"dialog-hub/errors"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Inbound is a decoded client frame.
type Inbound interface {
	InboundType() Type
}

type Send struct {
	DialogID domain.DialogID `json:"dialog_id" validate:"required,gt=0"`
	Text     string          `json:"text" validate:"required"`
}

func (Send) InboundType() Type { return SendType }

type Read struct {
	DialogID     domain.DialogID `json:"dialog_id" validate:"required,gt=0"`
	UpToSequence uint64          `json:"up_to_sequence" validate:"required,gt=0"`
}

func (Read) InboundType() Type { return ReadType }

type TypingRequest struct {
	DialogID domain.DialogID `json:"dialog_id" validate:"required,gt=0"`
}

func (TypingRequest) InboundType() Type { return TypingType }

type Ping struct{}

func (Ping) InboundType() Type { return PingType }

type envelope struct {
	Type Type `json:"type"`
}

// Decode parses and validates a single client frame.
// Every failure wraps errors.ErrProtocol.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrProtocol, err)
	}
	switch env.Type {
	case SendType:
		return decodeAs[Send](data)
	case ReadType:
		return decodeAs[Read](data)
	case TypingType:
		return decodeAs[TypingRequest](data)
	case PingType:
		return Ping{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", errors.ErrProtocol)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errors.ErrProtocol, env.Type)
	}
}

func decodeAs[T Inbound](data []byte) (Inbound, error) {
	var in T
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrProtocol, err)
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrProtocol, err)
	}
	return in, nil
}

// DialogOf returns the dialog targeted by in, 0 for frames without one.
func DialogOf(in Inbound) domain.DialogID {
	switch e := in.(type) {
	case Send:
		return e.DialogID
	case Read:
		return e.DialogID
	case TypingRequest:
		return e.DialogID
	default:
		return 0
	}
}
