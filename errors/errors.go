package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrAuthentication   = fmt.Errorf("authentication failed")
	ErrNotParticipant   = fmt.Errorf("user is not a participant of the dialog")
	ErrBlocked          = fmt.Errorf("dialog is blocked by the other participant")
	ErrAlreadyBlocked   = fmt.Errorf("dialog is already blocked by the other participant")
	ErrNotBlocker       = fmt.Errorf("only the blocking participant can unblock")
	ErrDialogNotFound   = fmt.Errorf("dialog not found")
	ErrMessageNotFound  = fmt.Errorf("message not found")
	ErrInvalidDialog    = fmt.Errorf("invalid dialog")
	ErrEmptyBody        = fmt.Errorf("message body is empty")
	ErrBodyTooLong      = fmt.Errorf("message body is too long")
	ErrBackpressure     = fmt.Errorf("outbound queue overflow")
	ErrProtocol         = fmt.Errorf("malformed event")
	ErrConnectionClosed = fmt.Errorf("connection closed")
	ErrUnknownDriver    = fmt.Errorf("unknown store driver")
)

// Wire codes reported in error events.
const (
	CodeAuthentication = "authentication"
	CodeAuthorization  = "authorization"
	CodeBlocked        = "blocked"
	CodeNotFound       = "not_found"
	CodeBackpressure   = "backpressure"
	CodeProtocol       = "protocol"
	CodeValidation     = "validation"
	CodeConflict       = "conflict"
	CodeInternal       = "internal"
)

// Code classifies err into one of the wire codes.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrAuthentication):
		return CodeAuthentication
	case stderrors.Is(err, ErrNotParticipant), stderrors.Is(err, ErrNotBlocker):
		return CodeAuthorization
	case stderrors.Is(err, ErrBlocked):
		return CodeBlocked
	case stderrors.Is(err, ErrDialogNotFound), stderrors.Is(err, ErrMessageNotFound):
		return CodeNotFound
	case stderrors.Is(err, ErrBackpressure):
		return CodeBackpressure
	case stderrors.Is(err, ErrProtocol):
		return CodeProtocol
	case stderrors.Is(err, ErrEmptyBody), stderrors.Is(err, ErrBodyTooLong), stderrors.Is(err, ErrInvalidDialog):
		return CodeValidation
	case stderrors.Is(err, ErrAlreadyBlocked):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// HTTPStatus maps err to the status code returned by the REST layer.
func HTTPStatus(err error) int {
	switch Code(err) {
	case CodeAuthentication:
		return http.StatusUnauthorized
	case CodeAuthorization, CodeBlocked:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeProtocol:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeBackpressure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
