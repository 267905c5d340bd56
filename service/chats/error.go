package chats

import "errors"

var ErrAlreadyExists = errors.New("chat already exists")
var ErrNotFound = errors.New("chat not found")
var ErrInternal = errors.New("internal failure")
var ErrConflict = errors.New("chat has been modified concurrently")

var ErrInvalid = errors.New("invalid request")
var ErrForbidden = errors.New("forbidden")
var ErrBlocked = errors.New("chat blocked")
var ErrCooldown = errors.New("chat cooldown")
var ErrNotYetAccepted = errors.New("chat not yet accepted")
var ErrExhausted = errors.New("chat exhausted")

// businessErrors are caused by the request against the current chat state, not by the service.
var businessErrors = []error{
	ErrNotFound,
	ErrInvalid,
	ErrForbidden,
	ErrBlocked,
	ErrCooldown,
	ErrNotYetAccepted,
	ErrExhausted,
}

// Kind returns the stable name of the error kind, reported to the clients and used as the metric label.
func Kind(err error) (k string) {
	switch {
	case err == nil:
		k = "None"
	case errors.Is(err, ErrForbidden):
		k = "Forbidden"
	case errors.Is(err, ErrBlocked):
		k = "ChatBlocked"
	case errors.Is(err, ErrCooldown):
		k = "ChatCooldown"
	case errors.Is(err, ErrNotYetAccepted):
		k = "ChatNotYetAccepted"
	case errors.Is(err, ErrExhausted):
		k = "ChatExhausted"
	case errors.Is(err, ErrNotFound):
		k = "NotFound"
	case errors.Is(err, ErrInvalid):
		k = "ValidationError"
	case errors.Is(err, ErrConflict):
		k = "Conflict"
	default:
		k = "Internal"
	}
	return
}
