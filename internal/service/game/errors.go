package game

import (
	"errors"
	"fmt"
)

// Error kinds reported to clients. Every error returned by a room operation
// wraps exactly one of these.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrValidationFailed   = errors.New("validation failed")
)

var (
	ErrRoomNotFound   = newError(ErrNotFound, "room not found")
	ErrPlayerNotFound = newError(ErrNotFound, "player is not in this room")

	ErrNotHost           = newError(ErrForbidden, "only the host can start the game")
	ErrDrawerCannotGuess = newError(ErrForbidden, "the drawer cannot guess")
	ErrNotDrawer         = newError(ErrForbidden, "only the current drawer can do that")
	ErrWrongConnection   = newError(ErrForbidden, "identity is bound to another connection")

	ErrRoomFull    = newError(ErrCapacityExceeded, "room is full")
	ErrCanvasFull  = newError(ErrCapacityExceeded, "canvas holds too many strokes, clear it first")
	ErrRateLimited = newError(ErrCapacityExceeded, "too many messages, slow down")

	ErrNotEnoughPlayers = newError(ErrPreconditionFailed, "need at least 2 players to start")
	ErrInvalidState     = newError(ErrPreconditionFailed, "not allowed in the current room state")
	ErrGameCompleted    = newError(ErrPreconditionFailed, "the game is over")
	ErrTurnOver         = newError(ErrPreconditionFailed, "time is up for this turn")

	ErrEmptyGuess       = newError(ErrValidationFailed, "guess is empty")
	ErrUnknownRequest   = newError(ErrValidationFailed, "unknown request type")
	ErrMalformedRequest = newError(ErrValidationFailed, "malformed request")
	ErrTooManyPlayers   = newError(ErrValidationFailed, "maxPlayers exceeds the server limit")
	ErrTooManyRounds    = newError(ErrValidationFailed, "maxRounds exceeds the server limit")
)

const (
	KIND_NOT_FOUND           = "NotFound"
	KIND_FORBIDDEN           = "Forbidden"
	KIND_CAPACITY_EXCEEDED   = "CapacityExceeded"
	KIND_PRECONDITION_FAILED = "PreconditionFailed"
	KIND_VALIDATION_FAILED   = "ValidationFailed"
	KIND_INTERNAL            = "Internal"
)

// ErrorKind maps err to the kind string carried by the error event.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KIND_NOT_FOUND
	case errors.Is(err, ErrForbidden):
		return KIND_FORBIDDEN
	case errors.Is(err, ErrCapacityExceeded):
		return KIND_CAPACITY_EXCEEDED
	case errors.Is(err, ErrPreconditionFailed):
		return KIND_PRECONDITION_FAILED
	case errors.Is(err, ErrValidationFailed):
		return KIND_VALIDATION_FAILED
	default:
		return KIND_INTERNAL
	}
}

// gameError carries a client-facing message and unwraps to its kind.
type gameError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &gameError{kind: kind, msg: msg}
}

func (e *gameError) Error() string { return e.msg }

func (e *gameError) Unwrap() error { return e.kind }

// invalidf builds a ValidationFailed error for a malformed payload.
func invalidf(format string, args ...any) error {
	return newError(ErrValidationFailed, fmt.Sprintf(format, args...))
}
