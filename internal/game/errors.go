package game

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInvalidParameter ErrorKind = iota
	KindUnauthorized
	KindConflict
	KindNotFound
	KindInvalidOperation
	KindInternal
)

// Error is a domain error with a kind the transport layer maps to a
// status code. Conflict errors carry the id of the game already in
// progress so the client can resume it.
type Error struct {
	Kind    ErrorKind
	Message string
	GameID  string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf extracts the kind from any error; unrecognized errors are
// treated as internal.
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// ConflictGameID returns the resumable game id carried by a conflict
// error, or "".
func ConflictGameID(err error) string {
	var ge *Error
	if errors.As(err, &ge) && ge.Kind == KindConflict {
		return ge.GameID
	}
	return ""
}

func invalidParam(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

func conflict(gameID, message string) *Error {
	return &Error{Kind: KindConflict, Message: message, GameID: gameID}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func invalidOp(message string) *Error {
	return &Error{Kind: KindInvalidOperation, Message: message}
}

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s: %v", message, err)}
}
