package board

import (
	"errors"
	"fmt"
)

// ErrUnknownPlayer is returned when an operation addresses a player that is
// not on the board. It is expected when a caller races a removal, so the
// board logs it and leaves its state untouched.
type ErrUnknownPlayer struct {
	ID PlayerID
}

func (e *ErrUnknownPlayer) Error() string {
	return fmt.Sprintf("unknown player %d", e.ID)
}

func IsUnknownPlayer(err error) bool {
	var target *ErrUnknownPlayer
	return errors.As(err, &target)
}

// ErrUnknownField is returned when a field is used with a board whose schema
// does not declare it.
type ErrUnknownField struct {
	Field string
	Scope string
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("field %s is not a %s field of this board", e.Field, e.Scope)
}

func IsUnknownField(err error) bool {
	var target *ErrUnknownField
	return errors.As(err, &target)
}

// ErrMalformedDocument is returned by Load when the document is not shaped
// like a board at all. Per-field problems never produce it.
type ErrMalformedDocument struct {
	Reason string
	Err    error
}

func (e *ErrMalformedDocument) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed board document: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed board document: %s", e.Reason)
}

func (e *ErrMalformedDocument) Unwrap() error {
	return e.Err
}

func IsMalformedDocument(err error) bool {
	var target *ErrMalformedDocument
	return errors.As(err, &target)
}
