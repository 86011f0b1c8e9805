package message

import (
	"errors"
	"fmt"
)

// Sentinel errors. DecodeError values match them through errors.Is.
var (
	ErrEmpty          = errors.New("empty message")
	ErrMalformedField = errors.New("malformed field")

	// ErrNonContiguous is returned by Encode for an orientation without a position.
	ErrNonContiguous = errors.New("orientation requires a position")
	ErrBadLocator    = errors.New("invalid locator")
)

// Field names reported by DecodeError.
const (
	FieldLocator  = "locator"
	FieldPosition = "position"
	FieldYaw      = "yaw"
	FieldPitch    = "pitch"
	FieldRoll     = "roll"
)

// DecodeError describes why a datagram was discarded.
type DecodeError struct {
	Kind  error
	Field string
	Token string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %q: %v", e.Kind, e.Field, e.Token, e.Err)
	}
	return fmt.Sprintf("%s: %s %q", e.Kind, e.Field, e.Token)
}

func (e *DecodeError) Is(target error) bool {
	return target == e.Kind
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func malformed(field, token string, err error) *DecodeError {
	return &DecodeError{Kind: ErrMalformedField, Field: field, Token: token, Err: err}
}
