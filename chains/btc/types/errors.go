package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrDecode            = errors.New("malformed json")
	ErrInvalidIdentifier = errors.New("invalid identifier encoding")
	ErrAmountOutOfRange  = errors.New("amount out of range")
	ErrNonPhysical       = errors.New("non-physical value")
)

// DecodeError is returned when a response body does not match the wire shape.
// Field is the dotted path of the offending key, empty when the body itself
// is not a JSON object.
type DecodeError struct {
	Field string
	Err   error
}

func newDecodeError(err error) *DecodeError {
	de := &DecodeError{Err: err}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		de.Field = typeErr.Field
	}
	return de
}

// within prefixes the field path with the name of the enclosing object.
func (e *DecodeError) within(parent string) *DecodeError {
	field := parent
	if e.Field != "" {
		field = parent + "." + e.Field
	}
	return &DecodeError{Field: field, Err: e.Err}
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", ErrDecode, e.Err)
	}
	return fmt.Sprintf("%v: field %s: %v", ErrDecode, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// IdentifierError reports a hash that is not exactly 64 hex digits.
// Index is the position inside depends/spentby and -1 for scalar fields.
type IdentifierError struct {
	Field string
	Index int
	Value string
	Err   error
}

func (e *IdentifierError) Error() string {
	field := e.Field
	if e.Index >= 0 {
		field += "[" + strconv.Itoa(e.Index) + "]"
	}
	msg := fmt.Sprintf("%v in %s: %q", ErrInvalidIdentifier, field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IdentifierError) Unwrap() error { return e.Err }

func (e *IdentifierError) Is(target error) bool { return target == ErrInvalidIdentifier }

// AmountError reports a currency amount that has no satoshi representation.
type AmountError struct {
	Field string
	Value float64
	Err   error
}

func (e *AmountError) Error() string {
	msg := fmt.Sprintf("%v in %s: %v", ErrAmountOutOfRange, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AmountError) Unwrap() error { return e.Err }

func (e *AmountError) Is(target error) bool { return target == ErrAmountOutOfRange }

// NonPhysicalError reports a size, count or time no real node would produce.
type NonPhysicalError struct {
	Field string
	Value int64
}

func (e *NonPhysicalError) Error() string {
	return fmt.Sprintf("%v in %s: %d", ErrNonPhysical, e.Field, e.Value)
}

func (e *NonPhysicalError) Is(target error) bool { return target == ErrNonPhysical }
