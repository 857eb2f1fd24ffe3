package convert

import (
	"errors"
	"fmt"
)

// Error reports a value that cannot be represented in a target type.
type Error struct {
	// Value is the input value.
	Value any

	// Target is the canonical descriptor of the target type.
	Target string

	// Reason describes the failure.
	Reason string

	// Err is the underlying parse error, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("cannot convert %v (%T) to %s", e.Value, e.Value, e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConversionError returns true if err is a conversion Error.
func IsConversionError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

func fail(v any, target fmt.Stringer, reason string) error {
	return &Error{Value: v, Target: target.String(), Reason: reason}
}

func failWith(v any, target fmt.Stringer, err error) error {
	return &Error{Value: v, Target: target.String(), Err: err}
}
