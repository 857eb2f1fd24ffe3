package dtype

import (
	"errors"
	"fmt"

	"github.com/roach88/dtengine/internal/canon"
)

// ErrRegistrySealed is returned when registering on a registry that has
// finished initialization.
var ErrRegistrySealed = errors.New("dtype registry is sealed")

// UnresolvedTypeError reports a descriptor that maps to no canonical type.
type UnresolvedTypeError struct {
	// Descriptor is the value the caller tried to resolve.
	Descriptor any

	// Reason explains why resolution failed.
	Reason string
}

func (e *UnresolvedTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unresolved type %s: %s", describe(e.Descriptor), e.Reason)
	}
	return fmt.Sprintf("unresolved type %s", describe(e.Descriptor))
}

// DuplicateRegistrationError reports a descriptor that is already bound to
// a different canonical type.
type DuplicateRegistrationError struct {
	Descriptor any
	Existing   Type
	Requested  Type
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("descriptor %s already registered as %s, cannot register as %s",
		describe(e.Descriptor), e.Existing, e.Requested)
}

// IsUnresolved returns true if err is an UnresolvedTypeError.
func IsUnresolved(err error) bool {
	var ue *UnresolvedTypeError
	return errors.As(err, &ue)
}

// IsDuplicateRegistration returns true if err is a DuplicateRegistrationError.
func IsDuplicateRegistration(err error) bool {
	var de *DuplicateRegistrationError
	return errors.As(err, &de)
}

// describe renders a descriptor for messages: strings quoted, Go types by
// name, everything else in canonical form.
func describe(d any) string {
	switch v := d.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case Type:
		return v.String()
	case interface{ String() string }:
		return v.String()
	default:
		return canon.Render(d)
	}
}
