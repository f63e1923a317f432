package buildkit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotSet is matched by every error reporting an unset required property.
	ErrNotSet = errors.New("property not set")
	// ErrPartialToBuilder is returned by ToBuilder on a partial whose type has
	// no extensible builder.
	ErrPartialToBuilder = errors.New("partial cannot be converted back to a builder")
)

// UnsetPropertiesError is returned by Build when required properties are unset.
type UnsetPropertiesError struct {
	Type       string
	Properties []string
}

// Error implements error.
func (e *UnsetPropertiesError) Error() string {
	return fmt.Sprintf("%s: not set: [%s]", e.Type, strings.Join(e.Properties, ", "))
}

// Unwrap returns ErrNotSet.
func (e *UnsetPropertiesError) Unwrap() error {
	return ErrNotSet
}

// NotSetError is the panic value of a Partial getter whose property is unset.
type NotSetError struct {
	Type     string
	Property string
}

// Error implements error.
func (e NotSetError) Error() string {
	return fmt.Sprintf("%s: %s not set", e.Type, e.Property)
}

// Unwrap returns ErrNotSet.
func (e NotSetError) Unwrap() error {
	return ErrNotSet
}
