package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds surfaced by the simulation. Wrapped errors keep their kind, so
// callers match with errors.Is.
var (
	ErrInput     = errors.New("input error")
	ErrOutput    = errors.New("output error")
	ErrConfig    = errors.New("config error")
	ErrInvariant = errors.New("invariant violation")
)

// WrapKind tags cause with kind. errors.Is matches both kind and cause.
func WrapKind(kind, cause error, format string, args ...interface{}) error {
	return errors.Wrapf(fmt.Errorf("%w: %w", kind, cause), format, args...)
}
