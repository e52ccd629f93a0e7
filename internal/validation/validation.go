// Package validation provides input validation functions for the hello table function.
// These are separated from the main package to enable unit testing without CGO.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxArgumentLength bounds the positional argument copied at bind time (1MB).
	MaxArgumentLength = 1024 * 1024

	// MaxTitleLength bounds the named title argument.
	MaxTitleLength = 255
)

// ErrInvalidArgument is wrapped by every validation failure.
var ErrInvalidArgument = errors.New("invalid argument")

// ValidateArgument checks the size of the positional argument copied at bind time.
// The host hands VARCHAR values over nul-terminated, so the text never holds a nul byte.
func ValidateArgument(arg string) error {
	if len(arg) > MaxArgumentLength {
		return fmt.Errorf("%w: argument exceeds maximum length of %d bytes", ErrInvalidArgument, MaxArgumentLength)
	}
	return nil
}

// ValidateTitle checks the named title argument. Titles are single line labels,
// empty is allowed.
func ValidateTitle(title string) error {
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds maximum length of %d characters", ErrInvalidArgument, MaxTitleLength)
	}
	for _, pattern := range []string{"\n", "\r"} {
		if strings.Contains(title, pattern) {
			return fmt.Errorf("%w: title contains invalid characters", ErrInvalidArgument)
		}
	}
	return nil
}
