package menu

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is wrapped by every operation addressing an unknown identifier.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCategory reports a category name clash (case-insensitive).
	ErrDuplicateCategory = errors.New("a category with that name already exists")

	// ErrInvalidPartySize reports a party size outside PartySizes.
	ErrInvalidPartySize = errors.New("invalid party size")
)

// ValidationError lists every problem found in a submitted form.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}
