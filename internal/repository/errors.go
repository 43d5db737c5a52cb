package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate value")

	ErrEmailTaken  = fmt.Errorf("%w: email", ErrDuplicate)
	ErrMobileTaken = fmt.Errorf("%w: mobile", ErrDuplicate)
)

const uniqueViolation = "23505"

// uniqueUserError maps a unique violation on users to ErrEmailTaken or
// ErrMobileTaken and returns other errors unchanged.
func uniqueUserError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	switch {
	case strings.Contains(pqErr.Constraint, "email"):
		return ErrEmailTaken
	case strings.Contains(pqErr.Constraint, "mobile"):
		return ErrMobileTaken
	default:
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
}
