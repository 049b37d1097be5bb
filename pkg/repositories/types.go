package repositories

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a match or one of its full syncs does not
// exist.
type ErrNotFound struct {
	MatchID string
}

func (e *ErrNotFound) Error() string {
	if e.MatchID == "" {
		return "not found"
	}
	return fmt.Sprintf("match %s not found", e.MatchID)
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}
