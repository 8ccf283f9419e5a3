package kg

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("kg: entity not found")

// NotFoundError reports that no entity of Class carries the label Name.
type NotFoundError struct {
	Class Class
	Name  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("kg: no %s labelled %q", e.Class, e.Name)
}

// Is makes errors.Is(err, ErrNotFound) true for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
