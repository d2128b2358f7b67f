package assessment

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when an inventory entry has an empty id.
var ErrMissingID = errors.New("inventory entry id is required")

// NotFoundError indicates that a question or inventory entry does not exist.
type NotFoundError struct {
	Kind string // "question", "software entry", "hardware entry"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// DuplicateIDError indicates that an inventory entry with the same id is
// already registered.
type DuplicateIDError struct {
	Kind string
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s with id %q already exists", e.Kind, e.ID)
}
