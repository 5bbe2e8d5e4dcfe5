package reminder

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("reminder: no authenticated user")
	ErrNotFound         = errors.New("reminder: not found")
)

// PersistenceError reports a failed write-through. The store has already
// rolled its in-memory collection back when this is returned.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("reminder: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
