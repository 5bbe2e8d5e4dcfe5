package client

import (
	"errors"
	"fmt"
	"net/http"
	"visuall/cmd/internal/reminder"
)

var ErrNotLoggedIn = errors.New("not logged in")

// RemoteRequestError is a non-2xx answer from the API, or a transport
// failure (Status 0).
type RemoteRequestError struct {
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *RemoteRequestError) Error() string {
	if e.Status == 0 {
		return "remote request failed: " + e.Message
	}
	return fmt.Sprintf("remote request failed (%d): %s", e.Status, e.Message)
}

// Retryable reports whether repeating the request may succeed.
func (e *RemoteRequestError) Retryable() bool {
	return e.Status == 0 || e.Status >= 500 || e.Status == 429
}

func (e *RemoteRequestError) Unwrap() error {
	return e.Err
}

// Is lets callers test remote answers against the store's sentinel errors.
func (e *RemoteRequestError) Is(target error) bool {
	switch target {
	case reminder.ErrNotFound:
		return e.Status == http.StatusNotFound
	case reminder.ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	}
	return false
}
