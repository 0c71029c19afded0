package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates the backend reported the resource missing.
var ErrNotFound = errors.New("backend: not found")

// APIError is returned for any non-2xx backend response.
type APIError struct {
	Backend string
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s %s failed with status %d", e.Backend, e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s %s failed (%d): %s", e.Backend, e.Method, e.Path, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
