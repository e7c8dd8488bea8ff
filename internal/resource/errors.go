package resource

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass groups request failures by how the caller must react to them.
type ErrorClass string

const (
	// ErrorClassCancelled marks a request aborted by its own context. It is
	// never shown to the user.
	ErrorClassCancelled ErrorClass = "cancelled"

	// ErrorClassNetwork covers transport failures, non-2xx responses and
	// undecodable bodies.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError describes a request the server answered with a non-2xx status.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.URL, e.StatusCode)
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404
}

// Classify maps an error returned by the client to its class. A nil error
// has no class.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ErrorClassCancelled
	default:
		return ErrorClassNetwork
	}
}
