package navbus

import (
	"errors"
	"fmt"
)

// ErrMissingRoute is returned when a navigation is requested without a target.
var ErrMissingRoute = errors.New("navbus: missing route")

// MissingRouteError reports a navigation request with no resolvable target.
// Host names the component that made the request.
type MissingRouteError struct {
	Host string
}

// Error implements error.
func (e *MissingRouteError) Error() string {
	if e.Host == "" {
		return ErrMissingRoute.Error()
	}
	return fmt.Sprintf("navbus: missing route: navigate() called on %s without a target or route", e.Host)
}

// Unwrap returns ErrMissingRoute.
func (e *MissingRouteError) Unwrap() error {
	return ErrMissingRoute
}
