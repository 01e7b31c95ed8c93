package auth

import (
	"errors"
	"slices"
	"time"
)

var (
	// ErrNoSession is returned when a session ID has no principal.
	ErrNoSession = errors.New("auth: no session")

	// ErrSessionExpired indicates the session is no longer valid due to expiry.
	ErrSessionExpired = errors.New("auth: session expired")
)

// Principal represents the authenticated identity.
type Principal struct {
	ID    string   `json:"id"`
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`

	// ExpiresAtUnixMs is the hard expiry in unix milliseconds. Zero means
	// the principal does not expire.
	ExpiresAtUnixMs int64 `json:"expires_at_unix_ms"`
}

// ExpiresAt returns the expiry time, or the zero time.
func (p Principal) ExpiresAt() time.Time {
	if p.ExpiresAtUnixMs == 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.ExpiresAtUnixMs)
}

// Expired reports whether the principal has expired at now.
func (p Principal) Expired(now time.Time) bool {
	return p.ExpiresAtUnixMs != 0 && now.UnixMilli() >= p.ExpiresAtUnixMs
}

// HasRole reports whether the principal has role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}
