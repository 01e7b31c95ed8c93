// Package history abstracts the browser history stack.
//
// A Backend is the only mutable resource shared by every router and tracker
// of a host. Memory implements it in process for tests and for the CLI; the
// server package provides a backend that mirrors a real browser tab.
package history

import (
	"net/url"
	"strings"
)

// Location is an addressable position inside the application.
type Location struct {
	// Path is the URL path ("/projects/42").
	Path string

	// Query is the raw query string without "?".
	Query string

	// Hash is the fragment including its leading "#", or empty.
	Hash string
}

// ParseLocation splits an application URL into its parts. Only the path,
// query and fragment are kept.
func ParseLocation(raw string) Location {
	var loc Location
	rest := raw
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		loc.Hash = rest[i:]
		if loc.Hash == "#" {
			loc.Hash = ""
		}
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		loc.Query = rest[i+1:]
		rest = rest[:i]
	}
	if u, err := url.Parse(rest); err == nil && (u.Scheme != "" || u.Host != "") {
		rest = u.Path
	}
	if rest == "" {
		rest = "/"
	}
	loc.Path = rest
	return loc
}

// PathWithHash returns the path and fragment, the key used to detect
// navigations that do not change anything addressable.
func (l Location) PathWithHash() string {
	return l.Path + l.Hash
}

// String returns the full application URL.
func (l Location) String() string {
	s := l.Path
	if l.Query != "" {
		s += "?" + l.Query
	}
	return s + l.Hash
}

// State is the object stored with a history entry.
type State struct {
	// Route is the navigation target that created the entry.
	Route string `json:"route"`
}

// Entry is one position in the history stack.
type Entry struct {
	State    State
	Location Location
}

// Backend is a history stack.
type Backend interface {
	// Location returns the current location.
	Location() Location

	// State returns the state of the current entry.
	State() State

	// PushState adds an entry after the current one, discarding any
	// forward entries.
	PushState(state State, url string)

	// ReplaceState overwrites the current entry.
	ReplaceState(state State, url string)

	// Assign performs a full document navigation to url, leaving the
	// single-page context.
	Assign(url string)

	// OnPop registers fn for entries activated by the user (back, forward).
	// Programmatic PushState and ReplaceState do not trigger it.
	OnPop(fn func(Entry)) (cancel func())
}
