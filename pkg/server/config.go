package server

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/vango-dev/vnav/pkg/auth"
	"github.com/vango-dev/vnav/pkg/routing"
)

// Config holds server settings.
type Config struct {
	// Address is the listen address.
	// Default: "localhost:3000".
	Address string

	// Title is the document title used when a route has none.
	Title string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading a full request.
	// Default: 10 seconds.
	ReadTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 15 seconds.
	ShutdownTimeout time.Duration

	// AllowedOrigins lists origins, besides the server's own, allowed to open
	// live sessions.
	AllowedOrigins []string

	// CookieName is the session cookie name.
	// Default: auth.DefaultCookieName.
	CookieName string

	// LoginPath and HomePath are the guard redirect targets.
	LoginPath string
	HomePath  string

	// MetricsPath serves Prometheus metrics. Empty disables the endpoint.
	MetricsPath string

	// Session limits.

	// PongWait is how long a live session waits for any client frame.
	// Default: 60 seconds.
	PongWait time.Duration

	// WriteTimeout bounds a single WebSocket write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// MaxMessageSize is the maximum size of an incoming message.
	// Default: 16KB.
	MaxMessageSize int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:3000",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		CookieName:        auth.DefaultCookieName,
		LoginPath:         routing.DefaultLoginPath,
		HomePath:          routing.DefaultHomePath,
		MetricsPath:       "/metrics",
		PongWait:          60 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxMessageSize:    16 * 1024,
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.CookieName == "" {
		out.CookieName = defaults.CookieName
	}
	if out.LoginPath == "" {
		out.LoginPath = defaults.LoginPath
	}
	if out.HomePath == "" {
		out.HomePath = defaults.HomePath
	}
	if out.PongWait == 0 {
		out.PongWait = defaults.PongWait
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	return &out
}

// checkOrigin accepts requests without an Origin header, same-origin
// requests, and origins listed in AllowedOrigins.
func (c *Config) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(c.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}
