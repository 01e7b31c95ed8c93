package auth

import (
	"sync"
	"time"
)

// Guard holds the principal of one live session and answers IsLoggedIn
// without blocking. It is safe for concurrent use.
type Guard struct {
	mu        sync.RWMutex
	principal *Principal
	now       func() time.Time
}

// NewGuard creates a guard for p. A nil p is an anonymous session.
func NewGuard(p *Principal) *Guard {
	g := &Guard{now: time.Now}
	g.Set(p)
	return g
}

// IsLoggedIn reports whether the session has an unexpired principal.
func (g *Guard) IsLoggedIn() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.principal != nil && !g.principal.Expired(g.now())
}

// Principal returns the current principal, if any.
func (g *Guard) Principal() (Principal, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.principal == nil {
		return Principal{}, false
	}
	return *g.principal, true
}

// Set replaces the principal. A nil p signs the session out.
func (g *Guard) Set(p *Principal) {
	var cp *Principal
	if p != nil {
		v := *p
		cp = &v
	}
	g.mu.Lock()
	g.principal = cp
	g.mu.Unlock()
}
