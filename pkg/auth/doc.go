// Package auth tracks who is signed in to a browser session.
//
// Principals are kept in a Store keyed by session ID. The HTTP middleware
// reads the session cookie and attaches the principal to the request
// context; a Guard carries it into the long-lived WebSocket session where
// the router asks it, without blocking, whether the session is signed in.
//
//	store := auth.NewMemoryStore()
//	r.Use(auth.Middleware(store, auth.DefaultCookieName))
//	guard := auth.NewGuard(principal)
//	ctrl := routing.NewController(bus, table, routing.WithAuth(guard.IsLoggedIn))
package auth
