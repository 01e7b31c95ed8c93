// Package routing resolves navigation broadcasts into routes and tracks
// which route is active.
//
// A Controller owns the resolved route for one host. It subscribes to a
// navbus.Bus, matches each broadcast against an immutable route table,
// applies the access guards, and materializes the route's element,
// importing the component first when it is not registered yet.
//
// A Tracker is a lighter observer that answers "is my route the active
// one" and offers the Navigate entry point used by links and buttons.
//
//	bus := navbus.New(history.NewMemory("/"))
//	ctrl := routing.NewController(bus, table,
//	    routing.WithAuth(checker.IsLoggedIn),
//	    routing.WithRegistry(reg),
//	)
//	if err := ctrl.Mount(); err != nil {
//	    return err // routing.ErrNoRoutesConfigured
//	}
//	defer ctrl.Unmount()
//
//	link := routing.NewTracker(bus, "nav-link", "/about")
//	link.Mount()
//	link.Navigate("") // goes to /about
//
// # Guards
//
// A Secured route seen without a session sends the document to the login
// path; a PublicOnly route seen with a session sends it to the home path.
// The secured guard is checked first. A redirect is a full document
// navigation and leaves the controller's state untouched.
//
// # Concurrency
//
// Broadcasts are handled synchronously on the goroutine that delivers them.
// Component imports run on their own goroutine and their completion is
// handed to the controller's Dispatcher, normally the host's Loop. Each
// materialization carries a generation number; a completion from an older
// generation is dropped, so a slow import can never replace the element of
// a newer navigation.
package routing
