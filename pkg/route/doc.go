// Package route defines route tables and the matcher that resolves a path
// against them.
//
// A route maps a path pattern to a component identifier or a render
// function, with optional access guards and a lazy import hook:
//
//	table := route.NewTable(
//	    route.Definition{Path: "/", Component: "home-page"},
//	    route.Definition{Path: "/projects/:id:int", Component: "project-page", Secured: true},
//	    route.Definition{Path: "/login", Component: "login-page", PublicOnly: true},
//	    route.Definition{Path: "/docs/*slug", Component: "docs-page", Import: loadDocs},
//	)
//
//	m, ok := table.Match("/projects/42")
//	// m.Route.Component == "project-page", m.Props["id"] == "42"
//
// # Patterns
//
//	/about           static segment
//	/users/:id       parameter (any non-empty segment)
//	/users/:id:int   typed parameter (int, uuid, string)
//	/docs/*slug      catch-all, consumes the rest of the path
//
// Static segments win over parameters, and parameters win over catch-alls.
// When two definitions share the same pattern, the first one wins.
package route
