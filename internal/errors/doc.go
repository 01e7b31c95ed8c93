// Package errors provides structured, actionable error messages for vnav.
//
// Errors carry a code, a category, a short message, and optional detail,
// suggestion and source location. They are used for configuration and CLI
// failures, where a formatted explanation is more useful than a one-line
// message.
//
// # Error Categories
//
//   - config: vnav.json / vnav.yaml problems
//   - routing: route table problems detected before the engine starts
//   - loader: component import failures
//   - cli: command usage errors
//
// # Usage
//
//	err := errors.New("E102").
//	    WithLocation("vnav.yaml", 12, 5).
//	    WithSuggestion("Give every route a path that starts with '/'")
//
//	fmt.Fprint(os.Stderr, err.Format())
package errors
