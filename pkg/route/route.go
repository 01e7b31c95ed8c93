package route

import (
	"context"

	"github.com/vango-dev/vnav/pkg/component"
)

// Props are the parameters extracted from a path by the matcher.
type Props map[string]string

// Clone returns a copy of p. A nil Props clones to an empty map.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// RenderFunc produces an element for a matched route. It is called without
// router locks held and may navigate.
type RenderFunc func(props Props) component.Element

// ImportFunc makes a route's component instantiable. It is called when the
// component is not yet registered.
type ImportFunc func(ctx context.Context) error

// Definition is a static route table entry.
type Definition struct {
	// Path is the pattern matched against the request path.
	Path string

	// Component is the registry identifier of the element to instantiate.
	Component string

	// Render takes precedence over Component when set.
	Render RenderFunc

	// Secured requires an authenticated session.
	Secured bool

	// PublicOnly requires an unauthenticated session.
	PublicOnly bool

	// Import loads the component on first use.
	Import ImportFunc

	// Title is a human-readable name for the route.
	Title string
}

// MatchResult is the result of matching a path against a table.
type MatchResult struct {
	// Route is the matched definition. It points into the table and must
	// not be modified.
	Route *Definition

	// Props are the extracted route parameters.
	Props Props
}
