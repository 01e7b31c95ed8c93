package vnav

import (
	"context"

	"github.com/vango-dev/vnav/pkg/history"
	"github.com/vango-dev/vnav/pkg/navbus"
	"github.com/vango-dev/vnav/pkg/route"
	"github.com/vango-dev/vnav/pkg/routing"
)

// Outcome classifies a Resolution.
type Outcome string

const (
	OutcomeResolved   Outcome = "resolved"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeRedirected Outcome = "redirected"
	OutcomeFailed     Outcome = "failed"
)

// Resolution is the result of resolving one URL outside a live session.
type Resolution struct {
	Outcome  Outcome
	URL      string
	Route    *route.Definition
	Props    route.Props
	Redirect string
	HTML     string
	Err      error
}

// Resolve runs url through a one-shot router, waiting for any lazy import,
// and reports what a visitor would see.
func (a *App) Resolve(ctx context.Context, url string, loggedIn bool) (*Resolution, error) {
	mem := history.NewMemory(url)
	bus := navbus.New(mem, navbus.WithLogger(a.logger.With("component", "navbus")))
	defer bus.Close()

	loaded := make(chan struct{}, 1)
	ctrl := routing.NewController(bus, a.table,
		routing.WithAuth(func() bool { return loggedIn }),
		routing.WithRegistry(a.registry),
		routing.WithDispatcher(routing.DispatcherFunc(func(fn func()) {
			fn()
			loaded <- struct{}{}
		})),
		routing.WithLogger(a.logger.With("component", "router")),
		routing.WithLoginPath(a.config.Auth.LoginPath),
		routing.WithHomePath(a.config.Auth.HomePath),
		routing.WithContext(ctx))
	if err := ctrl.Mount(); err != nil {
		return nil, err
	}
	defer ctrl.Unmount()

	if ctrl.Phase() == routing.PhaseResolving {
		select {
		case <-loaded:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	res := &Resolution{URL: url}
	if loads := mem.Loads(); len(loads) > 0 {
		res.Outcome = OutcomeRedirected
		res.Redirect = loads[len(loads)-1]
		return res, nil
	}

	state := ctrl.State()
	res.Route = state.CurrentRoute
	res.Props = state.Props
	res.Err = state.Err
	if state.Element != nil {
		res.HTML = state.Element.HTML()
	}
	switch {
	case state.CurrentRoute == nil:
		res.Outcome = OutcomeNotFound
	case state.Err != nil:
		res.Outcome = OutcomeFailed
	default:
		res.Outcome = OutcomeResolved
	}
	return res, nil
}
