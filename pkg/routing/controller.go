package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vnav/pkg/component"
	"github.com/vango-dev/vnav/pkg/history"
	"github.com/vango-dev/vnav/pkg/metrics"
	"github.com/vango-dev/vnav/pkg/navbus"
	"github.com/vango-dev/vnav/pkg/route"
)

// Sentinel errors.
var (
	// ErrNoRoutesConfigured is returned when a controller has an empty route
	// table. It is a configuration error and is never retried.
	ErrNoRoutesConfigured = errors.New("routing: no routes configured")

	// ErrNotMounted is returned by Resolve on a controller that is not mounted.
	ErrNotMounted = errors.New("routing: controller not mounted")
)

const tracerName = "github.com/vango-dev/vnav/pkg/routing"

// Default guard redirect targets.
const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/"
)

// AuthFunc reports whether the host has an authenticated session. It is
// called during resolution and must not block.
type AuthFunc func() bool

// Phase is the controller's position in its lifecycle.
type Phase uint8

const (
	PhaseUnmounted Phase = iota
	PhaseResolving
	PhaseResolved
	PhaseRedirecting
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUnmounted:
		return "unmounted"
	case PhaseResolving:
		return "resolving"
	case PhaseResolved:
		return "resolved"
	case PhaseRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// State is a snapshot of a controller's navigation state.
type State struct {
	Phase Phase

	// CurrentRoute is a copy of the matched definition whose Path carries
	// the current fragment. Nil when nothing matched.
	CurrentRoute *route.Definition

	// Props are the parameters of the last match.
	Props route.Props

	// Element is the materialized element, or nil.
	Element component.Element

	// LastRoute is the path+fragment of the last materialization.
	LastRoute string

	// Location is the location of the last resolution.
	Location history.Location

	// Err is the last materialization error, if any.
	Err error
}

// Option configures a Controller.
type Option func(*Controller)

// WithAuth sets the authentication check. Without it every session is
// anonymous.
func WithAuth(fn AuthFunc) Option {
	return func(c *Controller) {
		c.isLoggedIn = fn
	}
}

// WithRegistry sets the component registry.
func WithRegistry(r *component.Registry) Option {
	return func(c *Controller) {
		c.registry = r
	}
}

// WithDispatcher sets where import completions run. Default: Inline.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) {
		c.dispatcher = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithTracer sets the tracer. Default: the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

// WithOnChange registers a callback invoked with a snapshot after every
// state change. It runs outside the controller's lock.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithLoginPath sets the redirect target for the secured guard.
func WithLoginPath(path string) Option {
	return func(c *Controller) {
		c.loginPath = path
	}
}

// WithHomePath sets the redirect target for the public-only guard.
func WithHomePath(path string) Option {
	return func(c *Controller) {
		c.homePath = path
	}
}

// WithContext sets the context passed to component imports.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		c.ctx = ctx
	}
}

// Controller owns the resolved route of one host.
type Controller struct {
	bus        *navbus.Bus
	table      *route.Table
	isLoggedIn AuthFunc
	registry   *component.Registry
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	onChange   func(State)
	loginPath  string
	homePath   string
	ctx        context.Context

	mu          sync.Mutex
	state       State
	mounted     bool
	pending     bool
	generation  uint64
	unsubscribe func()
}

// NewController creates an unmounted controller for table.
func NewController(bus *navbus.Bus, table *route.Table, opts ...Option) *Controller {
	c := &Controller{
		bus:        bus,
		table:      table,
		isLoggedIn: func() bool { return false },
		dispatcher: Inline,
		logger:     slog.Default().With("component", "router"),
		loginPath:  DefaultLoginPath,
		homePath:   DefaultHomePath,
		ctx:        context.Background(),
		state:      State{Props: route.Props{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = component.NewRegistry()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Mount subscribes to the bus and resolves the current location. It fails
// with ErrNoRoutesConfigured, leaving the controller unmounted, when the
// route table is empty.
func (c *Controller) Mount() error {
	if c.table.Len() == 0 {
		c.logger.Error("router mounted without routes")
		return ErrNoRoutesConfigured
	}

	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.mounted = true
	c.state = State{Phase: PhaseResolving, Props: route.Props{}}
	c.unsubscribe = c.bus.Subscribe(c.handle)
	c.mu.Unlock()

	return c.Resolve(c.bus.Current().Location)
}

// Unmount unsubscribes from the bus. Imports already in flight keep running
// but their results are discarded.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	c.pending = false
	c.generation++
	c.state.Phase = PhaseUnmounted
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *Controller) handle(ev navbus.Event) {
	if err := c.Resolve(ev.Location); err != nil {
		c.logger.Error("route resolution failed", "route", ev.Route, "error", err)
	}
}

// Resolve runs one resolution for loc. Guard redirects and unmatched paths
// are not errors.
func (c *Controller) Resolve(loc history.Location) error {
	_, span := c.tracer.Start(c.ctx, "vnav.resolve",
		trace.WithAttributes(
			attribute.String("vnav.path", loc.Path),
			attribute.String("vnav.hash", loc.Hash),
		))
	defer span.End()

	if c.table.Len() == 0 {
		span.SetStatus(codes.Error, ErrNoRoutesConfigured.Error())
		c.metrics.RecordResolution(metrics.OutcomeError)
		return ErrNoRoutesConfigured
	}

	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	c.state.Phase = PhaseResolving
	c.state.Location = loc

	m, ok := c.table.Match(loc.Path)
	if ok {
		if target, guard := c.guard(m.Route); target != "" {
			c.state.Phase = PhaseRedirecting
			c.mu.Unlock()

			span.SetAttributes(attribute.String("vnav.redirect", target))
			c.logger.Info("guard redirect", "path", loc.Path, "guard", guard, "target", target)
			c.metrics.RecordRedirect(guard)
			c.metrics.RecordResolution(metrics.OutcomeRedirected)
			c.bus.Redirect(target)
			return nil
		}

		current := *m.Route
		current.Path = m.Route.Path + loc.Hash
		c.state.CurrentRoute = &current
		c.state.Props = m.Props
		span.SetAttributes(attribute.String("vnav.route", m.Route.Path))
	} else {
		c.state.CurrentRoute = nil
		c.state.Props = route.Props{}
	}

	key := loc.PathWithHash()
	outcome := metrics.OutcomeResolved
	if !ok {
		outcome = metrics.OutcomeNotFound
	}
	var render func() component.Element
	if key == c.state.LastRoute {
		outcome = metrics.OutcomeDuplicate
		if !c.pending {
			c.state.Phase = PhaseResolved
		}
	} else {
		c.state.LastRoute = key
		render = c.materializeLocked()
	}
	c.metrics.RecordResolution(outcome)

	if render != nil {
		// Render functions run unlocked so they may read the controller or
		// navigate. A navigation started inside one supersedes this result.
		gen := c.generation
		c.mu.Unlock()
		el := render()
		c.mu.Lock()
		if !c.mounted || gen != c.generation {
			c.mu.Unlock()
			return nil
		}
		c.state.Element = el
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// guard returns the redirect target and guard name when def may not be
// shown to the current session.
func (c *Controller) guard(def *route.Definition) (target, guard string) {
	if def.Secured && !c.isLoggedIn() {
		return c.loginPath, "secured"
	}
	if def.PublicOnly && c.isLoggedIn() {
		return c.homePath, "public_only"
	}
	return "", ""
}

// materializeLocked turns the current route into an element. c.mu is held.
// For routes with a render function it returns the call to make once c.mu
// is released.
func (c *Controller) materializeLocked() (render func() component.Element) {
	c.generation++
	c.pending = false
	c.state.Err = nil
	c.state.Phase = PhaseResolved

	cur := c.state.CurrentRoute
	switch {
	case cur == nil:
		c.state.Element = nil

	case cur.Render != nil:
		fn, props := cur.Render, c.state.Props.Clone()
		return func() component.Element { return fn(props) }

	case c.registry.IsRegistered(cur.Component):
		c.instantiateLocked(cur.Component)

	case cur.Import != nil:
		c.pending = true
		c.state.Phase = PhaseResolving
		go c.load(c.generation, cur.Component, cur.Import)

	default:
		c.state.Element = nil
		c.state.Err = fmt.Errorf("%w: %q", component.ErrUnknownComponent, cur.Component)
		c.logger.Error("route component not registered", "component", cur.Component)
	}
	return nil
}

func (c *Controller) instantiateLocked(name string) {
	el, err := c.registry.Instantiate(name)
	if err != nil {
		c.state.Element = nil
		c.state.Err = err
		return
	}
	for k, v := range c.state.Props {
		el.SetAttr(k, v)
	}
	c.state.Element = el
}

// load imports a component off the event loop and hands the result back
// through the dispatcher.
func (c *Controller) load(gen uint64, name string, imp route.ImportFunc) {
	ctx, span := c.tracer.Start(c.ctx, "vnav.load",
		trace.WithAttributes(attribute.String("vnav.component", name)))
	start := time.Now()
	err := c.registry.Load(ctx, name, imp)
	c.metrics.RecordLoad(time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	c.dispatcher.Dispatch(func() { c.completeLoad(gen, name, err) })
}

func (c *Controller) completeLoad(gen uint64, name string, err error) {
	c.mu.Lock()
	if !c.mounted || gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale component import", "component", name)
		return
	}
	c.pending = false
	c.state.Phase = PhaseResolved
	if err != nil {
		c.state.Element = nil
		c.state.Err = err
		c.logger.Error("component import failed", "component", name, "error", err)
	} else {
		c.instantiateLocked(name)
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Props = c.state.Props.Clone()
	return s
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// State returns a snapshot of the navigation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// CurrentRoute returns the resolved route, or nil.
func (c *Controller) CurrentRoute() *route.Definition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.CurrentRoute
}

// Props returns a copy of the resolved route's props.
func (c *Controller) Props() route.Props {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Props.Clone()
}

// Element returns the materialized element, or nil.
func (c *Controller) Element() component.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Element
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}
