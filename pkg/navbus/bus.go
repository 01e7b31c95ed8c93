// Package navbus implements the navigation bus: the single writer of browser
// history and the broadcaster of every navigation to routers and trackers.
//
// Each navigation request becomes a history entry plus a synchronous
// broadcast. Browser back and forward gestures reach the same listeners
// through the backend's pop signal, so a listener cannot tell the two
// origins apart except through Event.Origin.
package navbus

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/vnav/pkg/history"
	"github.com/vango-dev/vnav/pkg/metrics"
)

// Origin describes what caused a broadcast.
type Origin uint8

const (
	// OriginInitial is the synthesized broadcast for the starting location.
	OriginInitial Origin = iota
	// OriginPush is a programmatic navigation.
	OriginPush
	// OriginPop is a user back/forward navigation.
	OriginPop
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginInitial:
		return "initial"
	case OriginPush:
		return "push"
	case OriginPop:
		return "pop"
	default:
		return "unknown"
	}
}

// Event is a navigation broadcast.
type Event struct {
	// Route is the target string carried in the history state.
	Route string

	// Location is the location after the navigation.
	Location history.Location

	// Origin is what caused the broadcast.
	Origin Origin
}

// Listener receives broadcasts.
type Listener func(Event)

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

type subscription struct {
	id int
	fn Listener
}

// Bus is the navigation bus for one host.
type Bus struct {
	backend history.Backend
	logger  *slog.Logger
	metrics *metrics.Metrics

	// writeMu serializes history writes.
	writeMu sync.Mutex

	mu        sync.Mutex
	listeners []subscription
	nextID    int

	initOnce  sync.Once
	cancelPop func()
}

// New creates a bus over backend.
func New(backend history.Backend, opts ...Option) *Bus {
	b := &Bus{
		backend: backend,
		logger:  slog.Default().With("component", "navbus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.cancelPop = backend.OnPop(b.handlePop)
	return b
}

// Backend returns the history backend.
func (b *Bus) Backend() history.Backend {
	return b.backend
}

// Initialize replaces the current history entry with a well-formed state and
// broadcasts the starting location once. Later calls do nothing.
func (b *Bus) Initialize() {
	b.initOnce.Do(func() {
		b.writeMu.Lock()
		loc := b.backend.Location()
		b.backend.ReplaceState(history.State{Route: loc.String()}, loc.String())
		b.writeMu.Unlock()

		b.broadcast(b.Current())
	})
}

// Current returns an event describing the current location.
func (b *Bus) Current() Event {
	loc := b.backend.Location()
	route := b.backend.State().Route
	if route == "" {
		route = loc.String()
	}
	return Event{Route: route, Location: loc, Origin: OriginInitial}
}

// IsCurrent reports whether target addresses the current location.
func (b *Bus) IsCurrent(target string) bool {
	return normalize(target) == b.backend.Location().String()
}

// normalize rewrites an application target the way the backend stores it,
// dropping an empty query or fragment. External targets are kept as given.
func normalize(target string) string {
	if !strings.HasPrefix(target, "/") {
		return target
	}
	return history.ParseLocation(target).String()
}

// Navigate moves the application to target.
//
// Targets that do not start with "/" leave the application through a full
// document navigation. Navigating to the current location does nothing.
func (b *Bus) Navigate(target string) error {
	if target == "" {
		return &MissingRouteError{}
	}

	target = normalize(target)
	b.writeMu.Lock()
	if target == b.backend.Location().String() {
		b.writeMu.Unlock()
		return nil
	}
	if !strings.HasPrefix(target, "/") {
		b.backend.Assign(target)
		b.writeMu.Unlock()
		b.logger.Info("external navigation", "url", target)
		return nil
	}
	b.backend.PushState(history.State{Route: target}, target)
	loc := b.backend.Location()
	b.writeMu.Unlock()

	b.broadcast(Event{Route: target, Location: loc, Origin: OriginPush})
	return nil
}

// Redirect performs a full document navigation to target without a
// broadcast. Guards use it to leave a route they may not show.
func (b *Bus) Redirect(target string) {
	b.writeMu.Lock()
	b.backend.Assign(target)
	b.writeMu.Unlock()
}

// Subscribe registers fn for every subsequent broadcast.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.listeners {
		if s.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of registered listeners.
func (b *Bus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Close detaches the bus from its backend.
func (b *Bus) Close() {
	if b.cancelPop != nil {
		b.cancelPop()
	}
}

func (b *Bus) handlePop(entry history.Entry) {
	route := entry.State.Route
	if route == "" {
		route = entry.Location.String()
	}
	b.broadcast(Event{Route: route, Location: entry.Location, Origin: OriginPop})
}

// broadcast delivers ev to a snapshot of the listeners, in subscription order.
func (b *Bus) broadcast(ev Event) {
	b.mu.Lock()
	subs := make([]subscription, len(b.listeners))
	copy(subs, b.listeners)
	b.mu.Unlock()

	b.metrics.RecordNavigation(ev.Origin.String())
	b.logger.Debug("navigation", "route", ev.Route, "origin", ev.Origin.String(), "listeners", len(subs))

	for _, s := range subs {
		s.fn(ev)
	}
}
