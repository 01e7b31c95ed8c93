package routing

import (
	"sync"

	"github.com/vango-dev/vnav/pkg/navbus"
)

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithOnActive registers a callback invoked when the active flag changes.
func WithOnActive(fn func(active bool)) TrackerOption {
	return func(t *Tracker) {
		t.onActive = fn
	}
}

// Tracker reports whether its route is the active one and navigates on
// behalf of its host. Routes are compared as plain strings.
type Tracker struct {
	bus      *navbus.Bus
	host     string
	onActive func(bool)

	mu          sync.Mutex
	route       string
	active      bool
	unsubscribe func()
}

// NewTracker creates an unmounted tracker. host names the owning component
// in errors; route may be empty for trackers that only navigate to explicit
// targets.
func NewTracker(bus *navbus.Bus, host, route string, opts ...TrackerOption) *Tracker {
	t := &Tracker{bus: bus, host: host, route: route}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mount subscribes to the bus and computes the initial active flag.
func (t *Tracker) Mount() {
	t.mu.Lock()
	if t.unsubscribe != nil {
		t.mu.Unlock()
		return
	}
	t.unsubscribe = t.bus.Subscribe(t.handle)
	t.mu.Unlock()

	t.update(t.bus.Current().Route)
}

// Unmount unsubscribes from the bus.
func (t *Tracker) Unmount() {
	t.mu.Lock()
	unsubscribe := t.unsubscribe
	t.unsubscribe = nil
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (t *Tracker) handle(ev navbus.Event) {
	t.update(ev.Route)
}

func (t *Tracker) update(current string) {
	t.mu.Lock()
	active := t.route != "" && t.route == current
	changed := active != t.active
	t.active = active
	t.mu.Unlock()

	if changed && t.onActive != nil {
		t.onActive(active)
	}
}

// Active reports whether the tracker's route is the active one.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Route returns the tracker's route.
func (t *Tracker) Route() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route
}

// SetRoute changes the tracker's route and recomputes the active flag.
func (t *Tracker) SetRoute(route string) {
	t.mu.Lock()
	t.route = route
	mounted := t.unsubscribe != nil
	t.mu.Unlock()

	if mounted {
		t.update(t.bus.Current().Route)
	}
}

// Host returns the name of the owning component.
func (t *Tracker) Host() string {
	return t.host
}

// Navigate goes to target, or to the tracker's own route when target is
// empty. Navigating to the current location does nothing.
func (t *Tracker) Navigate(target string) error {
	if target == "" {
		target = t.Route()
	}
	if target == "" {
		return &navbus.MissingRouteError{Host: t.host}
	}
	if t.bus.IsCurrent(target) {
		return nil
	}
	return t.bus.Navigate(target)
}
