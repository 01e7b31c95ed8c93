package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vnav/pkg/history"
	"github.com/vango-dev/vnav/pkg/navbus"
)

func newBus(start string) (*history.Memory, *navbus.Bus) {
	mem := history.NewMemory(start)
	bus := navbus.New(mem)
	bus.Initialize()
	return mem, bus
}

func TestTrackerActive(t *testing.T) {
	_, bus := newBus("/home")

	home := NewTracker(bus, "nav-home", "/home")
	about := NewTracker(bus, "nav-about", "/about")
	home.Mount()
	about.Mount()
	defer home.Unmount()
	defer about.Unmount()

	assert.True(t, home.Active())
	assert.False(t, about.Active())

	require.NoError(t, about.Navigate(""))
	assert.False(t, home.Active())
	assert.True(t, about.Active())
}

func TestTrackerActiveIsExactMatch(t *testing.T) {
	_, bus := newBus("/projects/1")
	tr := NewTracker(bus, "nav-projects", "/projects")
	tr.Mount()
	defer tr.Unmount()

	assert.False(t, tr.Active())
}

func TestTrackerNavigateExplicitTarget(t *testing.T) {
	mem, bus := newBus("/")
	tr := NewTracker(bus, "search-box", "")
	tr.Mount()
	defer tr.Unmount()

	require.NoError(t, tr.Navigate("/search?q=go"))
	assert.Equal(t, "/search?q=go", mem.Location().String())
	assert.False(t, tr.Active(), "a tracker without a route is never active")
}

func TestTrackerNavigateWithoutRoute(t *testing.T) {
	mem, bus := newBus("/")
	tr := NewTracker(bus, "user-menu", "")

	err := tr.Navigate("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, navbus.ErrMissingRoute))
	assert.Contains(t, err.Error(), "user-menu")

	var missing *navbus.MissingRouteError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "user-menu", missing.Host)
	assert.Len(t, mem.Entries(), 1)
}

func TestTrackerNavigateToCurrentIsNoop(t *testing.T) {
	mem, bus := newBus("/docs")
	tr := NewTracker(bus, "nav-docs", "/docs")

	var events int
	unsubscribe := bus.Subscribe(func(navbus.Event) { events++ })
	defer unsubscribe()

	require.NoError(t, tr.Navigate(""))
	require.NoError(t, tr.Navigate("/docs"))
	assert.Equal(t, 0, events)
	assert.Len(t, mem.Entries(), 1)
}

func TestTrackerExternalTarget(t *testing.T) {
	mem, bus := newBus("/")
	tr := NewTracker(bus, "footer-link", "https://example.com/")

	var events int
	unsubscribe := bus.Subscribe(func(navbus.Event) { events++ })
	defer unsubscribe()

	require.NoError(t, tr.Navigate(""))
	assert.Equal(t, []string{"https://example.com/"}, mem.Loads())
	assert.Equal(t, 0, events)
	assert.Len(t, mem.Entries(), 1)
}

func TestTrackerOnActive(t *testing.T) {
	mem, bus := newBus("/")
	var changes []bool
	tr := NewTracker(bus, "nav-a", "/a", WithOnActive(func(active bool) {
		changes = append(changes, active)
	}))
	tr.Mount()
	defer tr.Unmount()

	require.NoError(t, bus.Navigate("/a"))
	require.NoError(t, bus.Navigate("/b"))
	mem.Back()

	assert.Equal(t, []bool{true, false, true}, changes)
}

func TestTrackerSetRoute(t *testing.T) {
	_, bus := newBus("/b")
	tr := NewTracker(bus, "nav", "/a")
	tr.Mount()
	defer tr.Unmount()
	assert.False(t, tr.Active())

	tr.SetRoute("/b")
	assert.True(t, tr.Active())
	assert.Equal(t, "/b", tr.Route())
}

func TestTrackerUnmount(t *testing.T) {
	_, bus := newBus("/")
	tr := NewTracker(bus, "nav-a", "/a")
	tr.Mount()
	tr.Mount()
	assert.Equal(t, 1, bus.Listeners())

	tr.Unmount()
	tr.Unmount()
	assert.Equal(t, 0, bus.Listeners())

	require.NoError(t, bus.Navigate("/a"))
	assert.False(t, tr.Active())
}
