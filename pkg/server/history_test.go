package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vnav/pkg/history"
	"github.com/vango-dev/vnav/pkg/navbus"
)

func TestRemoteHistoryForwardsWrites(t *testing.T) {
	var sent []serverMessage
	h := newRemoteHistory("/start?x=1", func(m serverMessage) { sent = append(sent, m) })
	bus := navbus.New(h)
	bus.Initialize()

	require.NoError(t, bus.Navigate("/next"))
	require.NoError(t, bus.Navigate("https://example.com/"))

	require.Len(t, sent, 3)
	assert.Equal(t, msgReplace, sent[0].Type)
	assert.Equal(t, "/start?x=1", sent[0].URL)
	assert.Equal(t, msgPush, sent[1].Type)
	assert.Equal(t, "/next", sent[1].State.Route)
	assert.Equal(t, msgAssign, sent[2].Type)
	assert.Equal(t, "https://example.com/", sent[2].URL)
	assert.Equal(t, "/next", h.Location().Path)
}

func TestRemoteHistoryPopped(t *testing.T) {
	h := newRemoteHistory("/", func(serverMessage) {})
	bus := navbus.New(h)
	bus.Initialize()
	require.NoError(t, bus.Navigate("/a"))

	var got []navbus.Event
	unsubscribe := bus.Subscribe(func(ev navbus.Event) { got = append(got, ev) })
	defer unsubscribe()

	h.popped("/", history.State{Route: "/"})

	require.Len(t, got, 1)
	assert.Equal(t, navbus.OriginPop, got[0].Origin)
	assert.Equal(t, "/", got[0].Route)
	assert.Equal(t, "/", h.Location().Path)
	assert.Equal(t, 0, h.mirror.Index())
}
