package server

import "github.com/vango-dev/vnav/pkg/history"

// remoteHistory is the history backend of a live session. It keeps an
// in-memory mirror of the tab's stack and forwards every write to the
// browser. The browser reports back and forward through popped.
type remoteHistory struct {
	mirror *history.Memory
	send   func(serverMessage)
}

func newRemoteHistory(initial string, send func(serverMessage)) *remoteHistory {
	return &remoteHistory{
		mirror: history.NewMemory(initial),
		send:   send,
	}
}

func (h *remoteHistory) Location() history.Location { return h.mirror.Location() }

func (h *remoteHistory) State() history.State { return h.mirror.State() }

func (h *remoteHistory) PushState(state history.State, url string) {
	h.mirror.PushState(state, url)
	h.send(serverMessage{Type: msgPush, URL: url, State: &state})
}

func (h *remoteHistory) ReplaceState(state history.State, url string) {
	h.mirror.ReplaceState(state, url)
	h.send(serverMessage{Type: msgReplace, URL: url, State: &state})
}

func (h *remoteHistory) Assign(url string) {
	h.mirror.Assign(url)
	h.send(serverMessage{Type: msgAssign, URL: url})
}

func (h *remoteHistory) OnPop(fn func(history.Entry)) (cancel func()) {
	return h.mirror.OnPop(fn)
}

// popped applies a popstate reported by the browser.
func (h *remoteHistory) popped(url string, state history.State) {
	h.mirror.Popped(history.Entry{State: state, Location: history.ParseLocation(url)})
}

var _ history.Backend = (*remoteHistory)(nil)
