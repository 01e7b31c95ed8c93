package history

import "sync"

// Memory is an in-memory Backend.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	index   int
	loads   []string
	nextID  int
	onPop   []popListener
}

type popListener struct {
	id int
	fn func(Entry)
}

// NewMemory creates a history positioned at initial.
func NewMemory(initial string) *Memory {
	loc := ParseLocation(initial)
	return &Memory{
		entries: []Entry{{Location: loc}},
	}
}

// Location implements Backend.
func (m *Memory) Location() Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].Location
}

// State implements Backend.
func (m *Memory) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].State
}

// PushState implements Backend.
func (m *Memory) PushState(state State, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], Entry{State: state, Location: ParseLocation(url)})
	m.index = len(m.entries) - 1
}

// ReplaceState implements Backend.
func (m *Memory) ReplaceState(state State, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = Entry{State: state, Location: ParseLocation(url)}
}

// Assign implements Backend. The document load is recorded and, for
// application paths, the new document becomes the current entry.
func (m *Memory) Assign(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, url)
	if len(url) > 0 && url[0] == '/' {
		m.entries = append(m.entries[:m.index+1], Entry{Location: ParseLocation(url)})
		m.index = len(m.entries) - 1
	}
}

// OnPop implements Backend.
func (m *Memory) OnPop(fn func(Entry)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.onPop = append(m.onPop, popListener{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.onPop {
			if l.id == id {
				m.onPop = append(m.onPop[:i:i], m.onPop[i+1:]...)
				return
			}
		}
	}
}

// popListenersLocked snapshots the pop listeners in registration order.
func (m *Memory) popListenersLocked() []func(Entry) {
	out := make([]func(Entry), len(m.onPop))
	for i, l := range m.onPop {
		out[i] = l.fn
	}
	return out
}

// Back moves one entry back, like the browser back button.
func (m *Memory) Back() bool { return m.Go(-1) }

// Forward moves one entry forward.
func (m *Memory) Forward() bool { return m.Go(1) }

// Go moves delta entries and notifies pop listeners. It reports false when
// the target is outside the stack.
func (m *Memory) Go(delta int) bool {
	m.mu.Lock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = target
	entry := m.entries[target]
	listeners := m.popListenersLocked()
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
	return true
}

// Entries returns a copy of the stack.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Loads returns the URLs of full document navigations, in order.
func (m *Memory) Loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.loads))
	copy(out, m.loads)
	return out
}

// Popped moves the stack to loc as if the user had navigated there with the
// browser controls, and notifies pop listeners. It is used by backends that
// mirror a remote history whose index is not known.
func (m *Memory) Popped(entry Entry) {
	m.mu.Lock()
	found := false
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Location == entry.Location {
			m.index = i
			found = true
			break
		}
	}
	if !found {
		m.entries = append(m.entries[:m.index+1], entry)
		m.index = len(m.entries) - 1
	}
	listeners := m.popListenersLocked()
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
}

var _ Backend = (*Memory)(nil)
