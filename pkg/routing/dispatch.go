package routing

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Dispatcher runs callbacks on the host's event loop.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs callbacks immediately on the calling goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Loop is a single-goroutine event loop. Everything dispatched to it runs
// in order, one callback at a time.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewLoop creates a loop with a queue of the given size.
func NewLoop(size int, logger *slog.Logger) *Loop {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Dispatch queues fn. It blocks while the queue is full and drops fn once the
// loop has stopped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Do queues fn and waits for it to run. It returns false if the loop
// stopped first.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	l.Dispatch(func() {
		defer close(ran)
		fn()
	})
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// Run processes callbacks until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case fn := <-l.queue:
			l.execute(fn)
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		}
	}
}

// Stop terminates the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
