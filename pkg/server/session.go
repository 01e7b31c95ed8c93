package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vnav/pkg/auth"
	"github.com/vango-dev/vnav/pkg/navbus"
	"github.com/vango-dev/vnav/pkg/routing"
)

// Session is the live connection of one browser tab. Navigation work runs
// on the session's event loop; socket reads and writes have their own
// goroutines.
type Session struct {
	id     string
	conn   *websocket.Conn
	server *Server
	logger *slog.Logger

	loop    *routing.Loop
	history *remoteHistory
	bus     *navbus.Bus
	router  *routing.Controller
	links   *routing.Tracker
	nav     []*routing.Tracker
	guard   *auth.Guard

	out         chan serverMessage
	done        chan struct{}
	closeOnce   sync.Once
	unmountOnce sync.Once
}

func newSession(ctx context.Context, s *Server, id string, conn *websocket.Conn, initial string, principal *auth.Principal) *Session {
	logger := s.logger.With("session", id)
	sess := &Session{
		id:     id,
		conn:   conn,
		server: s,
		logger: logger,
		loop:   routing.NewLoop(256, logger),
		guard:  auth.NewGuard(principal),
		out:    make(chan serverMessage, 64),
		done:   make(chan struct{}),
	}
	sess.history = newRemoteHistory(initial, sess.send)
	sess.bus = navbus.New(sess.history,
		navbus.WithLogger(logger.With("component", "navbus")),
		navbus.WithMetrics(s.metrics))
	sess.router = routing.NewController(sess.bus, s.table,
		routing.WithAuth(sess.guard.IsLoggedIn),
		routing.WithRegistry(s.registry),
		routing.WithDispatcher(sess.loop),
		routing.WithLogger(logger.With("component", "router")),
		routing.WithMetrics(s.metrics),
		routing.WithLoginPath(s.config.LoginPath),
		routing.WithHomePath(s.config.HomePath),
		routing.WithContext(ctx),
		routing.WithOnChange(sess.render))
	sess.links = routing.NewTracker(sess.bus, "session "+id, "")
	for _, path := range s.navLinks {
		path := path
		sess.nav = append(sess.nav, routing.NewTracker(sess.bus, "nav "+path, path,
			routing.WithOnActive(func(active bool) {
				sess.send(serverMessage{Type: msgActive, Route: path, Active: active})
			})))
	}
	return sess
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Principal returns the signed-in principal, if any.
func (s *Session) Principal() (auth.Principal, bool) {
	return s.guard.Principal()
}

// serve runs the session until the socket closes or ctx is done.
func (s *Session) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.loop.Run(ctx)
	go s.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	s.loop.Do(s.mount)
	s.readLoop()

	// The loop is gone when ctx ended first; unmount here instead.
	if !s.loop.Do(s.unmount) {
		s.unmount()
	}
	s.loop.Stop()
	s.bus.Close()
}

func (s *Session) mount() {
	s.bus.Initialize()
	s.links.Mount()
	for _, t := range s.nav {
		t.Mount()
	}
	if err := s.router.Mount(); err != nil {
		s.logger.Error("router mount failed", "error", err)
		s.send(serverMessage{Type: msgError, Error: err.Error()})
	}
}

func (s *Session) unmount() {
	s.unmountOnce.Do(func() {
		s.router.Unmount()
		s.links.Unmount()
		for _, t := range s.nav {
			t.Unmount()
		}
	})
}

// render pushes the routed element to the browser. It runs on the loop.
func (s *Session) render(state routing.State) {
	msg := serverMessage{
		Type:  msgRender,
		Title: s.server.config.Title,
		Phase: state.Phase.String(),
	}
	if state.Element != nil {
		msg.HTML = state.Element.HTML()
	}
	if r := state.CurrentRoute; r != nil {
		msg.Route = r.Path
		if r.Title != "" {
			msg.Title = r.Title
		}
	}
	if state.Err != nil {
		msg.Error = state.Err.Error()
	}
	s.send(msg)
}

// send queues msg for the writer. It drops msg once the session is closed.
func (s *Session) send(msg serverMessage) {
	select {
	case s.out <- msg:
	case <-s.done:
	}
}

func (s *Session) readLoop() {
	defer s.Close()

	cfg := s.server.config
	s.conn.SetReadLimit(cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("message decode error", "error", err)
			continue
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg clientMessage) {
	switch msg.Type {
	case msgNavigate:
		s.loop.Dispatch(func() {
			if err := s.links.Navigate(msg.Target); err != nil {
				s.logger.Warn("navigate rejected", "error", err)
				s.send(serverMessage{Type: msgError, Error: err.Error()})
			}
		})
	case msgPopstate:
		s.loop.Dispatch(func() {
			s.history.popped(msg.URL, msg.State)
		})
	default:
		s.logger.Warn("unknown message type", "type", msg.Type)
	}
}

func (s *Session) writeLoop() {
	cfg := s.server.config
	ping := time.NewTicker(cfg.PongWait * 9 / 10)
	defer ping.Stop()

	for {
		select {
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("write error", "error", err)
				s.Close()
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Close closes the connection. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.conn.Close()
	})
}
