package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vnav/pkg/auth"
	"github.com/vango-dev/vnav/pkg/component"
	"github.com/vango-dev/vnav/pkg/metrics"
	"github.com/vango-dev/vnav/pkg/route"
)

// Internal endpoint paths.
const (
	ClientPath = "/_vnav/client.js"
	LivePath   = "/_vnav/live"
	LogoutPath = "/_vnav/logout"
)

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the server configuration.
func WithConfig(c *Config) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithAuthStore sets the session principal store. Default: a MemoryStore.
func WithAuthStore(store auth.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics sets the collectors and the gatherer served at the metrics
// endpoint.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithNavLinks lists static paths whose data-link anchors are marked with
// aria-current while their route is active.
func WithNavLinks(paths ...string) Option {
	return func(s *Server) {
		s.navLinks = append(s.navLinks, paths...)
	}
}

// WithMiddleware adds HTTP middleware in front of every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// Server serves pages and live sessions for one route table.
type Server struct {
	config     *Config
	table      *route.Table
	registry   *component.Registry
	store      auth.Store
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
	navLinks   []string
	middleware []func(http.Handler) http.Handler

	upgrader websocket.Upgrader
	router   chi.Router

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a server for table. Components are instantiated from reg.
func New(table *route.Table, reg *component.Registry, opts ...Option) *Server {
	s := &Server{
		table:    table,
		registry: reg,
		logger:   slog.Default().With("component", "server"),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.config = s.config.withDefaults()
	if s.registry == nil {
		s.registry = component.NewRegistry()
	}
	if s.store == nil {
		s.store = auth.NewMemoryStore()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.config.checkOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.middleware...)
	r.Use(auth.Middleware(s.store, s.config.CookieName))

	r.Get(ClientPath, s.serveThinClient)
	r.Head(ClientPath, s.serveThinClient)
	r.Get(LivePath, s.handleLive)
	r.Post(LogoutPath, s.handleLogout)
	if s.config.MetricsPath != "" {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/*", s.servePage)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the session principal store.
func (s *Server) Store() auth.Store {
	return s.store
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	initial := r.URL.Query().Get("url")
	if initial == "" {
		initial = "/"
	}
	var principal *auth.Principal
	if p, ok := auth.FromContext(r.Context()); ok {
		principal = &p
	}

	// The request context ends with the handler, so the session gets its own.
	ctx := context.WithoutCancel(r.Context())
	sess := newSession(ctx, s, uuid.NewString(), conn, initial, principal)
	s.track(sess)
	defer s.untrack(sess)

	s.logger.Info("session started", "session", sess.ID(), "url", initial)
	sess.serve(ctx)
	s.logger.Info("session ended", "session", sess.ID())
}

func (s *Server) track(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.RecordSessionOpen()
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.metrics.RecordSessionClose()
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.Logout(w, r, s.store, s.config.CookieName); err != nil {
		s.logger.Error("logout failed", "error", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, s.config.HomePath, http.StatusSeeOther)
}

// ListenAndServe listens on the configured address and serves until ctx is
// done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully and closes live sessions.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by http.Server.
	s.closeSessions()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
