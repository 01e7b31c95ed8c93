package vnav

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/vnav/internal/config"
	"github.com/vango-dev/vnav/pkg/auth"
	"github.com/vango-dev/vnav/pkg/component"
	"github.com/vango-dev/vnav/pkg/loader"
	"github.com/vango-dev/vnav/pkg/metrics"
	"github.com/vango-dev/vnav/pkg/route"
	"github.com/vango-dev/vnav/pkg/server"
)

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithRegistry supplies a registry with components registered in code.
// Inline templates from the configuration are added to it.
func WithRegistry(reg *component.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithS3Client sets the client used for template imports instead of one
// built from the loader configuration.
func WithS3Client(c loader.ObjectGetter) Option {
	return func(a *App) {
		a.s3 = c
	}
}

// WithAuthStore sets the session store instead of one built from the auth
// configuration.
func WithAuthStore(s auth.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithPrometheusRegistry sets the registry metrics are registered with and
// served from.
func WithPrometheusRegistry(r *prometheus.Registry) Option {
	return func(a *App) {
		a.prom = r
	}
}

// App is a configured vnav application.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	registry *component.Registry
	table    *route.Table
	s3       loader.ObjectGetter
	loader   *loader.S3Loader
	store    auth.Store
	prom     *prometheus.Registry
	metrics  *metrics.Metrics
	server   *server.Server
	static   *staticFiles
	closers  []io.Closer
}

// New validates cfg and builds the application.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.registry == nil {
		a.registry = component.NewRegistry()
	}
	inline := cfg.Registry()
	for _, name := range inline.Names() {
		html := cfg.Components[name]
		a.registry.Register(name, component.Template(name, html))
	}

	if cfg.Loader.Bucket != "" {
		if a.s3 == nil {
			client, err := loader.NewS3Client(context.Background(), cfg.Loader.Region, cfg.Loader.Endpoint)
			if err != nil {
				return nil, err
			}
			a.s3 = client
		}
		a.loader = loader.NewS3(a.s3, cfg.Loader.Bucket, a.registry,
			loader.WithPrefix(cfg.Loader.Prefix),
			loader.WithLogger(a.logger.With("component", "loader")))
	}
	a.table = route.NewTable(cfg.Definitions(a.importHook)...)

	if a.store == nil {
		a.store = a.newStore()
	}

	if a.prom == nil {
		a.prom = prometheus.NewRegistry()
		a.prom.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	a.metrics = metrics.New(metrics.WithRegistry(a.prom))

	if dir := cfg.StaticPath(); dir != "" {
		a.static = newStaticFiles(dir, cfg.Static.Prefix, cfg.Static.CacheControl)
	}

	a.server = server.New(a.table, a.registry, a.serverOptions()...)
	return a, nil
}

// importHook returns the import hook for a lazy component: its inline
// template when it has one, otherwise the S3 object.
func (a *App) importHook(name string) route.ImportFunc {
	var hooks []loader.Func
	if html, ok := a.config.Components[name]; ok {
		hooks = append(hooks, loader.Static(a.registry, name, component.Template(name, html)))
	}
	if a.loader != nil {
		hooks = append(hooks, a.loader.Import(name))
	}
	return loader.WithTimeout(a.config.ImportTimeout(), loader.Chain(hooks...))
}

func (a *App) newStore() auth.Store {
	if addr := a.config.Auth.RedisAddr; addr != "" {
		client := auth.NewRedisClient(addr)
		a.closers = append(a.closers, client)
		var opts []auth.RedisStoreOption
		if p := a.config.Auth.RedisPrefix; p != "" {
			opts = append(opts, auth.WithRedisPrefix(p))
		}
		a.logger.Info("using redis session store", "addr", addr)
		return auth.NewRedisStore(client, opts...)
	}
	return auth.NewMemoryStore()
}

func (a *App) serverOptions() []server.Option {
	cfg := a.config
	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.Disabled {
		metricsPath = ""
	}
	opts := []server.Option{
		server.WithConfig(&server.Config{
			Address:         cfg.Server.Address,
			Title:           cfg.Name,
			ReadTimeout:     cfg.ReadTimeout(),
			ShutdownTimeout: cfg.ShutdownTimeout(),
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			CookieName:      cfg.Auth.CookieName,
			LoginPath:       cfg.Auth.LoginPath,
			HomePath:        cfg.Auth.HomePath,
			MetricsPath:     metricsPath,
		}),
		server.WithAuthStore(a.store),
		server.WithMetrics(a.metrics, a.prom),
		server.WithLogger(a.logger.With("component", "server")),
		server.WithNavLinks(navLinks(cfg.Routes)...),
	}
	if a.static != nil {
		opts = append(opts, server.WithMiddleware(a.static.middleware))
	}
	return opts
}

// navLinks returns the static paths of titled routes.
func navLinks(routes []config.RouteConfig) []string {
	var links []string
	for _, r := range routes {
		if r.Title != "" && !strings.ContainsAny(r.Path, ":*") {
			links = append(links, r.Path)
		}
	}
	return links
}

// Handler returns the application's HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.server.Handler().ServeHTTP(w, r)
}

// Run serves on the configured address until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting", "address", a.config.Server.Address, "routes", a.table.Len())
	return a.server.ListenAndServe(ctx)
}

// Table returns the route table.
func (a *App) Table() *route.Table {
	return a.table
}

// Registry returns the component registry.
func (a *App) Registry() *component.Registry {
	return a.registry
}

// Store returns the session store.
func (a *App) Store() auth.Store {
	return a.store
}

// Server returns the HTTP server.
func (a *App) Server() *server.Server {
	return a.server
}

// Config returns the configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Close releases connections held by the app.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
