package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vnav/internal/errors"
	"github.com/vango-dev/vnav/pkg/component"
	"github.com/vango-dev/vnav/pkg/route"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vnav.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "vnav.yaml"

	// DefaultAddress is the default server listen address.
	DefaultAddress = "localhost:3000"

	// DefaultReadTimeout is the default HTTP read timeout.
	DefaultReadTimeout = "10s"

	// DefaultShutdownTimeout is how long serve waits for connections to close.
	DefaultShutdownTimeout = "15s"

	// DefaultCookieName is the default session cookie name.
	DefaultCookieName = "vnav_session"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultImportTimeout bounds a lazy component import.
	DefaultImportTimeout = "10s"
)

// Config represents the complete vnav.json configuration.
type Config struct {
	// Name is the application name, shown as the document title.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// Auth contains guard and session configuration.
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Loader contains lazy component loading configuration.
	Loader LoaderConfig `json:"loader" yaml:"loader"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static" yaml:"static"`

	// Components maps component identifiers to inline HTML templates.
	Components map[string]string `json:"components,omitempty" yaml:"components,omitempty"`

	// Routes is the route table, in definition order.
	Routes []RouteConfig `json:"routes,omitempty" yaml:"routes,omitempty"`

	// RoutesFile is a JSON or YAML file holding more routes. Its routes are
	// appended after Routes. Relative paths resolve against the config file.
	RoutesFile string `json:"routesFile,omitempty" yaml:"routesFile,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Address is the listen address.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// ReadTimeout is the HTTP read timeout (e.g. "10s").
	ReadTimeout string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`

	// ShutdownTimeout is the graceful shutdown deadline.
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// AllowedOrigins lists origins allowed to open live sessions. Empty
	// means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// AuthConfig contains guard and session settings.
type AuthConfig struct {
	// LoginPath is where secured routes redirect anonymous sessions.
	LoginPath string `json:"loginPath,omitempty" yaml:"loginPath,omitempty"`

	// HomePath is where public-only routes redirect signed-in sessions.
	HomePath string `json:"homePath,omitempty" yaml:"homePath,omitempty"`

	// CookieName is the session cookie name.
	CookieName string `json:"cookieName,omitempty" yaml:"cookieName,omitempty"`

	// RedisAddr selects the Redis session store. Empty keeps sessions in
	// memory.
	RedisAddr string `json:"redisAddr,omitempty" yaml:"redisAddr,omitempty"`

	// RedisPrefix is the key prefix for sessions in Redis.
	RedisPrefix string `json:"redisPrefix,omitempty" yaml:"redisPrefix,omitempty"`
}

// LoaderConfig contains S3 template loading settings.
type LoaderConfig struct {
	// Bucket holds component templates. Required by lazy routes whose
	// component has no inline template.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Region is the bucket's AWS region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Prefix is prepended to template keys.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Endpoint selects an S3-compatible service.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Timeout bounds one import (e.g. "10s").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Disabled turns the metrics endpoint off.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	// Path is the metrics endpoint path.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Cache control policies for static files.
const (
	CacheControlNone       = "none"
	CacheControlProduction = "production"
)

// StaticConfig contains static file serving settings.
type StaticConfig struct {
	// Dir is the directory containing static files. Empty disables
	// static serving.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/").
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// CacheControl is "none", "production", or empty for no header.
	CacheControl string `json:"cacheControl,omitempty" yaml:"cacheControl,omitempty"`
}

// RouteConfig is one entry of the route table.
type RouteConfig struct {
	Path       string `json:"path" yaml:"path"`
	Component  string `json:"component" yaml:"component"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Secured    bool   `json:"secured,omitempty" yaml:"secured,omitempty"`
	PublicOnly bool   `json:"publicOnly,omitempty" yaml:"publicOnly,omitempty"`

	// Lazy defers registering the component until the route is first
	// visited.
	Lazy bool `json:"lazy,omitempty" yaml:"lazy,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         DefaultAddress,
			ReadTimeout:     DefaultReadTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Auth: AuthConfig{
			LoginPath:  "/login",
			HomePath:   "/",
			CookieName: DefaultCookieName,
		},
		Loader: LoaderConfig{
			Timeout: DefaultImportTimeout,
		},
		Metrics: MetricsConfig{
			Path: DefaultMetricsPath,
		},
		Static: StaticConfig{
			Prefix: "/",
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// vnav.json, then vnav.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "vnav.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E100").
		WithDetail("No vnav.json or vnav.yaml found in " + dir).
		WithSuggestion("Run 'vnav init' to create one")
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := New()
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	cfg.configPath = path
	cfg.applyDefaults()

	if cfg.RoutesFile != "" {
		routes, err := LoadRoutes(cfg.resolve(cfg.RoutesFile))
		if err != nil {
			return nil, err
		}
		cfg.Routes = append(cfg.Routes, routes...)
	}
	return cfg, nil
}

// LoadRoutes reads a JSON or YAML file holding a list of routes.
func LoadRoutes(path string) ([]RouteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("Routes file " + path + " does not exist")
		}
		return nil, errors.New("E101").Wrap(err)
	}
	var routes []RouteConfig
	if err := decode(path, data, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return errors.New("E101").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.New("E101").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithLocationFromError(path, err).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML")
		}
	default:
		return errors.New("E103").WithDetail("Unsupported file " + path)
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path. The format follows
// the file extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return errors.New("E103").WithDetail("Unsupported file " + path)
	}
	if err != nil {
		return errors.New("E101").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Auth.LoginPath == "" {
		c.Auth.LoginPath = "/login"
	}
	if c.Auth.HomePath == "" {
		c.Auth.HomePath = "/"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = DefaultCookieName
	}
	if c.Loader.Timeout == "" {
		c.Loader.Timeout = DefaultImportTimeout
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for _, d := range []struct{ name, value string }{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
		{"loader.timeout", c.Loader.Timeout},
	} {
		if _, err := parseDuration(d.value); err != nil {
			return errors.New("E102").
				WithDetail(d.name + ": " + err.Error()).
				WithSuggestion("Use a Go duration such as \"10s\" or \"1m\"")
		}
	}
	for _, p := range []struct{ name, value string }{
		{"auth.loginPath", c.Auth.LoginPath},
		{"auth.homePath", c.Auth.HomePath},
		{"metrics.path", c.Metrics.Path},
	} {
		if !strings.HasPrefix(p.value, "/") {
			return errors.New("E102").
				WithDetail(p.name + " must start with '/', got " + quote(p.value))
		}
	}

	switch c.Static.CacheControl {
	case "", CacheControlNone, CacheControlProduction:
	default:
		return errors.New("E102").
			WithDetail("static.cacheControl must be \"none\" or \"production\", got " + quote(c.Static.CacheControl))
	}

	if len(c.Routes) == 0 {
		return errors.New("E120").
			WithSuggestion("Add at least one entry to \"routes\"")
	}
	for i, r := range c.Routes {
		if !strings.HasPrefix(r.Path, "/") {
			return errors.New("E121").
				WithDetail("routes[" + itoa(i) + "]: path must start with '/', got " + quote(r.Path))
		}
		if r.Component == "" {
			return errors.New("E122").
				WithDetail("routes[" + itoa(i) + "] (" + r.Path + ") has no component")
		}
		if r.Lazy && c.Loader.Bucket == "" && c.Components[r.Component] == "" {
			return errors.New("E102").
				WithDetail("routes[" + itoa(i) + "] (" + r.Path + ") is lazy but no template source is configured").
				WithSuggestion("Set loader.bucket or add \"" + r.Component + "\" to components")
		}
	}
	return nil
}

// StaticPath returns the absolute path to the static directory, or "" when
// static serving is disabled.
func (c *Config) StaticPath() string {
	if c.Static.Dir == "" {
		return ""
	}
	return c.resolve(c.Static.Dir)
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ReadTimeout)
	return d
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ShutdownTimeout)
	return d
}

// ImportTimeout returns the parsed import timeout.
func (c *Config) ImportTimeout() time.Duration {
	d, _ := parseDuration(c.Loader.Timeout)
	return d
}

// Registry returns a component registry holding the inline templates of
// every component that no lazy route defers.
func (c *Config) Registry() *component.Registry {
	lazy := make(map[string]bool)
	for _, r := range c.Routes {
		if r.Lazy {
			lazy[r.Component] = true
		}
	}
	reg := component.NewRegistry()
	for name, html := range c.Components {
		if !lazy[name] {
			reg.Register(name, component.Template(name, html))
		}
	}
	return reg
}

// Definitions converts the route list into route definitions. Lazy routes
// get the import hook returned by imp for their component.
func (c *Config) Definitions(imp func(component string) route.ImportFunc) []route.Definition {
	defs := make([]route.Definition, 0, len(c.Routes))
	for _, r := range c.Routes {
		def := route.Definition{
			Path:       r.Path,
			Component:  r.Component,
			Title:      r.Title,
			Secured:    r.Secured,
			PublicOnly: r.PublicOnly,
		}
		if r.Lazy && imp != nil {
			def.Import = imp(r.Component)
		}
		defs = append(defs, def)
	}
	return defs
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func quote(s string) string {
	return strconv.Quote(s)
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "vnav.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from dir to the nearest directory holding a
// configuration file.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.New("E100").Wrap(err)
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No vnav.json or vnav.yaml found in this directory or any parent").
				WithSuggestion("Run 'vnav init' to create one")
		}
		dir = parent
	}
}
