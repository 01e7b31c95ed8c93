package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vnav/internal/errors"
	"github.com/vango-dev/vnav/pkg/route"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Auth.LoginPath != "/login" {
		t.Errorf("Auth.LoginPath = %q, want %q", cfg.Auth.LoginPath, "/login")
	}
	if cfg.Auth.CookieName != DefaultCookieName {
		t.Errorf("Auth.CookieName = %q, want %q", cfg.Auth.CookieName, DefaultCookieName)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), "E100") {
		t.Errorf("Expected E100 error, got: %v", err)
	}

	configJSON := `{
  "name": "shop",
  "server": {"address": "0.0.0.0:8080", "readTimeout": "5s"},
  "auth": {"redisAddr": "localhost:6379"},
  "components": {"home-page": "<h1>Home</h1>"},
  "routes": [
    {"path": "/", "component": "home-page", "title": "Home"},
    {"path": "/orders/:id:int", "component": "order-page", "secured": true}
  ]
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "shop" {
		t.Errorf("Name = %q, want %q", cfg.Name, "shop")
	}
	if cfg.Server.Address != "0.0.0.0:8080" {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, "0.0.0.0:8080")
	}
	if cfg.ReadTimeout() != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout())
	}
	if cfg.ShutdownTimeout() != 15*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default 15s", cfg.ShutdownTimeout())
	}
	if cfg.Auth.HomePath != "/" {
		t.Errorf("Auth.HomePath = %q, want default %q", cfg.Auth.HomePath, "/")
	}
	if len(cfg.Routes) != 2 || !cfg.Routes[1].Secured {
		t.Errorf("Routes = %+v", cfg.Routes)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `name: shop
auth:
  loginPath: /sign-in
loader:
  bucket: shop-components
  region: eu-central-1
routes:
  - path: /
    component: home-page
  - path: /reports
    component: report-page
    lazy: true
routesFile: more-routes.yaml
`
	moreRoutes := `- path: /about
  component: about-page
  publicOnly: true
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "more-routes.yaml"), []byte(moreRoutes), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Auth.LoginPath != "/sign-in" {
		t.Errorf("Auth.LoginPath = %q, want %q", cfg.Auth.LoginPath, "/sign-in")
	}
	if cfg.Loader.Bucket != "shop-components" {
		t.Errorf("Loader.Bucket = %q", cfg.Loader.Bucket)
	}
	if len(cfg.Routes) != 3 {
		t.Fatalf("len(Routes) = %d, want 3", len(cfg.Routes))
	}
	if cfg.Routes[2].Path != "/about" || !cfg.Routes[2].PublicOnly {
		t.Errorf("Routes[2] = %+v, want the routes file entry", cfg.Routes[2])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	// Write invalid JSON
	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "E101") {
		t.Errorf("Expected E101 error, got: %v", err)
	}
}

func TestLoadFile_InvalidYAMLLocation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, YAMLConfigFileName)
	if err := os.WriteFile(configPath, []byte("name: shop\nroutes: [\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Code != "E101" {
		t.Errorf("Code = %q, want E101", e.Code)
	}
	if e.Location == nil || e.Location.Line == 0 {
		t.Errorf("expected a source location, got %+v", e.Location)
	}
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vnav.toml")
	if err := os.WriteFile(configPath, []byte("name = 'x'"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil || !strings.Contains(err.Error(), "E103") {
		t.Errorf("Expected E103 error, got: %v", err)
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Server.Address = ":9000"
			cfg.Routes = []RouteConfig{{Path: "/", Component: "home-page"}}

			// Save should fail without configPath set
			if err := cfg.Save(); err == nil {
				t.Error("Expected error when saving without path")
			}

			if err := cfg.SaveTo(configPath); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if loaded.Server.Address != ":9000" {
				t.Errorf("Server.Address = %q, want %q", loaded.Server.Address, ":9000")
			}

			loaded.Server.Address = ":9001"
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if reloaded.Server.Address != ":9001" {
				t.Errorf("Server.Address = %q, want %q", reloaded.Server.Address, ":9001")
			}
			if len(reloaded.Routes) != 1 {
				t.Errorf("len(Routes) = %d, want 1", len(reloaded.Routes))
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := New()
		cfg.Routes = []RouteConfig{{Path: "/", Component: "home-page"}}
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Validate should pass for valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"no routes", func(c *Config) { c.Routes = nil }, "E120"},
		{"relative route", func(c *Config) { c.Routes[0].Path = "home" }, "E121"},
		{"no component", func(c *Config) { c.Routes[0].Component = "" }, "E122"},
		{"bad timeout", func(c *Config) { c.Server.ReadTimeout = "soon" }, "E102"},
		{"relative login path", func(c *Config) { c.Auth.LoginPath = "login" }, "E102"},
		{"lazy without source", func(c *Config) { c.Routes[0].Lazy = true }, "E102"},
		{"bad cache control", func(c *Config) { c.Static.CacheControl = "forever" }, "E102"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.HasPrefix(err.Error(), tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	cfg := valid()
	cfg.Routes[0].Lazy = true
	cfg.Components = map[string]string{"home-page": "<p>hi</p>"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("lazy route with an inline template should validate: %v", err)
	}
}

func TestRegistryAndDefinitions(t *testing.T) {
	cfg := New()
	cfg.Components = map[string]string{
		"home-page":   "<h1>Home</h1>",
		"report-page": "<h1>Reports</h1>",
	}
	cfg.Routes = []RouteConfig{
		{Path: "/", Component: "home-page", Title: "Home"},
		{Path: "/reports", Component: "report-page", Lazy: true, Secured: true},
	}

	reg := cfg.Registry()
	if !reg.IsRegistered("home-page") {
		t.Error("eager component should be registered")
	}
	if reg.IsRegistered("report-page") {
		t.Error("lazy component should wait for its import")
	}

	var imported []string
	defs := cfg.Definitions(func(name string) route.ImportFunc {
		return func(context.Context) error {
			imported = append(imported, name)
			return nil
		}
	})
	if len(defs) != 2 {
		t.Fatalf("len(defs) = %d, want 2", len(defs))
	}
	if defs[0].Import != nil || defs[0].Title != "Home" {
		t.Errorf("defs[0] = %+v", defs[0])
	}
	if defs[1].Import == nil || !defs[1].Secured {
		t.Fatalf("defs[1] = %+v", defs[1])
	}
	if err := defs[1].Import(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(imported) != 1 || imported[0] != "report-page" {
		t.Errorf("imported = %v", imported)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(tmpDir) {
		t.Error("Exists should be false for empty directory")
	}

	configPath := filepath.Join(tmpDir, YAMLConfigFileName)
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(tmpDir) {
		t.Error("Exists should be true after creating config")
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}

	// Should fail when no config exists
	if _, err := FindProjectRoot(nestedDir); err == nil {
		t.Error("FindProjectRoot should fail when no config exists")
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nestedDir)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}
}

func TestStaticPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatal(err)
	}
	if got := cfg.StaticPath(); got != "" {
		t.Errorf("StaticPath = %q, want empty when disabled", got)
	}

	cfg.Static.Dir = "public"
	if got := cfg.StaticPath(); got != filepath.Join(tmpDir, "public") {
		t.Errorf("StaticPath = %q, want %q", got, filepath.Join(tmpDir, "public"))
	}

	cfg.Static.Dir = "/srv/assets"
	if got := cfg.StaticPath(); got != "/srv/assets" {
		t.Errorf("StaticPath absolute = %q, want %q", got, "/srv/assets")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Loader.Timeout != DefaultImportTimeout {
		t.Errorf("Loader.Timeout = %q, want %q", cfg.Loader.Timeout, DefaultImportTimeout)
	}
	if cfg.ImportTimeout() != 10*time.Second {
		t.Errorf("ImportTimeout = %v, want 10s", cfg.ImportTimeout())
	}
}
