// Package config loads the server and CLI configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Geo      Geo      `yaml:"geo"`
	Theme    Theme    `yaml:"theme"`
	Log      Log      `yaml:"log"`
	UserMeta UserMeta `yaml:"usermeta"`
	// Preset is an optional YAML or JSON document relabelling sections and
	// fields.
	Preset string `yaml:"preset"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	Endpoint        string        `yaml:"endpoint"`
	Renderer        string        `yaml:"renderer"`
	InlineStyles    bool          `yaml:"inline_styles"`
	AssetsPath      string        `yaml:"assets_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Geo struct {
	Country     string `yaml:"country"`
	DatasetPath string `yaml:"dataset"`
	RoutePath   string `yaml:"route_path"`
	RegionParam string `yaml:"region_param"`
}

type Theme struct {
	ManifestPath string `yaml:"manifest"`
	Name         string `yaml:"name"`
	Variant      string `yaml:"variant"`
}

type Log struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	Dir    string        `yaml:"dir"`
	MaxAge time.Duration `yaml:"max_age"`
}

type UserMeta struct {
	// Path of the YAML profile store. Empty keeps profiles in memory.
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			Endpoint:        "/checkout",
			Renderer:        "vanilla",
			AssetsPath:      "/assets/",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Geo: Geo{
			Country:     "IR",
			RoutePath:   "/api/geo/cities",
			RegionParam: "region",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CHECKOUT_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	overrides := []struct {
		key string
		dst *string
	}{
		{"CHECKOUT_ADDR", &c.Server.Addr},
		{"CHECKOUT_BASE_PATH", &c.Server.BasePath},
		{"CHECKOUT_RENDERER", &c.Server.Renderer},
		{"CHECKOUT_DATASET", &c.Geo.DatasetPath},
		{"CHECKOUT_THEME_MANIFEST", &c.Theme.ManifestPath},
		{"CHECKOUT_THEME", &c.Theme.Name},
		{"CHECKOUT_THEME_VARIANT", &c.Theme.Variant},
		{"CHECKOUT_LOG_LEVEL", &c.Log.Level},
		{"CHECKOUT_LOG_FORMAT", &c.Log.Format},
		{"CHECKOUT_LOG_DIR", &c.Log.Dir},
		{"CHECKOUT_USERMETA_PATH", &c.UserMeta.Path},
		{"CHECKOUT_PRESET", &c.Preset},
	}
	for _, o := range overrides {
		if value, ok := lookup(o.key); ok && strings.TrimSpace(value) != "" {
			*o.dst = strings.TrimSpace(value)
		}
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if !strings.HasPrefix(c.Server.Endpoint, "/") {
		errs = append(errs, fmt.Errorf("server.endpoint %q must start with /", c.Server.Endpoint))
	}
	if !strings.HasPrefix(c.Geo.RoutePath, "/") {
		errs = append(errs, fmt.Errorf("geo.route_path %q must start with /", c.Geo.RoutePath))
	}
	if c.Theme.Name != "" && c.Theme.ManifestPath == "" {
		errs = append(errs, errors.New("theme.name requires theme.manifest"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
