package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.ApplyEnv(os.LookupEnv)
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileOverDefaults(t *testing.T) {
	path := writeFile(t, "checkout.yaml", `
server:
  addr: ":9090"
  inline_styles: true
  read_timeout: 3s
geo:
  dataset: ./cities.yaml
log:
  format: json
usermeta:
  path: ./profiles.yaml
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" && os.Getenv("CHECKOUT_ADDR") == "" {
		t.Fatalf("addr: got %q", cfg.Server.Addr)
	}
	if !cfg.Server.InlineStyles || cfg.Server.ReadTimeout != 3*time.Second {
		t.Fatalf("server section not applied: %+v", cfg.Server)
	}
	if cfg.Server.Endpoint != "/checkout" {
		t.Fatalf("default endpoint lost: %q", cfg.Server.Endpoint)
	}
	if cfg.Geo.DatasetPath != "./cities.yaml" || cfg.Geo.RoutePath != "/api/geo/cities" {
		t.Fatalf("geo section: %+v", cfg.Geo)
	}
	if cfg.UserMeta.Path != "./profiles.yaml" {
		t.Fatalf("usermeta path: %q", cfg.UserMeta.Path)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CHECKOUT_ADDR":      ":7070",
		"CHECKOUT_LOG_LEVEL": "debug",
		"CHECKOUT_THEME":     " ",
	}
	cfg := Default()
	cfg.ApplyEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	if cfg.Server.Addr != ":7070" || cfg.Log.Level != "debug" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Theme.Name != "" {
		t.Fatalf("blank env value applied: %q", cfg.Theme.Name)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Endpoint = "checkout"
	cfg.Theme.Name = "bazaar"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "server: [")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLoadThemeManifest(t *testing.T) {
	path := writeFile(t, "theme.yaml", `
name: bazaar
version: 1.0.0
tokens:
  brand: "#0f766e"
assets:
  prefix: /themes/bazaar
  files:
    checkout.stylesheet: checkout.css
variants:
  dark:
    tokens:
      brand: "#115e59"
`)
	manifest, err := LoadThemeManifest(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if manifest.Name != "bazaar" || manifest.Assets.Prefix != "/themes/bazaar" {
		t.Fatalf("manifest: %+v", manifest)
	}
	if got := manifest.Variants["dark"].Tokens["brand"]; got != "#115e59" {
		t.Fatalf("dark brand: %q", got)
	}

	if _, err := LoadThemeManifest(writeFile(t, "anon.yaml", "version: 1\n")); err == nil {
		t.Fatalf("expected error for unnamed manifest")
	}
}
