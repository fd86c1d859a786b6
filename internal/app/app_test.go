package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-checkoutform/internal/config"
	"github.com/goliatone/go-checkoutform/internal/logging"
	"github.com/goliatone/go-checkoutform/pkg/orchestrator"
	"github.com/goliatone/go-checkoutform/pkg/usermeta"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOrchestrator_FromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.BasePath = "/shop"
	cfg.Geo.DatasetPath = write(t, dir, "cities.yaml", "- name: تهران\n  cities: [تهران, شمیرانات]\n")
	cfg.Theme.ManifestPath = write(t, dir, "theme.yaml", "name: bazaar\ntokens:\n  brand: \"#0f766e\"\n")
	cfg.Preset = write(t, dir, "preset.yaml", "fields:\n  billing_phone:\n    label: Mobile\n")
	cfg.UserMeta.Path = filepath.Join(dir, "profiles.yaml")

	orch, err := Orchestrator(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	out, err := orch.Generate(context.Background(), orchestrator.Request{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, fragment := range []string{
		`action="/shop/checkout"`,
		`<script src="/shop/assets/checkout.js" defer></script>`,
		`<link rel="stylesheet" href="/shop/assets/checkout.css">`,
		`<style data-theme="bazaar">`,
		`Mobile`,
		`"THR":["تهران","شمیرانات"]`,
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q", fragment)
		}
	}
}

func TestUserMeta(t *testing.T) {
	cfg := config.Default()
	store := UserMeta(cfg)
	if _, ok := store.(*usermeta.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	cfg.UserMeta.Path = filepath.Join(t.TempDir(), "profiles.yaml")
	store = UserMeta(cfg)
	if _, ok := store.(*usermeta.FileStore); !ok {
		t.Fatalf("expected file store, got %T", store)
	}
}

func TestOrchestrator_BadPreset(t *testing.T) {
	cfg := config.Default()
	cfg.Preset = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := Orchestrator(cfg, logging.Discard()); err == nil {
		t.Fatalf("expected error for missing preset")
	}
}
