package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"
)

func testManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "bazaar",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":  "#0f766e",
			"radius": "6px",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/bazaar/",
			Files: map[string]string{
				"checkout.stylesheet": "checkout.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#14b8a6"},
				Assets: theme.Assets{
					Files: map[string]string{"checkout.script": "https://cdn.example.com/checkout.js"},
				},
			},
		},
	}
}

func TestThemeConfig_MergesVariant(t *testing.T) {
	selection, err := ManifestSelector{Manifest: testManifest()}.Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	cfg := ThemeConfig(selection)
	if cfg == nil {
		t.Fatalf("expected config")
	}

	wantVars := map[string]string{"--brand": "#14b8a6", "--radius": "6px"}
	if diff := cmp.Diff(wantVars, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	if cfg.Theme != "bazaar" || cfg.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.AssetURL("checkout.stylesheet"); got != "/assets/themes/bazaar/checkout.css" {
		t.Fatalf("stylesheet url = %q", got)
	}
	if got := cfg.AssetURL("checkout.script"); got != "https://cdn.example.com/checkout.js" {
		t.Fatalf("script url = %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("missing asset url = %q", got)
	}
}

func TestThemeConfig_Nil(t *testing.T) {
	if ThemeConfig(nil) != nil {
		t.Fatalf("expected nil config for nil selection")
	}
	if ThemeConfig(&theme.Selection{Theme: "x"}) != nil {
		t.Fatalf("expected nil config without manifest")
	}
}

func TestManifestSelector_Errors(t *testing.T) {
	selector := ManifestSelector{Manifest: testManifest()}
	if _, err := selector.Select("other", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}
	if _, err := selector.Select("bazaar", "sepia"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
	if _, err := (ManifestSelector{}).Select("", ""); err == nil {
		t.Fatalf("expected nil manifest error")
	}
}

func TestCSSVarsStyle(t *testing.T) {
	got := CSSVarsStyle(map[string]string{"--b": "2", "--a": "1"})
	want := ":root {\n--a: 1;\n--b: 2;\n}"
	if got != want {
		t.Fatalf("CSSVarsStyle() = %q, want %q", got, want)
	}
	if CSSVarsStyle(nil) != "" {
		t.Fatalf("expected empty style")
	}
}
