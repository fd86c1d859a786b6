package checkoutform

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRuntimeAssetsFSContainsController(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), RuntimeScriptName)
	if err != nil {
		t.Fatalf("expected runtime controller to be readable: %v", err)
	}
	for _, marker := range []string{"checkout-data", "updated_checkout", "ccif-is-required"} {
		if !strings.Contains(string(data), marker) {
			t.Fatalf("expected controller to reference %q", marker)
		}
	}
}

func TestEmbeddedTemplatesAndStyles(t *testing.T) {
	if _, err := fs.Stat(EmbeddedTemplates(), "templates/checkout.tmpl"); err != nil {
		t.Fatalf("expected checkout template: %v", err)
	}
	if _, err := fs.Stat(EmbeddedStyles(), "checkout.css"); err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
}
