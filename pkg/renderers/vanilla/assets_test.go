package vanilla

import (
	"io/fs"
	"strings"
	"testing"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".ccif-box") {
		t.Fatalf("expected stylesheet to style checkout boxes")
	}
}

func TestTemplatesFSContainsEntryTemplate(t *testing.T) {
	if _, err := fs.Stat(TemplatesFS(), TemplateName); err != nil {
		t.Fatalf("expected %s: %v", TemplateName, err)
	}
}
