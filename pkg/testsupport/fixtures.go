package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/model"
)

// Snapshot returns a small reconciled geo snapshot: Tehran with two cities and
// Qom with one. Every call returns a fresh copy so tests may mutate it.
func Snapshot() geo.Snapshot {
	return geo.Snapshot{
		Country: "IR",
		Regions: []geo.Region{{Code: "THR", Name: "تهران"}, {Code: "QHM", Name: "قم"}},
		Cities:  geo.Mapping{"THR": {"تهران", "شمیرانات"}, "QHM": {"قم"}},
	}
}

// CheckoutForm builds the checkout form model for snapshot, failing the test
// on builder errors.
func CheckoutForm(t *testing.T, snapshot geo.Snapshot, fns ...checkout.OptionFn) model.FormModel {
	t.Helper()

	form, err := checkout.Build(snapshot, fns...)
	if err != nil {
		t.Fatalf("build checkout form: %v", err)
	}
	return form
}

// LoadSnapshot reads a JSON snapshot fixture, returning an error for callers
// managing setup outside of *testing.T.
func LoadSnapshot(path string) (geo.Snapshot, error) {
	if path == "" {
		return geo.Snapshot{}, errors.New("testsupport: snapshot path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return geo.Snapshot{}, fmt.Errorf("testsupport: read snapshot: %w", err)
	}
	var out geo.Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		return geo.Snapshot{}, fmt.Errorf("testsupport: unmarshal snapshot: %w", err)
	}
	return out, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
