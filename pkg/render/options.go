package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-checkoutform/components/geo"
)

// RenderOptions describe per-request data that renderers use without mutating
// the form model.
type RenderOptions struct {
	// Method overrides the HTTP method declared by the form model.
	Method string
	// Values pre-populates controls keyed by field name. Checkbox values use
	// the submitted representation ("1" when checked).
	Values map[string]string
	// Errors surfaces server-side validation feedback keyed by field name.
	Errors map[string][]string
	// FormErrors are messages not tied to a single field.
	FormErrors []string
	// HiddenFields are emitted as hidden inputs, sorted by name.
	HiddenFields map[string]string
	// Snapshot is the reconciled geo data handed to the client controller.
	Snapshot geo.Snapshot
	// Theme carries the resolved theme: tokens, CSS variables, and asset
	// URLs. Nil renders unthemed markup.
	Theme *theme.RendererConfig
}

// Value returns the prefilled value for name, or the empty string.
func (o RenderOptions) Value(name string) string {
	if o.Values == nil {
		return ""
	}
	return o.Values[name]
}
