package checkoutform

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/orchestrator"
	"github.com/goliatone/go-checkoutform/pkg/render"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Mapping is the reconciled province code to city list mapping.
type Mapping = geo.Mapping

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders the checkout form with the named renderer. It is the
// simplest entry point for callers that just want HTML output.
func GenerateHTML(ctx context.Context, rendererName string, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Renderer:      rendererName,
		RenderOptions: opts,
	})
}

// Reconcile builds the province to city mapping from an authoritative
// code to name table and a name-keyed city dataset.
func Reconcile(regions map[string]string, records []geo.CityRecord) Mapping {
	return geo.Reconcile(regions, records)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector, defaultTheme, defaultVariant string) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector, defaultTheme, defaultVariant)
}

// WithThemeManifest selects a single manifest as the checkout theme.
func WithThemeManifest(manifest *theme.Manifest, defaultVariant string) orchestrator.Option {
	var name string
	if manifest != nil {
		name = manifest.Name
	}
	return orchestrator.WithThemeSelector(render.ManifestSelector{Manifest: manifest, DefaultVariant: defaultVariant}, name, defaultVariant)
}
