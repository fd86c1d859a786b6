// Package app turns a loaded configuration into the orchestrator and
// supporting stores shared by the binaries.
package app

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/internal/config"
	"github.com/goliatone/go-checkoutform/internal/server"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/orchestrator"
	"github.com/goliatone/go-checkoutform/pkg/render"
	"github.com/goliatone/go-checkoutform/pkg/renderers/vanilla"
	"github.com/goliatone/go-checkoutform/pkg/usermeta"
	exprvis "github.com/goliatone/go-checkoutform/pkg/visibility/expr"
)

// Geo builds the geo component from cfg.
func Geo(cfg config.Config, logger logrus.FieldLogger) *geo.Component {
	return geo.New(
		geo.WithCountry(cfg.Geo.Country),
		geo.WithDatasetPath(cfg.Geo.DatasetPath),
		geo.WithRoutePath(cfg.Geo.RoutePath),
		geo.WithRegionParam(cfg.Geo.RegionParam),
		geo.WithLogger(logger),
	)
}

// UserMeta opens the configured profile store. Without a path profiles are
// kept in memory.
func UserMeta(cfg config.Config) usermeta.Store {
	if cfg.UserMeta.Path == "" {
		return usermeta.NewMemoryStore()
	}
	return usermeta.NewFileStore(cfg.UserMeta.Path)
}

// Orchestrator wires the vanilla renderer plus any extra renderers, the
// theme, the preset transformer, and the profile store.
func Orchestrator(cfg config.Config, logger logrus.FieldLogger, extra ...render.Renderer) (*orchestrator.Orchestrator, error) {
	evaluator := exprvis.New()

	html, err := vanilla.New(
		vanilla.WithEvaluator(evaluator),
		vanilla.WithInlineStylesheet(cfg.Server.InlineStyles),
		vanilla.WithScriptURL(server.AssetURL(cfg.Server.BasePath, cfg.Server.AssetsPath, "checkout.js")),
		vanilla.WithStylesheetURL(stylesheetURL(cfg)),
	)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	for _, renderer := range extra {
		if err := registry.Register(renderer); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	options := []orchestrator.Option{
		orchestrator.WithGeo(Geo(cfg, logger)),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(cfg.Server.Renderer),
		orchestrator.WithEvaluator(evaluator),
		orchestrator.WithUserMeta(UserMeta(cfg)),
		orchestrator.WithLogger(logger),
		orchestrator.WithCheckoutOptions(checkout.WithEndpoint(server.JoinPath(cfg.Server.BasePath, cfg.Server.Endpoint))),
	}

	if cfg.Theme.ManifestPath != "" {
		manifest, err := config.LoadThemeManifest(cfg.Theme.ManifestPath)
		if err != nil {
			return nil, err
		}
		name := cfg.Theme.Name
		if name == "" {
			name = manifest.Name
		}
		selector := render.ManifestSelector{Manifest: manifest, DefaultVariant: cfg.Theme.Variant}
		options = append(options, orchestrator.WithThemeSelector(selector, name, cfg.Theme.Variant))
	}

	if cfg.Preset != "" {
		data, err := os.ReadFile(cfg.Preset)
		if err != nil {
			return nil, fmt.Errorf("app: read preset: %w", err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		options = append(options, orchestrator.WithSchemaTransformer(preset))
	}

	return orchestrator.New(options...), nil
}

// The stylesheet is linked unless it is inlined.
func stylesheetURL(cfg config.Config) string {
	if cfg.Server.InlineStyles {
		return ""
	}
	return server.AssetURL(cfg.Server.BasePath, cfg.Server.AssetsPath, vanilla.StylesheetName)
}
