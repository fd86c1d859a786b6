package render

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig flattens a selection into renderer configuration. Variant
// tokens, templates, and asset files override the manifest's own; every
// token also becomes a CSS custom property named "--" + token.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := copyStrings(manifest.Tokens)
	partials := copyStrings(manifest.Templates)
	files := copyStrings(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = overlay(tokens, variant.Tokens)
		partials = overlay(partials, variant.Templates)
		files = overlay(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	var cssVars map[string]string
	if len(tokens) > 0 {
		cssVars = make(map[string]string, len(tokens))
		for key, value := range tokens {
			cssVars["--"+strings.TrimPrefix(key, "--")] = value
		}
	}

	name := selection.Theme
	if name == "" {
		name = manifest.Name
	}
	return &theme.RendererConfig{
		Theme:    name,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}
}

// CSSVarsStyle renders vars as a ":root" rule with keys sorted.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// ManifestSelector always selects one manifest. An empty variant falls back
// to DefaultVariant.
type ManifestSelector struct {
	Manifest       *theme.Manifest
	DefaultVariant string
}

var _ theme.ThemeSelector = ManifestSelector{}

func (s ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s.Manifest == nil {
		return nil, fmt.Errorf("render: theme manifest is nil")
	}
	if name != "" && name != s.Manifest.Name {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}
	if variant == "" {
		variant = s.DefaultVariant
	}
	if variant != "" {
		if _, ok := s.Manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", s.Manifest.Name, variant)
		}
	}
	return &theme.Selection{
		Theme:    s.Manifest.Name,
		Variant:  variant,
		Manifest: s.Manifest,
	}, nil
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(prefix, "/")
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") || prefix == "" {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}
}

func copyStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func overlay(base, top map[string]string) map[string]string {
	if len(top) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(top))
	}
	for key, value := range top {
		base[key] = value
	}
	return base
}
