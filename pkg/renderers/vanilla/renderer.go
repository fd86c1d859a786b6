package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-checkoutform/pkg/model"
	"github.com/goliatone/go-checkoutform/pkg/render"
	rendertemplate "github.com/goliatone/go-checkoutform/pkg/render/template"
	gotemplate "github.com/goliatone/go-checkoutform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-checkoutform/pkg/visibility"
	exprvis "github.com/goliatone/go-checkoutform/pkg/visibility/expr"
)

// Theme asset keys looked up through the theme's AssetURL resolver.
const (
	ThemeStylesheetAsset = "checkout.stylesheet"
	ThemeScriptAsset     = "checkout.script"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	evaluator        visibility.Evaluator
	inlineStyles     bool
	scriptURL        string
	stylesheetURL    string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithEvaluator replaces the rule evaluator used for the initial visibility
// and required state.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(cfg *config) {
		if eval != nil {
			cfg.evaluator = eval
		}
	}
}

// WithInlineStylesheet embeds the default stylesheet in a style tag.
func WithInlineStylesheet(inline bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = inline
	}
}

// WithScriptURL sets where the page loads the checkout controller from.
func WithScriptURL(url string) Option {
	return func(cfg *config) {
		cfg.scriptURL = url
	}
}

// WithStylesheetURL links an external stylesheet.
func WithStylesheetURL(url string) Option {
	return func(cfg *config) {
		cfg.stylesheetURL = url
	}
}

// Renderer renders the checkout as HTML markup following the host
// platform's form-row conventions.
type Renderer struct {
	templates     rendertemplate.TemplateRenderer
	evaluator     visibility.Evaluator
	inlineStyles  bool
	scriptURL     string
	stylesheetURL string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.evaluator == nil {
		cfg.evaluator = exprvis.New()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:     renderer,
		evaluator:     cfg.evaluator,
		inlineStyles:  cfg.inlineStyles,
		scriptURL:     cfg.scriptURL,
		stylesheetURL: cfg.stylesheetURL,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	view, err := newViewBuilder(r.evaluator, options).form(form)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	data := map[string]any{
		"form":           view,
		"script_url":     r.scriptURL,
		"stylesheet_url": r.stylesheetURL,
	}
	if r.inlineStyles {
		data["stylesheet"] = defaultStylesheet()
	}
	if cfg := options.Theme; cfg != nil {
		data["theme"] = map[string]any{
			"name":           cfg.Theme,
			"variant":        cfg.Variant,
			"css_vars_style": render.CSSVarsStyle(cfg.CSSVars),
		}
		if cfg.AssetURL != nil {
			if url := cfg.AssetURL(ThemeStylesheetAsset); url != "" {
				data["stylesheet_url"] = url
			}
			if url := cfg.AssetURL(ThemeScriptAsset); url != "" {
				data["script_url"] = url
			}
		}
	}

	result, err := r.templates.RenderTemplate(TemplateName, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
