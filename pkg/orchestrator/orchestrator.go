package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	theme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/model"
	"github.com/goliatone/go-checkoutform/pkg/render"
	"github.com/goliatone/go-checkoutform/pkg/renderers/vanilla"
	"github.com/goliatone/go-checkoutform/pkg/usermeta"
	"github.com/goliatone/go-checkoutform/pkg/visibility"
	exprvis "github.com/goliatone/go-checkoutform/pkg/visibility/expr"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithGeo injects the component supplying provinces and reconciled cities.
func WithGeo(component *geo.Component) Option {
	return func(o *Orchestrator) {
		o.geo = component
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithUserMeta enables prefill and persistence of profile fields for
// signed-in users.
func WithUserMeta(store usermeta.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithEvaluator replaces the rule evaluator used during submission.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(o *Orchestrator) {
		o.evaluator = eval
	}
}

// WithCheckoutOptions forwards options to checkout.Build.
func WithCheckoutOptions(fns ...checkout.OptionFn) Option {
	return func(o *Orchestrator) {
		o.checkoutOpts = append(o.checkoutOpts, fns...)
	}
}

// WithSchemaTransformer registers a Transformer that can mutate form models
// after building but before decorators run.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithUIDecorators registers decorators that should run against the built
// form model before rendering.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeSelector resolves the theme handed to renderers. name and variant
// are the defaults when a request does not name its own.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themes = selector
		o.themeName = name
		o.themeVariant = variant
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the full pipeline from geo data to rendered
// output. It applies sensible defaults (embedded provinces and cities,
// vanilla renderer, expr rules) while remaining open to dependency
// injection.
type Orchestrator struct {
	geo             *geo.Component
	registry        *render.Registry
	defaultRenderer string
	store           usermeta.Store
	evaluator       visibility.Evaluator
	checkoutOpts    []checkout.OptionFn
	transformer     Transformer
	decorators      []model.Decorator
	themes          theme.ThemeSelector
	themeName       string
	themeVariant    string
	logger          logrus.FieldLogger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one rendering of the checkout.
type Request struct {
	// UserID identifies the signed-in customer. uuid.Nil renders without
	// profile prefill.
	UserID uuid.UUID

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// HostFields is the host platform's field table. When its order section
	// holds the order notes field, the field is moved into its own box.
	HostFields checkout.HostFields

	// Theme and ThemeVariant override the configured theme selection.
	Theme        string
	ThemeVariant string

	// RenderOptions carries prefilled values, server-side errors, and hidden
	// fields. Snapshot and, when a selector is configured, Theme are filled in
	// by the orchestrator.
	RenderOptions render.RenderOptions
}

// Prepared is the input a renderer receives for one request.
type Prepared struct {
	Form     model.FormModel
	Snapshot geo.Snapshot
	Options  render.RenderOptions
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Geo returns the geo component backing the orchestrator.
func (o *Orchestrator) Geo() *geo.Component {
	return o.geo
}

// Prepare loads the geo snapshot, prefills stored profile values under the
// request values, and builds the checkout form.
func (o *Orchestrator) Prepare(ctx context.Context, req Request) (Prepared, error) {
	if err := o.ready(ctx); err != nil {
		return Prepared{}, err
	}

	values := copyValues(req.RenderOptions.Values)
	stored, err := usermeta.Load(ctx, o.store, req.UserID, checkout.PersistedFields)
	if err != nil {
		o.logger.WithError(err).WithField("user", req.UserID).Warn("orchestrator: user meta unavailable")
	}
	values = usermeta.Merge(stored, values)

	form, snapshot, err := o.build(ctx, values, req.HostFields)
	if err != nil {
		return Prepared{}, err
	}

	opts := req.RenderOptions
	opts.Values = values
	opts.Snapshot = snapshot
	if opts.Theme == nil {
		cfg, err := o.themeConfig(req)
		if err != nil {
			return Prepared{}, err
		}
		opts.Theme = cfg
	}

	return Prepared{Form: form, Snapshot: snapshot, Options: opts}, nil
}

// Generate executes Prepare and hands the result to the selected renderer,
// returning the rendered bytes (HTML for the default vanilla renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	prepared, err := o.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, prepared.Form, prepared.Options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.initialiseErr
}

func (o *Orchestrator) build(ctx context.Context, values map[string]string, host checkout.HostFields) (model.FormModel, geo.Snapshot, error) {
	snapshot := o.geo.Load(ctx)

	fns := append([]checkout.OptionFn{}, o.checkoutOpts...)
	if state := values[checkout.FieldState]; state != "" {
		fns = append(fns, checkout.WithSelectedState(state))
	}
	if host != nil {
		_, notes := checkout.MoveOrderNotes(host)
		fns = append(fns, checkout.WithOrderNotes(notes))
	}

	form, err := checkout.Build(snapshot, fns...)
	if err != nil {
		return model.FormModel{}, snapshot, fmt.Errorf("orchestrator: build form model: %w", err)
	}
	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormModel{}, snapshot, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormModel{}, snapshot, err
	}
	return form, snapshot, nil
}

func (o *Orchestrator) themeConfig(req Request) (*theme.RendererConfig, error) {
	if o.themes == nil {
		return nil, nil
	}
	name := req.Theme
	if name == "" {
		name = o.themeName
	}
	variant := req.ThemeVariant
	if variant == "" {
		variant = o.themeVariant
	}
	selection, err := o.themes.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return render.ThemeConfig(selection), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	if len(o.decorators) == 0 || form == nil {
		return nil
	}
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		o.logger = logger
	}
	if o.geo == nil {
		o.geo = geo.New(geo.WithLogger(o.logger))
	}
	if o.evaluator == nil {
		o.evaluator = exprvis.New()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New(vanilla.WithEvaluator(o.evaluator))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else if err := o.registry.Register(renderer); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
