package tui

import (
	"github.com/goliatone/go-checkoutform/pkg/formstate"
	"github.com/goliatone/go-checkoutform/pkg/visibility"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// DefaultMaxRounds bounds how often invalid answers are asked again.
const DefaultMaxRounds = 3

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling renderer logic to ANSI specifics.
type Theme struct {
	SectionPrefix string
	ErrorPrefix   string
	RequiredMark  string
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(map[string]string) (map[string]string, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithEvaluator replaces the rule evaluator used for the final validation.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(r *Renderer) {
		if eval != nil {
			r.evaluator = eval
		}
	}
}

// WithCascadeOptions configures the province/city controller.
func WithCascadeOptions(fns ...formstate.CascadeOption) Option {
	return func(r *Renderer) {
		r.cascade = append(r.cascade, fns...)
	}
}

// WithMaxRounds sets how many correction rounds follow the first pass.
func WithMaxRounds(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.maxRounds = n
		}
	}
}
