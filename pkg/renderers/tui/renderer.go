package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/formstate"
	"github.com/goliatone/go-checkoutform/pkg/model"
	"github.com/goliatone/go-checkoutform/pkg/render"
	"github.com/goliatone/go-checkoutform/pkg/visibility"
	exprvis "github.com/goliatone/go-checkoutform/pkg/visibility/expr"
)

var plainText = bluemonday.StrictPolicy()

// Renderer implements render.Renderer for terminal-driven sessions. It walks
// the checkout with the same controllers the browser runs: choosing a
// province repopulates the city list and the person type and invoice answers
// decide which questions follow.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	evaluator         visibility.Evaluator
	cascade           []formstate.CascadeOption
	maxRounds         int
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (render.Renderer, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		driver:       driver,
		outputFormat: OutputFormatJSON,
		maxRounds:    DefaultMaxRounds,
		theme: Theme{
			SectionPrefix: "== ",
			ErrorPrefix:   "! ",
			RequiredMark:  " *",
		},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.evaluator == nil {
		r.evaluator = exprvis.New()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every visible control in display order, then asks again
// for the fields that fail validation until the submission is valid or the
// correction rounds run out. The result is the submission payload.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	session := formstate.NewCheckout(form, opts.Snapshot.Cities, opts.Values, r.cascade...)
	session.Init()
	titles := sectionTitles(form)

	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	section := ""
	for _, name := range session.Form.Names() {
		ctrl, ok := session.Form.Control(name)
		if !ok || ctrl.Hidden {
			continue
		}
		if ctrl.Section != section {
			section = ctrl.Section
			if title := titles[section]; title != "" {
				if err := r.driver.Info(ctx, r.theme.SectionPrefix+title); err != nil {
					return nil, err
				}
			}
		}
		if err := r.prompt(ctx, session, ctrl, opts.Errors[name]); err != nil {
			return nil, err
		}
	}

	validator := checkout.NewValidator(r.evaluator)
	for round := 0; ; round++ {
		result := validator.Validate(form, session.Values(), opts.Snapshot.Cities)
		if !result.HasErrors() {
			break
		}
		if round >= r.maxRounds {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(sortedKeys(result.Fields), ", "))
		}
		for _, message := range result.Form {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
				return nil, err
			}
		}
		for _, name := range session.Form.Names() {
			messages := result.Fields[name]
			if len(messages) == 0 {
				continue
			}
			ctrl, ok := session.Form.Control(name)
			if !ok || ctrl.Hidden {
				continue
			}
			if err := r.prompt(ctx, session, ctrl, messages); err != nil {
				return nil, err
			}
		}
	}

	values := session.Values()
	for _, hidden := range render.SortedHiddenFields(opts.HiddenFields) {
		if _, exists := values[hidden.Name]; !exists {
			values[hidden.Name] = hidden.Value
		}
	}
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

func (r *Renderer) prompt(ctx context.Context, session *formstate.Checkout, ctrl formstate.Control, messages []string) error {
	for _, message := range messages {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	label := displayLabel(ctrl)
	if ctrl.Required {
		label += r.theme.RequiredMark
	}

	switch ctrl.Type {
	case model.FieldTypeCheckbox:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: ctrl.Checked})
		if err != nil {
			return err
		}
		value := ""
		if answer {
			value = "1"
		}
		session.Change(ctrl.Name, value)
		return nil

	case model.FieldTypeSelect:
		return r.promptSelect(ctx, session, ctrl, label)

	case model.FieldTypeTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: ctrl.Value})
		if err != nil {
			return err
		}
		session.Change(ctrl.Name, answer)
		return nil

	default:
		cfg := InputConfig{Message: label, Default: ctrl.Value}
		if ctrl.Required {
			cfg.Validator = requiredValidator
		}
		answer, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		session.Change(ctrl.Name, strings.TrimSpace(answer))
		return nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, session *formstate.Checkout, ctrl formstate.Control, label string) error {
	if len(ctrl.Options) == 0 {
		return nil
	}
	labels := make([]string, len(ctrl.Options))
	current := -1
	for i, option := range ctrl.Options {
		labels[i] = option.Label
		if option.Value == ctrl.Value {
			current = i
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: current,
			PageSize:     12,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(ctrl.Options) {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+"گزینه نامعتبر است."); err != nil {
				return err
			}
			continue
		}
		session.Change(ctrl.Name, ctrl.Options[idx].Value)
		return nil
	}
}

func (r *Renderer) serialize(values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func requiredValidator(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("این فیلد الزامی است.")
	}
	return nil
}

// displayLabel strips markup and the optional marker from a label so it
// reads well in a terminal.
func displayLabel(ctrl formstate.Control) string {
	label := checkout.StripOptionalMarker(ctrl.Label, false)
	label = strings.TrimSpace(html.UnescapeString(plainText.Sanitize(label)))
	if label == "" {
		return ctrl.Name
	}
	return label
}

func sectionTitles(form model.FormModel) map[string]string {
	titles := make(map[string]string, len(form.Sections))
	for _, section := range form.Sections {
		titles[section.ID] = section.Title
	}
	return titles
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func flattenForm(values map[string]string) string {
	form := url.Values{}
	for key, value := range values {
		form.Set(key, value)
	}
	return form.Encode()
}

func prettyPrint(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, values[key])
	}
	return b.String()
}
