package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-checkoutform/pkg/model"
)

// Transformer mutates a FormModel before decorators run. Implementations can
// relabel fields, inject metadata, or perform arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// PresetTransformer applies declarative overrides loaded from a YAML or JSON
// document. The document shape supports form-level metadata plus section and
// field patches keyed by id and name:
//
//	metadata:
//	  shop: bazaar
//	sections:
//	  invoice-request-box:
//	    hint: "Tick this box for an official invoice."
//	fields:
//	  billing_national_code:
//	    label: "National ID"
//	    classes: ["ltr"]
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Metadata map[string]string             `yaml:"metadata" json:"metadata"`
	Sections map[string]presetSectionPatch `yaml:"sections" json:"sections"`
	Fields   map[string]presetFieldPatch   `yaml:"fields" json:"fields"`
}

type presetSectionPatch struct {
	Title   string   `yaml:"title" json:"title"`
	Hint    string   `yaml:"hint" json:"hint"`
	Classes []string `yaml:"classes" json:"classes"`
}

type presetFieldPatch struct {
	Label       string            `yaml:"label" json:"label"`
	Description string            `yaml:"description" json:"description"`
	Placeholder string            `yaml:"placeholder" json:"placeholder"`
	Classes     []string          `yaml:"classes" json:"classes"`
	Metadata    map[string]string `yaml:"metadata" json:"metadata"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied form. Patches
// naming an unknown section or field fail the transform.
func (t *PresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(t.document.Metadata) > 0 {
		form.Metadata = mergeStringMap(form.Metadata, t.document.Metadata)
	}

	for id, patch := range t.document.Sections {
		section, ok := form.Section(id)
		if !ok {
			return fmt.Errorf("preset transformer: section %q not found", id)
		}
		applySectionPatch(section, patch)
	}

	for name, patch := range t.document.Fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		field, ok := form.Field(name)
		if !ok {
			return fmt.Errorf("preset transformer: field %q not found", name)
		}
		applyFieldPatch(field, patch)
	}
	return nil
}

func applySectionPatch(section *model.Section, patch presetSectionPatch) {
	if patch.Title != "" {
		section.Title = patch.Title
	}
	if patch.Hint != "" {
		section.Hint = patch.Hint
	}
	section.Classes = appendMissing(section.Classes, patch.Classes...)
}

func applyFieldPatch(field *model.Field, patch presetFieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	field.Classes = appendMissing(field.Classes, patch.Classes...)
	if len(patch.Metadata) > 0 {
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
	}
}

func appendMissing(dst []string, values ...string) []string {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		found := false
		for _, existing := range dst {
			if existing == value {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, value)
		}
	}
	return dst
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
