package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// Document wraps a kin-openapi specification together with its JSON
// serialization.
type Document struct {
	spec *openapi3.T
	raw  []byte
}

// NewDocument parses raw JSON or YAML into a Document.
func NewDocument(ctx context.Context, raw []byte) (Document, error) {
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: load document: %w", err)
	}
	return Document{spec: spec, raw: append([]byte(nil), raw...)}, nil
}

func fromSpec(spec *openapi3.T) (Document, error) {
	raw, err := spec.MarshalJSON()
	if err != nil {
		return Document{}, fmt.Errorf("openapi: encode document: %w", err)
	}
	return Document{spec: spec, raw: raw}, nil
}

// Spec returns the underlying specification.
func (d Document) Spec() *openapi3.T {
	return d.spec
}

// Raw returns a copy of the JSON serialization.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Validate checks the document against the OpenAPI 3 rules.
func (d Document) Validate(ctx context.Context) error {
	if d.spec == nil {
		return errors.New("openapi: document is empty")
	}
	if err := d.spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("openapi: validate: %w", err)
	}
	return nil
}

// Operation summarizes one method/path pair.
type Operation struct {
	ID     string
	Method string
	Path   string
}

// Operations lists the document's operations sorted by path then method.
func (d Document) Operations() []Operation {
	if d.spec == nil || d.spec.Paths == nil {
		return nil
	}
	items := d.spec.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var out []Operation
	for _, path := range paths {
		item := items[path]
		if item == nil {
			continue
		}
		for _, method := range []string{"GET", "HEAD", "POST"} {
			if op := item.GetOperation(method); op != nil {
				out = append(out, Operation{ID: op.OperationID, Method: method, Path: path})
			}
		}
	}
	return out
}
