package openapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-checkoutform/pkg/model"
)

const (
	DefaultTitle      = "Checkout"
	DefaultVersion    = "1.0.0"
	DefaultGeoPath    = "/api/geo/cities"
	DefaultGeoParam   = "region"
	DefaultHealthPath = "/healthz"

	formContentType = "application/x-www-form-urlencoded"
	htmlContentType = "text/html"

	// digitClass accepts ASCII, Persian, and Arabic-Indic digits.
	digitClass = "[0-9۰-۹٠-٩]"
)

// Options configures Build.
type Options struct {
	Title       string
	Version     string
	Description string
	ServerURL   string
	GeoPath     string
	GeoParam    string
	HealthPath  string
	// HiddenFields are documented as optional string properties of the
	// submission, for instance the checkout nonce.
	HiddenFields []string
}

type Option func(*Options)

func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

func WithDescription(description string) Option {
	return func(o *Options) {
		o.Description = description
	}
}

func WithServerURL(url string) Option {
	return func(o *Options) {
		o.ServerURL = url
	}
}

func WithGeoPath(path, param string) Option {
	return func(o *Options) {
		o.GeoPath = path
		o.GeoParam = param
	}
}

func WithHealthPath(path string) Option {
	return func(o *Options) {
		o.HealthPath = path
	}
}

func WithHiddenFields(names ...string) Option {
	return func(o *Options) {
		o.HiddenFields = append(o.HiddenFields, names...)
	}
}

func newOptions(fns ...Option) Options {
	opts := Options{}
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.GeoPath == "" {
		opts.GeoPath = DefaultGeoPath
	}
	if opts.GeoParam == "" {
		opts.GeoParam = DefaultGeoParam
	}
	if opts.HealthPath == "" {
		opts.HealthPath = DefaultHealthPath
	}
	return opts
}

// Build describes the checkout endpoint of form, the geo lookup endpoint,
// and the health probe.
func Build(form model.FormModel, fns ...Option) (Document, error) {
	opts := newOptions(fns...)
	endpoint := strings.TrimSpace(form.Endpoint)
	if endpoint == "" {
		return Document{}, fmt.Errorf("openapi: form %q has no endpoint", form.ID)
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	submission := submissionSchema(form, opts.HiddenFields)
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       opts.Title,
			Version:     opts.Version,
			Description: opts.Description,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"CheckoutSubmission": openapi3.NewSchemaRef("", submission),
				"FieldErrors":        openapi3.NewSchemaRef("", fieldErrorsSchema()),
				"CityMapping":        openapi3.NewSchemaRef("", cityMappingSchema()),
				"Option":             openapi3.NewSchemaRef("", optionSchema()),
			},
		},
	}
	if opts.ServerURL != "" {
		spec.Servers = openapi3.Servers{{URL: opts.ServerURL}}
	}

	spec.Paths.Set(endpoint, checkoutPath(form, submission))
	spec.Paths.Set(opts.GeoPath, geoPath(opts.GeoParam))
	spec.Paths.Set(opts.HealthPath, healthPath())

	return fromSpec(spec)
}

func checkoutPath(form model.FormModel, submission *openapi3.Schema) *openapi3.PathItem {
	id := form.ID
	if id == "" {
		id = "checkout"
	}

	show := openapi3.NewOperation()
	show.OperationID = "show-" + id
	show.Summary = "Render the checkout form"
	show.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, htmlResponse("Checkout form markup")),
	)

	submit := openapi3.NewOperation()
	submit.OperationID = "submit-" + id
	submit.Summary = form.Summary
	if submit.Summary == "" {
		submit.Summary = "Submit the checkout form"
	}
	submit.Description = form.Description
	submit.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.Content{
				formContentType: openapi3.NewMediaType().WithSchemaRef(componentRef("CheckoutSubmission", submission)),
			}),
	}
	accepted := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema().WithEnum("accepted"))
	accepted.Properties["data"] = componentRef("CheckoutSubmission", submission)
	rejected := openapi3.NewObjectSchema()
	rejected.Properties = openapi3.Schemas{
		"errors":      componentRef("FieldErrors", fieldErrorsSchema()),
		"form_errors": openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())),
	}
	submit.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, mixedResponse("Submission accepted", accepted)),
		openapi3.WithStatus(http.StatusUnprocessableEntity, mixedResponse("Submission rejected; the form is rendered again with inline errors", rejected)),
		openapi3.WithStatus(http.StatusForbidden, jsonResponse("Invalid checkout nonce", errorSchema())),
	)

	return &openapi3.PathItem{Get: show, Post: submit}
}

func geoPath(param string) *openapi3.PathItem {
	op := openapi3.NewOperation()
	op.OperationID = "list-cities"
	op.Summary = "Reconciled province to city mapping"
	op.Description = "Without the " + param + " parameter the full mapping is returned; with it, the select options of that province."
	op.AddParameter(openapi3.NewQueryParameter(param).
		WithDescription("Province code").
		WithSchema(openapi3.NewStringSchema()))

	data := openapi3.NewOneOfSchema(
		cityMappingSchema(),
		openapi3.NewArraySchema().WithItems(optionSchema()),
	)
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, jsonResponse("City data", openapi3.NewObjectSchema().WithProperty("data", data))),
		openapi3.WithStatus(http.StatusMethodNotAllowed, jsonResponse("Only GET and HEAD are allowed", errorSchema())),
	)
	return &openapi3.PathItem{Get: op}
}

func healthPath() *openapi3.PathItem {
	op := openapi3.NewOperation()
	op.OperationID = "health"
	op.Summary = "Liveness probe"
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, jsonResponse("Service is up", openapi3.NewObjectSchema().
			WithProperty("status", openapi3.NewStringSchema()).
			WithProperty("regions", openapi3.NewIntegerSchema()).
			WithProperty("mapped", openapi3.NewIntegerSchema()))),
	)
	return &openapi3.PathItem{Get: op}
}

// submissionSchema lists every field as a string property. Only statically
// required fields are listed as required; conditional requirements are
// carried in x-required-rule next to x-visibility-rule.
func submissionSchema(form model.FormModel, hidden []string) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	var required []string
	form.Walk(func(_ model.Position, field *model.Field) bool {
		schema.WithProperty(field.Name, fieldSchema(*field))
		if field.Required {
			required = append(required, field.Name)
		}
		return true
	})
	for _, name := range hidden {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, exists := schema.Properties[name]; !exists {
			schema.WithProperty(name, openapi3.NewStringSchema())
		}
	}
	schema.Required = required
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	schema := openapi3.NewStringSchema()
	schema.Title = field.Label
	schema.Description = field.Description
	if field.Default != "" {
		schema.Default = field.Default
	}
	if field.Type == model.FieldTypeCheckbox {
		schema.WithEnum("1")
	}

	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMinLength:
			if n, err := strconv.Atoi(rule.Params["value"]); err == nil {
				schema.WithMinLength(int64(n))
			}
		case model.ValidationRuleMaxLength:
			if n, err := strconv.Atoi(rule.Params["value"]); err == nil {
				schema.WithMaxLength(int64(n))
			}
		case model.ValidationRulePattern:
			if pattern := rule.Params["pattern"]; pattern != "" {
				schema.WithPattern(pattern)
			}
		case model.ValidationRuleDigits:
			if n, err := strconv.Atoi(rule.Params["value"]); err == nil {
				schema.WithPattern(fmt.Sprintf("^%s{%d}$", digitClass, n))
			}
		case model.ValidationRuleOneOf:
			var values []any
			for _, option := range field.Options {
				if option.Value != "" {
					values = append(values, option.Value)
				}
			}
			if len(values) > 0 {
				schema.WithEnum(values...)
			}
		}
	}

	extensions := map[string]any{}
	for key, ext := range map[string]string{
		model.MetadataVisibilityRule: "x-visibility-rule",
		model.MetadataRequiredRule:   "x-required-rule",
		model.MetadataDependsOn:      "x-depends-on",
		model.MetadataGroup:          "x-group",
	} {
		if value := field.Meta(key); value != "" {
			extensions[ext] = value
		}
	}
	if len(extensions) > 0 {
		schema.Extensions = extensions
	}
	return schema
}

func cityMappingSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithAdditionalProperties(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
}

func optionSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("value", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema())
}

func fieldErrorsSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithAdditionalProperties(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema())
}

func componentRef(name string, schema *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, schema)
}

func htmlResponse(description string) *openapi3.ResponseRef {
	response := openapi3.NewResponse().
		WithDescription(description).
		WithContent(openapi3.Content{
			htmlContentType: openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema()),
		})
	return &openapi3.ResponseRef{Value: response}
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	response := openapi3.NewResponse().
		WithDescription(description).
		WithJSONSchema(schema)
	return &openapi3.ResponseRef{Value: response}
}

// mixedResponse serves HTML to browsers and JSON to API clients.
func mixedResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	response := openapi3.NewResponse().
		WithDescription(description).
		WithContent(openapi3.Content{
			htmlContentType:    openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema()),
			"application/json": openapi3.NewMediaType().WithSchema(schema),
		})
	return &openapi3.ResponseRef{Value: response}
}
