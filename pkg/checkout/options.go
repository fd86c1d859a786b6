package checkout

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-checkoutform/pkg/model"
)

// Options configures Build.
type Options struct {
	ID       string
	Endpoint string
	Method   string
	// OrderNotes is the host's order notes field after MoveOrderNotes pulled it
	// out of the order section. When nil the order notes box is omitted.
	OrderNotes *model.Field
	// State preselects a province so its cities are listed on first render.
	State      string
	Decorators []model.Decorator
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		ID:       "checkout",
		Endpoint: "/checkout",
		Method:   http.MethodPost,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if strings.TrimSpace(opts.ID) == "" {
		opts.ID = "checkout"
	}
	if strings.TrimSpace(opts.Endpoint) == "" {
		opts.Endpoint = "/checkout"
	}
	opts.Method = strings.ToUpper(strings.TrimSpace(opts.Method))
	if opts.Method == "" {
		opts.Method = http.MethodPost
	}
	return opts
}

func WithEndpoint(endpoint string) OptionFn {
	return func(o *Options) {
		o.Endpoint = endpoint
	}
}

func WithMethod(method string) OptionFn {
	return func(o *Options) {
		o.Method = method
	}
}

func WithOrderNotes(field *model.Field) OptionFn {
	return func(o *Options) {
		if field == nil {
			o.OrderNotes = nil
			return
		}
		copied := *field
		o.OrderNotes = &copied
	}
}

func WithSelectedState(code string) OptionFn {
	return func(o *Options) {
		o.State = strings.TrimSpace(code)
	}
}

func WithDecorators(decorators ...model.Decorator) OptionFn {
	return func(o *Options) {
		o.Decorators = append(o.Decorators, decorators...)
	}
}
