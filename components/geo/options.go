package geo

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// GuardFunc authorizes a request before the handler serves it.
type GuardFunc func(r *http.Request) error

// Options configures the component, handler, and routes.
type Options struct {
	RoutePath   string
	RegionParam string
	Country     string
	Guard       GuardFunc

	// States is the authoritative province source. Defaults to EmbeddedStates.
	States StateSource
	// Records overrides the city dataset. When nil, DatasetPath is read, and
	// when that is empty the embedded dataset is used.
	Records     []CityRecord
	DatasetPath string

	Logger logrus.FieldLogger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:   "/api/geo/cities",
		RegionParam: "region",
		Country:     DefaultCountry,
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
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/geo/cities"
	}
	if opts.RegionParam == "" {
		opts.RegionParam = "region"
	}
	opts.Country = strings.ToUpper(strings.TrimSpace(opts.Country))
	if opts.Country == "" {
		opts.Country = DefaultCountry
	}
	if opts.States == nil {
		opts.States = EmbeddedStates()
	}
	if opts.Records != nil {
		opts.Records = cloneRecords(opts.Records)
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithRegionParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RegionParam = name
	}
}

func WithCountry(country string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Country = country
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithStateSource(source StateSource) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.States = source
	}
}

// WithRegions installs a fixed authoritative list for the configured country.
func WithRegions(regions []Region) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		list := append([]Region{}, regions...)
		o.States = StateSourceFunc(func(_ context.Context, _ string) ([]Region, error) {
			return append([]Region{}, list...), nil
		})
	}
}

func WithRecords(records []CityRecord) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if records == nil {
			o.Records = nil
			return
		}
		o.Records = cloneRecords(records)
	}
}

func WithDatasetPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DatasetPath = strings.TrimSpace(path)
	}
}

func WithLogger(logger logrus.FieldLogger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
