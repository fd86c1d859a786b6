package formstate

import (
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/model"
)

const (
	DefaultCityPlaceholder = "ابتدا استان را انتخاب کنید"
	DefaultResyncDelay     = 100 * time.Millisecond
)

// CascadeOptions configures a CascadingSelect.
type CascadeOptions struct {
	Placeholder string
	ResyncDelay time.Duration
	Clock       clockwork.Clock
	Logger      logrus.FieldLogger
	// OnResync is called after every deferred check with whether the city
	// options were rebuilt.
	OnResync func(repopulated bool)
}

type CascadeOption func(*CascadeOptions)

func WithPlaceholder(label string) CascadeOption {
	return func(o *CascadeOptions) {
		o.Placeholder = label
	}
}

func WithResyncDelay(d time.Duration) CascadeOption {
	return func(o *CascadeOptions) {
		o.ResyncDelay = d
	}
}

func WithClock(clock clockwork.Clock) CascadeOption {
	return func(o *CascadeOptions) {
		o.Clock = clock
	}
}

func WithLogger(logger logrus.FieldLogger) CascadeOption {
	return func(o *CascadeOptions) {
		o.Logger = logger
	}
}

func WithResyncHook(fn func(repopulated bool)) CascadeOption {
	return func(o *CascadeOptions) {
		o.OnResync = fn
	}
}

func newCascadeOptions(fns ...CascadeOption) CascadeOptions {
	opts := CascadeOptions{
		Placeholder: DefaultCityPlaceholder,
		ResyncDelay: DefaultResyncDelay,
	}
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultCityPlaceholder
	}
	if opts.ResyncDelay < 0 {
		opts.ResyncDelay = 0
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		opts.Logger = logger
	}
	return opts
}

// CascadingSelect keeps a city select consistent with a province select
// using a read-only snapshot of the reconciled mapping.
type CascadingSelect struct {
	form    *Form
	region  string
	city    string
	mapping geo.Mapping
	opts    CascadeOptions
}

// NewCascadingSelect binds the region and city controls of form. The mapping
// is copied; later changes to the caller's map are not observed.
func NewCascadingSelect(form *Form, region, city string, mapping geo.Mapping, fns ...CascadeOption) *CascadingSelect {
	copied := make(geo.Mapping, len(mapping))
	for code := range mapping {
		copied[code] = mapping.Cities(code)
	}
	return &CascadingSelect{
		form:    form,
		region:  region,
		city:    city,
		mapping: copied,
		opts:    newCascadeOptions(fns...),
	}
}

// OnRegionChanged handles a change of the province control to code. The city
// options are rebuilt as the placeholder followed by the province's cities in
// order. The previously selected city stays selected when it is one of the
// new options and is cleared otherwise. Running it twice with the same
// province leaves the same state.
func (c *CascadingSelect) OnRegionChanged(code string) {
	c.form.handle(func() []Event {
		if ctrl, ok := c.form.controls[c.region]; ok {
			ctrl.Value = code
		}
		c.populateLocked()
		return []Event{{Type: EventCitiesPopulated, Field: c.city}}
	})
}

// Populate rebuilds the city options for the province control's current
// value.
func (c *CascadingSelect) Populate() {
	c.form.handle(func() []Event {
		c.populateLocked()
		return []Event{{Type: EventCitiesPopulated, Field: c.city}}
	})
}

// Init populates the city options when the province already has a value,
// as happens when a submission with errors is re-rendered.
func (c *CascadingSelect) Init() {
	c.form.handle(func() []Event {
		if c.regionValueLocked() == "" {
			return nil
		}
		c.populateLocked()
		return []Event{{Type: EventCitiesPopulated, Field: c.city}}
	})
}

// Resync repopulates the city options when a province is selected but the
// city control holds nothing beyond the placeholder, which is what the host
// leaves behind after re-rendering the address fields. It reports whether the
// options were rebuilt. Hosts able to signal that their refresh finished
// should call this directly instead of relying on OnExternalRefresh.
func (c *CascadingSelect) Resync() bool {
	repopulated := false
	c.form.handle(func() []Event {
		if c.regionValueLocked() == "" {
			return nil
		}
		ctrl, ok := c.form.controls[c.city]
		if !ok || len(ctrl.Options) > 1 {
			return nil
		}
		c.populateLocked()
		repopulated = true
		return []Event{{Type: EventCitiesPopulated, Field: c.city}}
	})
	return repopulated
}

// OnExternalRefresh schedules Resync after the configured delay and returns
// the pending timer. The delay is a heuristic: it assumes the host finished
// its own asynchronous update by then, which a slow host can violate.
func (c *CascadingSelect) OnExternalRefresh() clockwork.Timer {
	return c.opts.Clock.AfterFunc(c.opts.ResyncDelay, func() {
		repopulated := c.Resync()
		if repopulated {
			c.opts.Logger.WithField("region", c.form.Value(c.region)).Debug("formstate: city options restored after refresh")
		}
		if c.opts.OnResync != nil {
			c.opts.OnResync(repopulated)
		}
	})
}

// CityOptions returns the options OnRegionChanged would build for code.
func (c *CascadingSelect) CityOptions(code string) []model.Option {
	cities := c.mapping[code]
	out := make([]model.Option, 0, len(cities)+1)
	out = append(out, model.Option{Value: "", Label: c.opts.Placeholder})
	for _, city := range cities {
		out = append(out, model.Option{Value: city, Label: city})
	}
	return out
}

func (c *CascadingSelect) regionValueLocked() string {
	if ctrl, ok := c.form.controls[c.region]; ok {
		return ctrl.Value
	}
	return ""
}

func (c *CascadingSelect) populateLocked() {
	ctrl, ok := c.form.controls[c.city]
	if !ok {
		return
	}
	current := ctrl.Value
	ctrl.Options = c.CityOptions(c.regionValueLocked())
	ctrl.Value = ""
	if current == "" {
		return
	}
	for _, option := range ctrl.Options[1:] {
		if option.Value == current {
			ctrl.Value = current
			return
		}
	}
}
