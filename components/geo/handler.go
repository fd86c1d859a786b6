package geo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Option is a value/label pair shaped for select controls.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CityOptions converts a province's cities into select options.
func CityOptions(mapping Mapping, code string) []Option {
	cities := mapping[code]
	out := make([]Option, 0, len(cities))
	for _, city := range cities {
		out = append(out, Option{Value: city, Label: city})
	}
	return out
}

type mappingResponse struct {
	Data Mapping `json:"data"`
}

type optionsResponse struct {
	Data []Option `json:"data"`
}

// NewHandler builds a handler backed by a component configured from fns.
func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithComponent(New(fns...))
}

// HandlerWithComponent serves GET/HEAD requests. Without the region parameter
// the whole mapping is returned under "data"; with it, that province's cities
// are returned as value/label options. Unknown provinces yield an empty list.
func HandlerWithComponent(c *Component) http.Handler {
	if c == nil {
		c = New()
	}
	opts := c.Options()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		mapping := c.Mapping(r.Context())
		var payload any = mappingResponse{Data: mapping}
		if region := strings.TrimSpace(r.URL.Query().Get(opts.RegionParam)); region != "" {
			payload = optionsResponse{Data: CityOptions(mapping, region)}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		if err := enc.Encode(payload); err != nil {
			opts.Logger.WithError(err).Warn("geo: encode response")
		}
	})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
