package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// DefaultCountry is the ISO country code the embedded data describes.
const DefaultCountry = "IR"

// StateSource supplies the authoritative province list for a country. The
// host platform usually owns this data; the result is treated as read-only.
type StateSource interface {
	States(ctx context.Context, country string) ([]Region, error)
}

// StateSourceFunc adapts a function into a StateSource.
type StateSourceFunc func(ctx context.Context, country string) ([]Region, error)

// States calls the underlying function.
func (fn StateSourceFunc) States(ctx context.Context, country string) ([]Region, error) {
	return fn(ctx, country)
}

// StaticStates serves fixed province lists keyed by upper-case country code.
type StaticStates map[string][]Region

// States returns a copy of the list registered for country, or an empty list.
func (s StaticStates) States(ctx context.Context, country string) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	regions := s[strings.ToUpper(strings.TrimSpace(country))]
	return append([]Region{}, regions...), nil
}

type statesDocument struct {
	Country string   `json:"country"`
	States  []Region `json:"states"`
}

var (
	embeddedStatesOnce sync.Once
	embeddedStates     StaticStates
	embeddedStatesErr  error
)

// EmbeddedStates returns the built-in province list keyed by DefaultCountry.
func EmbeddedStates() StateSource {
	embeddedStatesOnce.Do(func() {
		data, err := dataFS.ReadFile(defaultStatesPath)
		if err != nil {
			embeddedStatesErr = err
			return
		}
		var doc statesDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			embeddedStatesErr = fmt.Errorf("geo: decode embedded states: %w", err)
			return
		}
		embeddedStates = StaticStates{strings.ToUpper(doc.Country): doc.States}
	})
	if embeddedStatesErr != nil {
		return StateSourceFunc(func(context.Context, string) ([]Region, error) {
			return nil, embeddedStatesErr
		})
	}
	return embeddedStates
}
