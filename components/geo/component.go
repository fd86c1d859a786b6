package geo

import (
	"context"
	"net/http"
)

// Snapshot is the per-request view handed to renderers and the client
// controller: the authoritative provinces in display order plus the reconciled
// city mapping.
type Snapshot struct {
	Country string   `json:"country"`
	Regions []Region `json:"regions"`
	Cities  Mapping  `json:"cities"`
}

// RegionName returns the display name for code.
func (s Snapshot) RegionName(code string) (string, bool) {
	for _, region := range s.Regions {
		if region.Code == code {
			return region.Name, true
		}
	}
	return "", false
}

// Component bundles the reconciler inputs, the JSON handler, and routing
// helpers behind one configured value.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return NewOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Load fetches the authoritative provinces and the city dataset and reconciles
// them. It never fails: a missing province source yields an empty snapshot and
// a missing or broken dataset yields provinces with no cities. Problems are
// logged at warn level.
func (c *Component) Load(ctx context.Context) Snapshot {
	opts := c.Options()
	log := opts.Logger.WithField("country", opts.Country)

	snapshot := Snapshot{
		Country: opts.Country,
		Regions: []Region{},
		Cities:  Mapping{},
	}

	regions, err := opts.States.States(ctx, opts.Country)
	if err != nil {
		log.WithError(err).Warn("geo: province source unavailable")
		return snapshot
	}
	if len(regions) == 0 {
		return snapshot
	}
	snapshot.Regions = append(snapshot.Regions, regions...)

	records, err := c.records()
	if err != nil {
		log.WithError(err).Warn("geo: city dataset unavailable")
	}

	snapshot.Cities = ReconcileRegions(regions, records)
	if dropped := countDropped(records, regions); dropped > 0 {
		log.WithField("dropped", dropped).Debug("geo: city records without a matching province")
	}
	return snapshot
}

// Mapping is a shortcut for Load(ctx).Cities.
func (c *Component) Mapping(ctx context.Context) Mapping {
	return c.Load(ctx).Cities
}

// Handler returns a net/http handler serving the reconciled mapping.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return NewHandler()
	}
	return HandlerWithComponent(c)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return registerComponent(mux, basePath, c)
}

func (c *Component) records() ([]CityRecord, error) {
	if c.opts.Records != nil {
		return cloneRecords(c.opts.Records), nil
	}
	if c.opts.DatasetPath != "" {
		return LoadCityDatasetFile(c.opts.DatasetPath)
	}
	return DefaultCityDataset()
}

func countDropped(records []CityRecord, regions []Region) int {
	index := buildNameIndex(RegionNames(regions))
	dropped := 0
	for _, record := range records {
		if _, ok := index[Normalize(record.Name)]; !ok {
			dropped++
		}
	}
	return dropped
}
