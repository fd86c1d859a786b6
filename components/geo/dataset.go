package geo

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/iran_cities.json data/iran_states.json
var dataFS embed.FS

const (
	defaultCitiesPath = "data/iran_cities.json"
	defaultStatesPath = "data/iran_states.json"
)

// Format identifies the encoding of a city dataset.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrDatasetMissing reports a dataset source that does not exist.
	ErrDatasetMissing = errors.New("geo: city dataset not found")
	// ErrDatasetInvalid reports a dataset that could not be parsed as a list
	// of records.
	ErrDatasetInvalid = errors.New("geo: city dataset is not a record list")
)

var (
	defaultCitiesOnce sync.Once
	defaultCities     []CityRecord
	defaultCitiesErr  error
)

// DefaultCityDataset returns the embedded city dataset. The parse happens once
// per process; callers receive their own copy.
func DefaultCityDataset() ([]CityRecord, error) {
	defaultCitiesOnce.Do(func() {
		defaultCities, defaultCitiesErr = LoadCityDatasetFS(dataFS, defaultCitiesPath)
	})
	if defaultCitiesErr != nil {
		return []CityRecord{}, defaultCitiesErr
	}
	return cloneRecords(defaultCities), nil
}

// FormatFromPath infers the dataset format from a file extension, defaulting
// to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadCityDatasetFile reads a dataset from disk. A missing file yields an
// empty dataset together with ErrDatasetMissing.
func LoadCityDatasetFile(path string) ([]CityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []CityRecord{}, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return []CityRecord{}, fmt.Errorf("geo: open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return LoadCityDataset(f, FormatFromPath(path))
}

// LoadCityDatasetFS reads a dataset from fsys using the same rules as
// LoadCityDatasetFile.
func LoadCityDatasetFS(fsys fs.FS, path string) ([]CityRecord, error) {
	if fsys == nil {
		return []CityRecord{}, fmt.Errorf("%w: nil filesystem", ErrDatasetMissing)
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []CityRecord{}, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return []CityRecord{}, fmt.Errorf("geo: read dataset %s: %w", path, err)
	}
	return LoadCityDataset(bytes.NewReader(data), FormatFromPath(path))
}

// LoadCityDataset decodes a list of {name, cities} records. Records with a
// missing or non-string name, or a missing or non-list cities field, are
// skipped; non-string entries inside a cities list are skipped too. When the
// payload is not a list at all the result is empty and the error wraps
// ErrDatasetInvalid. The returned slice is never nil.
func LoadCityDataset(r io.Reader, format Format) ([]CityRecord, error) {
	if r == nil {
		return []CityRecord{}, fmt.Errorf("%w: missing reader", ErrDatasetMissing)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return []CityRecord{}, fmt.Errorf("geo: read dataset: %w", err)
	}

	var raw any
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return []CityRecord{}, fmt.Errorf("%w: %v", ErrDatasetInvalid, err)
	}

	items, ok := raw.([]any)
	if !ok {
		return []CityRecord{}, ErrDatasetInvalid
	}

	records := make([]CityRecord, 0, len(items))
	for _, item := range items {
		record, ok := coerceRecord(item)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func coerceRecord(item any) (CityRecord, bool) {
	entry, ok := item.(map[string]any)
	if !ok {
		return CityRecord{}, false
	}
	name, ok := entry["name"].(string)
	if !ok || name == "" {
		return CityRecord{}, false
	}
	rawCities, ok := entry["cities"].([]any)
	if !ok {
		return CityRecord{}, false
	}
	cities := make([]string, 0, len(rawCities))
	for _, value := range rawCities {
		city, ok := value.(string)
		if !ok {
			continue
		}
		cities = append(cities, city)
	}
	return CityRecord{Name: name, Cities: cities}, true
}

func cloneRecords(records []CityRecord) []CityRecord {
	out := make([]CityRecord, 0, len(records))
	for _, record := range records {
		out = append(out, CityRecord{
			Name:   record.Name,
			Cities: append([]string{}, record.Cities...),
		})
	}
	return out
}
