package geo

import (
	"encoding/json"
	"sort"
)

// Region is a first-level administrative division taken from the
// authoritative source.
type Region struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// CityRecord is one entry of the secondary city dataset. Name is the province
// name as spelled by that dataset; Cities keeps display order. A nil Cities
// slice means the field was missing and the record is ignored.
type CityRecord struct {
	Name   string   `json:"name" yaml:"name"`
	Cities []string `json:"cities" yaml:"cities"`
}

// Mapping associates authoritative province codes with their ordered city
// lists. Keys are always a subset of the codes given to Reconcile.
type Mapping map[string][]string

// Cities returns a copy of the city list for code, or nil when unmapped.
func (m Mapping) Cities(code string) []string {
	cities, ok := m[code]
	if !ok {
		return nil
	}
	return append([]string{}, cities...)
}

// Has reports whether city is listed under code using exact string equality.
func (m Mapping) Has(code, city string) bool {
	for _, candidate := range m[code] {
		if candidate == city {
			return true
		}
	}
	return false
}

// Codes returns the mapped province codes in sorted order.
func (m Mapping) Codes() []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MarshalJSON always emits an object so the client snapshot stays valid when
// nothing was reconciled.
func (m Mapping) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	out := make(map[string][]string, len(m))
	for code, cities := range m {
		if cities == nil {
			cities = []string{}
		}
		out[code] = cities
	}
	return json.Marshal(out)
}

// Reconcile joins records onto regions (code -> display name) by exact match
// on Normalize(name). Records without a name or cities list, records whose
// name does not resolve, and records matching a name shared by several codes
// are dropped. A later record for the same code replaces an earlier one. The
// result is never nil.
func Reconcile(regions map[string]string, records []CityRecord) Mapping {
	mapping := Mapping{}
	if len(regions) == 0 || len(records) == 0 {
		return mapping
	}

	index := buildNameIndex(regions)
	for _, record := range records {
		if record.Name == "" || record.Cities == nil {
			continue
		}
		code, ok := index[Normalize(record.Name)]
		if !ok {
			continue
		}
		mapping[code] = append([]string{}, record.Cities...)
	}
	return mapping
}

// ReconcileRegions is Reconcile for an ordered region list.
func ReconcileRegions(regions []Region, records []CityRecord) Mapping {
	return Reconcile(RegionNames(regions), records)
}

// RegionNames flattens regions into a code -> name map, skipping blank codes.
func RegionNames(regions []Region) map[string]string {
	out := make(map[string]string, len(regions))
	for _, region := range regions {
		if region.Code == "" {
			continue
		}
		out[region.Code] = region.Name
	}
	return out
}

// buildNameIndex maps normalized names to codes. Names claimed by more than one
// code are ambiguous and left out of the index.
func buildNameIndex(regions map[string]string) map[string]string {
	index := make(map[string]string, len(regions))
	ambiguous := make(map[string]struct{})
	for code, name := range regions {
		if code == "" {
			continue
		}
		key := Normalize(name)
		if key == "" {
			continue
		}
		if _, dup := ambiguous[key]; dup {
			continue
		}
		if existing, ok := index[key]; ok && existing != code {
			delete(index, key)
			ambiguous[key] = struct{}{}
			continue
		}
		index[key] = code
	}
	return index
}
