// Package citysuggest provides city-name autocomplete over a sharded static
// dataset.
//
// The dataset is split into numbered partition files. A Loader fetches every
// partition at once and appends whatever it gets into a Store; an Engine
// answers substring queries against the Store while the load is still running.
//
// Example:
//
//	store := citysuggest.NewStore()
//	loader := citysuggest.NewLoader(&citysuggest.HTTPSource{BaseURL: "https://example.com"}, store)
//	citysuggest.Start(ctx, loader, citysuggest.DefaultPartitions())
//	engine := citysuggest.NewEngine(store)
//	for _, c := range engine.Search("ber") {
//	    fmt.Println(c.Label())
//	}
package citysuggest

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// CityRecord is a single entry of the dataset.
type CityRecord struct {
	Name    string `json:"name"`
	Region  string `json:"region,omitempty"` // empty when the partition has no region
	Country string `json:"country"`
}

// Label renders the record the way the result list shows it:
// "Name, Region, Country", or "Name, Country" when there is no region.
func (c CityRecord) Label() string {
	var b strings.Builder
	b.Grow(len(c.Name) + len(c.Region) + len(c.Country) + 4)
	b.WriteString(c.Name)
	if c.Region != "" {
		b.WriteString(", ")
		b.WriteString(c.Region)
	}
	b.WriteString(", ")
	b.WriteString(c.Country)
	return b.String()
}

// Defaults for the published dataset layout and the query engine.
const (
	DefaultPartitionTemplate = "countries_chunks/countries_%d.json"
	DefaultPartitionCount    = 134
	DefaultResultLimit       = 50
	DefaultMinQueryLen       = 2
)

// fold case-folds s for matching.
//
// cases.Fold is used rather than strings.ToLower so that names like "Straße"
// match "strasse". A Caser carries state, so a fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// stringInterner deduplicates repeated strings. Country and region values
// repeat across almost every record of a partition, so each distinct value is
// kept once and every record shares its backing array.
type stringInterner struct {
	mu    sync.RWMutex
	index map[string]string
}

func newStringInterner(capacity int) *stringInterner {
	return &stringInterner{index: make(map[string]string, capacity)}
}

// intern returns the canonical copy of s, storing s if it is new.
// Uses double-checked locking so lookups of known values only take the read lock.
func (si *stringInterner) intern(s string) string {
	if s == "" {
		return ""
	}

	si.mu.RLock()
	if v, ok := si.index[s]; ok {
		si.mu.RUnlock()
		return v
	}
	si.mu.RUnlock()

	si.mu.Lock()
	defer si.mu.Unlock()
	if v, ok := si.index[s]; ok {
		return v
	}
	si.index[s] = s
	return s
}

// count returns the number of distinct non-empty values seen.
func (si *stringInterner) count() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.index)
}
