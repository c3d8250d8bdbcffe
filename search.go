package citysuggest

import (
	"strings"
	"unicode/utf8"
)

// Engine answers autocomplete queries against a Store.
// It keeps no state between calls; every Search reads a fresh snapshot, so
// queries issued while a load is running see whatever has arrived so far.
type Engine struct {
	store       *Store
	limit       int
	minQueryLen int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLimit caps the number of results returned (default 50).
// Values below 1 are ignored.
func WithLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithMinQueryLen sets the shortest query, in characters after case folding,
// that produces results (default 2).
func WithMinQueryLen(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.minQueryLen = n
		}
	}
}

// NewEngine creates an Engine reading from store.
func NewEngine(store *Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:       store,
		limit:       DefaultResultLimit,
		minQueryLen: DefaultMinQueryLen,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the records whose name contains query, ignoring case, in
// store order and truncated to the configured limit.
func (e *Engine) Search(query string) []CityRecord {
	return e.SearchSnapshot(e.store.Snapshot(), query)
}

// SearchSnapshot is Search against an explicit snapshot.
func (e *Engine) SearchSnapshot(snap Snapshot, query string) []CityRecord {
	return search(snap, query, e.limit, e.minQueryLen)
}

// Search filters snap with the default limit and minimum query length.
func Search(snap Snapshot, query string) []CityRecord {
	return search(snap, query, DefaultResultLimit, DefaultMinQueryLen)
}

func search(snap Snapshot, query string, limit, minLen int) []CityRecord {
	q := fold(query)
	if utf8.RuneCountInString(q) < minLen {
		return nil
	}

	var matches []CityRecord
	for _, e := range snap.entries {
		if !strings.Contains(e.key, q) {
			continue
		}
		matches = append(matches, e.record)
		if len(matches) == limit {
			break
		}
	}
	return matches
}
