package citysuggest

import "sync"

// entry pairs a record with its precomputed search key.
type entry struct {
	record CityRecord
	key    string // case-folded Name
}

// Store is the append-only, insertion-ordered collection of loaded cities.
// Safe for concurrent use: a Loader appends while Engines read snapshots.
type Store struct {
	mu        sync.RWMutex
	entries   []entry
	countries *stringInterner
	regions   *stringInterner
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		countries: newStringInterner(300),  // ~250 countries
		regions:   newStringInterner(4096), // ~4000 first-level regions worldwide
	}
}

// Append adds records to the end of the store as one contiguous block.
// Records from a single call are never interleaved with those of another.
func (s *Store) Append(records ...CityRecord) {
	if len(records) == 0 {
		return
	}

	// Folding and interning happen outside the write lock so readers are
	// only blocked for the copy itself.
	block := make([]entry, len(records))
	for i, r := range records {
		r.Country = s.countries.intern(r.Country)
		r.Region = s.regions.intern(r.Region)
		block[i] = entry{record: r, key: fold(r.Name)}
	}

	s.mu.Lock()
	s.entries = append(s.entries, block...)
	s.mu.Unlock()
}

// Len returns the number of records currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns an immutable view of the current contents.
// Records appended afterwards are not visible through it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	// Capping capacity keeps the view from ever reaching slots the store
	// writes into later.
	return Snapshot{entries: s.entries[:n:n]}
}

// Snapshot is a point-in-time, read-only view of a Store.
// The zero value is an empty snapshot.
type Snapshot struct {
	entries []entry
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int { return len(s.entries) }

// At returns the i-th record in insertion order.
func (s Snapshot) At(i int) CityRecord { return s.entries[i].record }

// Records returns a copy of all records in insertion order.
func (s Snapshot) Records() []CityRecord {
	out := make([]CityRecord, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.record
	}
	return out
}

// SnapshotOf builds a standalone snapshot from records, for callers that
// want to search a fixed list without a Store.
func SnapshotOf(records ...CityRecord) Snapshot {
	entries := make([]entry, len(records))
	for i, r := range records {
		entries[i] = entry{record: r, key: fold(r.Name)}
	}
	return Snapshot{entries: entries}
}
