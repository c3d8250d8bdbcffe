package citysuggest

import (
	"fmt"
	"strings"
	"testing"
)

func exampleCollection() Snapshot {
	return SnapshotOf(
		CityRecord{Name: "Berlin", Country: "Germany"},
		CityRecord{Name: "Bern", Country: "Switzerland"},
	)
}

func TestSearch_Examples(t *testing.T) {
	snap := exampleCollection()

	tests := []struct {
		query string
		want  []string
	}{
		{"ber", []string{"Berlin", "Bern"}},
		{"BER", []string{"Berlin", "Bern"}},
		{"erli", []string{"Berlin"}},
		{"b", nil},
		{"", nil},
		{"xyz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Search(snap, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) returned %d results, want %d", tt.query, len(got), len(tt.want))
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("Search(%q)[%d] = %q, want %q", tt.query, i, got[i].Name, name)
				}
			}
		})
	}
}

func TestSearch_ShortQueriesAreEmpty(t *testing.T) {
	var records []CityRecord
	for _, n := range []string{"A", "Aa", "Ab", "B", "Ba", "Ö"} {
		records = append(records, CityRecord{Name: n, Country: "X"})
	}
	snap := SnapshotOf(records...)

	for _, q := range []string{"", "a", "A", "b", "ö", " "} {
		if got := Search(snap, q); len(got) != 0 {
			t.Errorf("Search(%q) = %v, want empty", q, got)
		}
	}
}

func TestSearch_CountsCharactersNotBytes(t *testing.T) {
	snap := SnapshotOf(CityRecord{Name: "Ōita", Country: "Japan"})

	// "ō" is two bytes but one character.
	if got := Search(snap, "ō"); len(got) != 0 {
		t.Errorf("single multi-byte character should be below threshold, got %v", got)
	}
	if got := Search(snap, "ōi"); len(got) != 1 {
		t.Errorf("Search(\"ōi\") returned %d results, want 1", len(got))
	}
}

func TestSearch_CaseFolding(t *testing.T) {
	snap := SnapshotOf(
		CityRecord{Name: "ZÜRICH", Country: "Switzerland"},
		CityRecord{Name: "Großenhain", Country: "Germany"},
	)

	if got := Search(snap, "zür"); len(got) != 1 || got[0].Name != "ZÜRICH" {
		t.Errorf("Search(\"zür\") = %v", got)
	}
	if got := Search(snap, "GROSS"); len(got) != 1 || got[0].Name != "Großenhain" {
		t.Errorf("Search(\"GROSS\") = %v", got)
	}
}

func TestSearch_LimitAndOrder(t *testing.T) {
	var records []CityRecord
	for i := 0; i < 120; i++ {
		name := fmt.Sprintf("Town %03d", i)
		if i%2 == 0 {
			name = fmt.Sprintf("Village %03d", i)
		}
		records = append(records, CityRecord{Name: name, Country: "X"})
	}
	snap := SnapshotOf(records...)

	got := Search(snap, "town")
	if len(got) != DefaultResultLimit {
		t.Fatalf("len = %d, want %d", len(got), DefaultResultLimit)
	}

	// Results are a subsequence of collection order and every match qualifies.
	pos := 0
	for _, r := range got {
		if !strings.Contains(strings.ToLower(r.Name), "town") {
			t.Errorf("%q does not contain query", r.Name)
		}
		for pos < len(records) && records[pos].Name != r.Name {
			pos++
		}
		if pos == len(records) {
			t.Fatalf("%q out of collection order", r.Name)
		}
		pos++
	}
	// The first 50 towns are 1, 3, ..., 99.
	if got[len(got)-1].Name != "Town 099" {
		t.Errorf("last result = %q, want %q", got[len(got)-1].Name, "Town 099")
	}
}

func TestSearch_NoMatchExcludedBelowLimit(t *testing.T) {
	var records []CityRecord
	for i := 0; i < 30; i++ {
		records = append(records, CityRecord{Name: fmt.Sprintf("Springfield %d", i), Country: "US"})
		records = append(records, CityRecord{Name: fmt.Sprintf("Shelbyville %d", i), Country: "US"})
	}

	if got := Search(SnapshotOf(records...), "spring"); len(got) != 30 {
		t.Errorf("len = %d, want 30", len(got))
	}
}

func TestEngine_Options(t *testing.T) {
	store := NewStore()
	store.Append(
		CityRecord{Name: "Paris", Country: "France"},
		CityRecord{Name: "Parma", Country: "Italy"},
		CityRecord{Name: "Pau", Country: "France"},
	)

	e := NewEngine(store, WithLimit(2))
	if got := e.Search("pa"); len(got) != 2 {
		t.Errorf("WithLimit(2): len = %d, want 2", len(got))
	}

	e = NewEngine(store, WithMinQueryLen(1))
	if got := e.Search("p"); len(got) != 3 {
		t.Errorf("WithMinQueryLen(1): len = %d, want 3", len(got))
	}

	e = NewEngine(store, WithLimit(0), WithMinQueryLen(-1))
	if e.limit != DefaultResultLimit || e.minQueryLen != DefaultMinQueryLen {
		t.Errorf("invalid options should be ignored, got limit=%d minQueryLen=%d", e.limit, e.minQueryLen)
	}
}

func TestEngine_SeesLaterAppends(t *testing.T) {
	store := NewStore()
	e := NewEngine(store)

	if got := e.Search("oslo"); len(got) != 0 {
		t.Fatalf("empty store returned %v", got)
	}
	store.Append(CityRecord{Name: "Oslo", Country: "Norway"})
	if got := e.Search("oslo"); len(got) != 1 {
		t.Errorf("after append: len = %d, want 1", len(got))
	}
}

func BenchmarkSearch(b *testing.B) {
	records := make([]CityRecord, 100000)
	for i := range records {
		records[i] = CityRecord{Name: fmt.Sprintf("City %d", i), Country: "X"}
	}
	snap := SnapshotOf(records...)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		Search(snap, "ty 9999")
	}
}
