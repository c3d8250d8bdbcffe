package citysuggest

import (
	"compress/bzip2"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// PartitionRef identifies one shard of the dataset.
type PartitionRef struct {
	Index    int    // Position in the partition range
	Location string // Path or key, relative to the Source
}

// Partitions builds the contiguous range of partitions 0..n-1 by substituting
// each index into template, which must contain a single %d verb.
func Partitions(template string, n int) []PartitionRef {
	refs := make([]PartitionRef, n)
	for i := range refs {
		refs[i] = PartitionRef{Index: i, Location: fmt.Sprintf(template, i)}
	}
	return refs
}

// DefaultPartitions returns the published dataset layout:
// countries_chunks/countries_0.json through countries_chunks/countries_133.json.
func DefaultPartitions() []PartitionRef {
	return Partitions(DefaultPartitionTemplate, DefaultPartitionCount)
}

// Source retrieves the raw bytes of a partition.
type Source interface {
	Open(ctx context.Context, ref PartitionRef) (io.ReadCloser, error)
}

// defaultHTTPClient has no timeout: a hung partition only holds back its own
// contribution. Set HTTPSource.Client to bound it.
var defaultHTTPClient = &http.Client{}

// HTTPSource fetches partitions over HTTP(S).
type HTTPSource struct {
	BaseURL string       // Prefix joined with each Location; empty means Location is absolute
	Client  *http.Client // Defaults to a shared client without timeout
}

// Open issues a GET for the partition. Any non-2xx status is an error.
func (s *HTTPSource) Open(ctx context.Context, ref PartitionRef) (io.ReadCloser, error) {
	u := ref.Location
	if s.BaseURL != "" {
		var err error
		u, err = url.JoinPath(s.BaseURL, ref.Location)
		if err != nil {
			return nil, fmt.Errorf("building URL for %s: %w", ref.Location, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", u, err)
	}

	client := s.Client
	if client == nil {
		client = defaultHTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP GET %s: status %d", u, resp.StatusCode)
	}
	return resp.Body, nil
}

// FSSource reads partitions from a file system: a local directory through
// os.DirFS, an embed.FS, or anything else implementing fs.FS.
type FSSource struct {
	FS fs.FS
}

// Open opens the partition file. Leading slashes in Location are ignored.
func (s *FSSource) Open(ctx context.Context, ref PartitionRef) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimLeft(ref.Location, "/")
	fh, err := s.FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return fh, nil
}

// decodePartition parses a partition body into records.
//
// The compression format is taken from the location suffix: .gz, .zst and
// .bz2 are decompressed first, anything else is read as plain JSON. The body
// must be a single JSON array of objects; null elements are skipped.
func decodePartition(location string, r io.Reader) ([]CityRecord, error) {
	switch {
	case strings.HasSuffix(location, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(location, ".zst"):
		zd, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zd.Close()
		r = zd
	case strings.HasSuffix(location, ".bz2"):
		r = bzip2.NewReader(r)
	}

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("decoding %s: expected array, got %v", location, tok)
	}

	var records []CityRecord
	for i := 0; dec.More(); i++ {
		var rec *CityRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decoding %s record %d: %w", location, i, err)
		}
		if rec == nil { // null element
			continue
		}
		records = append(records, *rec)
	}
	// Consume the closing bracket so truncated bodies are rejected.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decoding %s: unexpected data after array", location)
	}
	return records, nil
}
