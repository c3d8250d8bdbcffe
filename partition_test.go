package citysuggest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoCities = `[{"name":"Berlin","country":"Germany"},{"name":"Bern","region":"Bern","country":"Switzerland"}]`

func TestPartitions(t *testing.T) {
	refs := DefaultPartitions()
	require.Len(t, refs, 134)
	assert.Equal(t, PartitionRef{Index: 0, Location: "countries_chunks/countries_0.json"}, refs[0])
	assert.Equal(t, PartitionRef{Index: 133, Location: "countries_chunks/countries_133.json"}, refs[133])

	assert.Empty(t, Partitions("p_%d.json", 0))
	assert.Equal(t, "shards/2.json.gz", Partitions("shards/%d.json.gz", 3)[2].Location)
}

func TestDecodePartition(t *testing.T) {
	records, err := decodePartition("x.json", strings.NewReader(twoCities))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, CityRecord{Name: "Berlin", Country: "Germany"}, records[0])
	assert.Equal(t, CityRecord{Name: "Bern", Region: "Bern", Country: "Switzerland"}, records[1])
}

func TestDecodePartition_EmptyArray(t *testing.T) {
	records, err := decodePartition("x.json", strings.NewReader(" [ ] "))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodePartition_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"null", "null"},
		{"object", `{"name":"Berlin"}`},
		{"truncated", `[{"name":"Berlin","country":"Germany"}`},
		{"not json", "<html>404</html>"},
		{"wrong element type", `["Berlin"]`},
		{"wrong field type", `[{"name":42,"country":"Germany"}]`},
		{"trailing data", "[] x"},
		{"trailing record", `[{"name":"Oslo","country":"Norway"}] garbage`},
		{"second array", `[][]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodePartition("x.json", strings.NewReader(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDecodePartition_SkipsNullElements(t *testing.T) {
	recs, err := decodePartition("x.json", strings.NewReader(`[null, {"name":"Oslo","country":"Norway"}, null]`))
	require.NoError(t, err)
	assert.Equal(t, []CityRecord{{Name: "Oslo", Country: "Norway"}}, recs)
}

func TestDecodePartition_TrailingWhitespace(t *testing.T) {
	recs, err := decodePartition("x.json", strings.NewReader("[{\"name\":\"Oslo\",\"country\":\"Norway\"}]\n\n"))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDecodePartition_Compressed(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(twoCities))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var zs bytes.Buffer
	enc, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = enc.Write([]byte(twoCities))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	for name, body := range map[string][]byte{
		"countries_0.json.gz":  gz.Bytes(),
		"countries_0.json.zst": zs.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			records, err := decodePartition(name, bytes.NewReader(body))
			require.NoError(t, err)
			assert.Len(t, records, 2)
		})
	}

	_, err = decodePartition("countries_0.json.gz", strings.NewReader(twoCities))
	assert.Error(t, err, "plain body under a .gz name should fail")
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/countries_chunks/countries_0.json":
			io.WriteString(w, twoCities)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := &HTTPSource{BaseURL: srv.URL + "/data", Client: srv.Client()}

	body, err := src.Open(context.Background(), PartitionRef{Location: "countries_chunks/countries_0.json"})
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, twoCities, string(data))

	_, err = src.Open(context.Background(), PartitionRef{Location: "countries_chunks/countries_1.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPSource_AbsoluteLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	src := &HTTPSource{}
	body, err := src.Open(context.Background(), PartitionRef{Location: srv.URL + "/p_0.json"})
	require.NoError(t, err)
	body.Close()
}

func TestFSSource(t *testing.T) {
	src := &FSSource{FS: fstest.MapFS{
		"countries_chunks/countries_0.json": {Data: []byte(twoCities)},
	}}

	body, err := src.Open(context.Background(), PartitionRef{Location: "/countries_chunks/countries_0.json"})
	require.NoError(t, err)
	body.Close()

	_, err = src.Open(context.Background(), PartitionRef{Location: "countries_chunks/countries_1.json"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Open(ctx, PartitionRef{Location: "countries_chunks/countries_0.json"})
	assert.ErrorIs(t, err, context.Canceled)
}
