package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreiashu/citysuggest"
)

var (
	splitCount    int
	splitTemplate string
)

var splitCmd = &cobra.Command{
	Use:   "split [input.json] [output-dir]",
	Short: "Split a JSON array of cities into partition files",
	Long: `Reads one JSON array of {"name","region","country"} records and writes it as
--count contiguous partitions named by --template under output-dir.

A template ending in .gz or .zst writes compressed partitions.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !strings.Contains(splitTemplate, "%d") {
			return fmt.Errorf("template %q has no %%d verb", splitTemplate)
		}
		if splitCount < 1 {
			return fmt.Errorf("count must be at least 1, got %d", splitCount)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		var records []citysuggest.CityRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		refs := citysuggest.Partitions(splitTemplate, splitCount)
		for i, chunk := range splitRecords(records, splitCount) {
			path := filepath.Join(args[1], filepath.FromSlash(refs[i].Location))
			if err := writePartition(path, chunk); err != nil {
				return err
			}
		}
		logger.Info("dataset split",
			zap.Int("records", len(records)),
			zap.Int("partitions", splitCount),
			zap.String("dir", args[1]))
		return nil
	},
}

func init() {
	splitCmd.Flags().IntVar(&splitCount, "count", citysuggest.DefaultPartitionCount, "Number of partitions to write")
	splitCmd.Flags().StringVar(&splitTemplate, "template", citysuggest.DefaultPartitionTemplate, "Partition path template")
}

// splitRecords cuts records into n contiguous chunks whose sizes differ by at
// most one. Chunks may be empty when there are fewer records than partitions.
func splitRecords(records []citysuggest.CityRecord, n int) [][]citysuggest.CityRecord {
	chunks := make([][]citysuggest.CityRecord, n)
	size, rem := len(records)/n, len(records)%n
	start := 0
	for i := range chunks {
		end := start + size
		if i < rem {
			end++
		}
		chunks[i] = records[start:end]
		start = end
	}
	return chunks
}

// writePartition writes records as a JSON array, compressed by file suffix.
func writePartition(path string, records []citysuggest.CityRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	// Remove partial files on error.
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(path)
		}
	}()

	var w io.WriteCloser = nopWriteCloser{out}
	switch {
	case strings.HasSuffix(path, ".gz"):
		w = gzip.NewWriter(out)
	case strings.HasSuffix(path, ".zst"):
		if w, err = zstd.NewWriter(out); err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
	}

	if records == nil {
		records = []citysuggest.CityRecord{}
	}
	if err := json.NewEncoder(w).Encode(records); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	success = true
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
