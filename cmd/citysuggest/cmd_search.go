package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andreiashu/citysuggest"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Load the dataset and print the cities matching a query",
	Long: `Waits for every partition to settle, then prints the matches for the query
in dataset order, one "City, Region, Country" label per line.

Partitions that fail to load are reported on stderr and otherwise ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, in, err := startLoad(cmd.Context(), logger)
		if err != nil {
			return err
		}

		report, err := in.Wait(cmd.Context())
		if err != nil {
			return err
		}
		if report.Failed > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d of %d partitions failed to load\n", report.Failed, report.Total)
		}

		return printMatches(cmd.OutOrStdout(), engine.Search(args[0]), searchJSON)
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print matches as a JSON array")
}

func printMatches(w io.Writer, matches []citysuggest.CityRecord, asJSON bool) error {
	if asJSON {
		if matches == nil {
			matches = []citysuggest.CityRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	for _, m := range matches {
		if _, err := fmt.Fprintln(w, m.Label()); err != nil {
			return err
		}
	}
	return nil
}
