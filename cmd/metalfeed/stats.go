package main

import (
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/metal-archives-client/pkg/stats"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the site statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := stats.Fetch(cmd.Context(), a.client, a.client.BaseURL())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			a.styles.heading(out, "Statistics")
			printStatistic(a.styles, out, st)
			fmt.Fprintln(out, a.styles.Accent.Render("  "+st.Summary()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
