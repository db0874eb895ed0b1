package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/pagination"
	"github.com/spf13/cobra"
)

func newDumpCmd(a *app) *cobra.Command {
	var (
		month string
		cc    = pagination.DefaultCollectConfig()
	)

	cmd := &cobra.Command{
		Use:       "dump <kind>",
		Short:     "Fetch every page of one kind and print it as JSON",
		Long:      "Fetch every page of one kind and print it as JSON. Kinds: " + strings.Join(pagedKindNames(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: pagedKindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, kc, err := lookupKind(args[0])
			if err != nil {
				return err
			}

			cfg, err := pageConfig(a.client.BaseURL(), kc.monthly, month)
			if err != nil {
				return err
			}

			start := time.Now()
			items, n, err := kc.collect(cmd.Context(), a.client, cfg, cc)
			if err != nil {
				return fmt.Errorf("dump %s: %w", section, err)
			}

			a.logger.Info().
				Str("section", string(section)).
				Int("records", n).
				Dur("duration", time.Since(start)).
				Msg("Dump complete")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month for band and review lists (YYYY-MM)")
	cmd.Flags().IntVar(&cc.MaxConcurrency, "concurrency", cc.MaxConcurrency, "parallel page requests")
	cmd.Flags().IntVar(&cc.MaxPages, "max-pages", cc.MaxPages, "page cap (0 = no cap when a total is reported)")
	cmd.Flags().DurationVar(&cc.Timeout, "page-timeout", cc.Timeout, "timeout per page")
	return cmd
}
