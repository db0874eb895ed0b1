package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"github.com/Sternrassler/metal-archives-client/pkg/pagination"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		pages  int
		month  string
		filter string
	)

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List the first pages of one kind",
		Long: "List the first pages of one kind. Kinds: " + strings.Join(pagedKindNames(), ", ") + `.
Band and review lists are scoped to a month (--month, default current).`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: pagedKindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, kc, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}

			cfg, err := pageConfig(a.client.BaseURL(), kc.monthly, month)
			if err != nil {
				return err
			}

			result, err := kc.list(cmd.Context(), a.client, cfg, pages)
			if err != nil {
				return fmt.Errorf("list %s: %w", section, err)
			}

			rows := result.Rows
			if filter != "" {
				rows = filterRows(rows, filter)
			}

			out := cmd.OutOrStdout()
			a.styles.heading(out, section.Title())
			a.styles.rows(out, rows)
			a.styles.footer(out, len(rows), result.Total, result.HasMore)
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().StringVar(&month, "month", "", "month for band and review lists (YYYY-MM)")
	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy filter on the listed records")
	return cmd
}

// pageConfig builds the manager configuration, selecting a month for the
// month-scoped kinds.
func pageConfig(baseURL string, monthly bool, month string) (pagination.Config, error) {
	cfg := pagination.Config{BaseURL: baseURL}
	if !monthly {
		if month != "" {
			return cfg, fmt.Errorf("--month only applies to band and review lists")
		}
		return cfg, nil
	}

	ym := models.YearMonthOf(time.Now())
	if month != "" {
		var err error
		if ym, err = models.ParseYearMonth(month); err != nil {
			return cfg, err
		}
	}
	cfg.Options = ym.Options()
	return cfg, nil
}

// rowSource implements fuzzy.Source over lower-cased row titles.
type rowSource []string

func (s rowSource) String(i int) string { return s[i] }
func (s rowSource) Len() int            { return len(s) }

// filterRows keeps the rows matching query, best match first.
func filterRows(rows []row, query string) []row {
	src := make(rowSource, len(rows))
	for i, r := range rows {
		src[i] = strings.ToLower(r.Title)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), src)
	filtered := make([]row, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, rows[m.Index])
	}
	return filtered
}
