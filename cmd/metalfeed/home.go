package main

import (
	"fmt"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/feed"
	"github.com/spf13/cobra"
)

func newHomeCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the short lists of every homepage section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withOptionalTimeout(cmd.Context(), timeout)
			defer cancel()

			h := a.homepage(nil)
			loadErr := h.Load(ctx)

			out := cmd.OutOrStdout()
			for _, s := range feed.Sections() {
				snap, err := h.ShortList(s)
				if err != nil {
					return err
				}
				printSnapshot(a.styles, out, snap)
			}

			if loadErr != nil {
				a.styles.warn(cmd.ErrOrStderr(), "some sections failed to load:\n%v", loadErr)
				return fmt.Errorf("homepage incomplete")
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline (0 = none)")
	return cmd
}

// homepage builds a feed.Homepage from the loaded configuration.
func (a *app) homepage(bus *feed.Bus) *feed.Homepage {
	return feed.New(a.client, feed.Config{
		BaseURL:       a.client.BaseURL(),
		ShortListSize: a.cfg.Feed.ShortListSize,
	}, bus)
}
