package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/feed"
	"github.com/Sternrassler/metal-archives-client/pkg/stats"
)

func printSnapshot(s styles, w io.Writer, snap feed.Snapshot) {
	title := snap.Title
	if snap.Month != "" {
		title += " (" + snap.Month + ")"
	}
	s.heading(w, title)

	if snap.Section == feed.SectionStatistics {
		if snap.Statistic == nil {
			fmt.Fprintln(w, s.Muted.Render("  not loaded"))
		} else {
			printStatistic(s, w, snap.Statistic)
		}
		fmt.Fprintln(w)
		return
	}

	rows := snapshotRows(snap.Items)
	if len(rows) == 0 {
		fmt.Fprintln(w, s.Muted.Render("  nothing loaded"))
	}
	s.rows(w, rows)
	if snap.Count > 0 {
		s.footer(w, snap.Count, snap.Total, snap.HasMore)
	}
	fmt.Fprintln(w)
}

func printStatistic(s styles, w io.Writer, st *stats.Statistic) {
	s.rows(w, []row{
		{Title: "Bands", Detail: fmt.Sprintf("%d total, %d active, %d on hold, %d split-up, %d changed name, %d unknown",
			st.Bands.Total, st.Bands.Active, st.Bands.OnHold, st.Bands.SplitUp, st.Bands.ChangedName, st.Bands.Unknown)},
	})
	if st.Reviews != nil {
		s.rows(w, []row{{Title: "Reviews", Detail: fmt.Sprintf("%d for %d unique albums", st.Reviews.Total, st.Reviews.UniqueAlbums)}})
	}

	detail := fmt.Sprintf("%d total", st.Labels.Total)
	for _, status := range st.Labels.Statuses() {
		detail += fmt.Sprintf(", %d %s", status.Count, status.Description)
	}
	s.rows(w, []row{{Title: "Labels", Detail: detail}})

	if st.Users != nil {
		s.rows(w, []row{{Title: "Users", Detail: fmt.Sprintf("%d total, %d active", st.Users.Total, st.Users.Active)}})
	}
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
