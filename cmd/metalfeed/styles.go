package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles renders terminal output. Without a terminal every style is plain.
type styles struct {
	Heading lipgloss.Style
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Warning lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			Heading: plain,
			Title:   plain,
			Muted:   plain,
			Accent:  plain,
			Warning: plain,
		}
	}

	return styles{
		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5484D")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#3A3A3A")),
		Title:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8B8B")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A524")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB224")).Bold(true),
	}
}

// row is one printable record.
type row struct {
	Title  string
	Detail string
}

func (s styles) heading(w io.Writer, title string) {
	fmt.Fprintln(w, s.Heading.Render(title))
}

func (s styles) rows(w io.Writer, rows []row) {
	for _, r := range rows {
		if r.Detail == "" {
			fmt.Fprintf(w, "  %s\n", s.Title.Render(r.Title))
			continue
		}
		fmt.Fprintf(w, "  %s  %s\n", s.Title.Render(r.Title), s.Muted.Render(r.Detail))
	}
}

func (s styles) footer(w io.Writer, count int, total *int, hasMore bool) {
	text := fmt.Sprintf("%d shown", count)
	if total != nil {
		text = fmt.Sprintf("%d of %d", count, *total)
	}
	if hasMore {
		text += ", more available"
	}
	fmt.Fprintln(w, s.Accent.Render("  "+text))
}

func (s styles) warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, s.Warning.Render(strings.TrimSpace(fmt.Sprintf(format, args...))))
}
