package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/metal-archives-client/pkg/feed"
	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"github.com/Sternrassler/metal-archives-client/pkg/pagination"
)

// listing is the result of walking some pages of one kind.
type listing struct {
	Rows    []row
	Total   *int
	HasMore bool
}

// kindCommand binds a paged section to its decoder for list and dump.
type kindCommand struct {
	monthly bool
	list    func(ctx context.Context, t pagination.Transport, cfg pagination.Config, pages int) (listing, error)
	collect func(ctx context.Context, t pagination.Transport, cfg pagination.Config, cc pagination.CollectConfig) (any, int, error)
}

var kindCommands = map[feed.Section]kindCommand{
	feed.SectionNews:           bind[models.News](models.NewsKind{}, false, newsRow),
	feed.SectionBandAdditions:  bind[models.BandAddition](models.BandAdditionKind{}, true, func(b models.BandAddition) row { return bandRow(b.BandListing) }),
	feed.SectionBandUpdates:    bind[models.BandUpdate](models.BandUpdateKind{}, true, func(b models.BandUpdate) row { return bandRow(b.BandListing) }),
	feed.SectionLatestReviews:  bind[models.LatestReview](models.LatestReviewKind{}, true, reviewRow),
	feed.SectionUpcomingAlbums: bind[models.UpcomingAlbum](models.UpcomingAlbumKind{}, false, upcomingRow),
}

func bind[T any](kind pagination.Kind[T], monthly bool, render func(T) row) kindCommand {
	return kindCommand{
		monthly: monthly,
		list: func(ctx context.Context, t pagination.Transport, cfg pagination.Config, pages int) (listing, error) {
			m := pagination.NewManager(t, kind, cfg)
			for i := 0; i < pages && m.HasMore(); i++ {
				if err := m.Load(ctx); err != nil {
					return listing{}, err
				}
			}

			l := listing{Rows: renderRows(m.Items(), render), HasMore: m.HasMore()}
			if total, ok := m.Total(); ok {
				l.Total = &total
			}
			return l, nil
		},
		collect: func(ctx context.Context, t pagination.Transport, cfg pagination.Config, cc pagination.CollectConfig) (any, int, error) {
			items, err := pagination.Collect(ctx, t, kind, cfg, cc)
			return items, len(items), err
		},
	}
}

// lookupKind resolves a paged section name.
func lookupKind(name string) (feed.Section, kindCommand, error) {
	section, err := feed.ParseSection(name)
	if err != nil {
		return "", kindCommand{}, err
	}
	kc, ok := kindCommands[section]
	if !ok {
		return "", kindCommand{}, fmt.Errorf("%s: %w", section, feed.ErrNotPaged)
	}
	return section, kc, nil
}

func pagedKindNames() []string {
	var names []string
	for _, s := range feed.Sections() {
		if s.Paged() {
			names = append(names, string(s))
		}
	}
	return names
}

func renderRows[T any](items []T, render func(T) row) []row {
	rows := make([]row, len(items))
	for i, item := range items {
		rows[i] = render(item)
	}
	return rows
}

// snapshotRows renders the items of a feed.Snapshot.
func snapshotRows(items any) []row {
	switch v := items.(type) {
	case []models.News:
		return renderRows(v, newsRow)
	case []models.BandAddition:
		return renderRows(v, func(b models.BandAddition) row { return bandRow(b.BandListing) })
	case []models.BandUpdate:
		return renderRows(v, func(b models.BandUpdate) row { return bandRow(b.BandListing) })
	case []models.LatestReview:
		return renderRows(v, reviewRow)
	case []models.UpcomingAlbum:
		return renderRows(v, upcomingRow)
	default:
		return nil
	}
}

func newsRow(n models.News) row {
	return row{Title: n.Title, Detail: joinNonEmpty(" · ", n.Date, n.Author.Name)}
}

func bandRow(b models.BandListing) row {
	return row{Title: b.Band.Name, Detail: joinNonEmpty(" · ", b.Country.Name, b.Genre, b.Date)}
}

func reviewRow(r models.LatestReview) row {
	rating := ""
	if r.Rating != nil {
		rating = fmt.Sprintf("%d%%", *r.Rating)
	}
	return row{
		Title:  r.Band.Name + " - " + r.Release.Name,
		Detail: joinNonEmpty(" · ", rating, r.Author.Name, r.Date),
	}
}

func upcomingRow(u models.UpcomingAlbum) row {
	return row{
		Title:  u.BandNames() + " - " + u.Release.Name,
		Detail: joinNonEmpty(" · ", u.ReleaseType, u.Genre, u.Date),
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
