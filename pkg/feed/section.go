package feed

import (
	"errors"
	"fmt"
)

// Section identifies one block of the homepage.
type Section string

const (
	SectionNews           Section = "news"
	SectionBandAdditions  Section = "band_additions"
	SectionBandUpdates    Section = "band_updates"
	SectionLatestReviews  Section = "latest_reviews"
	SectionUpcomingAlbums Section = "upcoming_albums"
	SectionStatistics     Section = "statistics"
)

var (
	// ErrUnknownSection is returned for a section name the homepage lacks.
	ErrUnknownSection = errors.New("unknown section")

	// ErrNotPaged is returned by LoadMore for the statistics section.
	ErrNotPaged = errors.New("section is not paged")
)

// Sections returns every section in homepage order.
func Sections() []Section {
	return []Section{
		SectionNews,
		SectionBandAdditions,
		SectionBandUpdates,
		SectionLatestReviews,
		SectionUpcomingAlbums,
		SectionStatistics,
	}
}

// ParseSection validates a section name.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// Title returns the heading shown for the section.
func (s Section) Title() string {
	switch s {
	case SectionNews:
		return "News"
	case SectionBandAdditions:
		return "Recently added bands"
	case SectionBandUpdates:
		return "Recently updated bands"
	case SectionLatestReviews:
		return "Latest reviews"
	case SectionUpcomingAlbums:
		return "Upcoming albums"
	case SectionStatistics:
		return "Statistics"
	default:
		return string(s)
	}
}

// Paged reports whether the section is backed by a paged manager.
func (s Section) Paged() bool {
	return s != SectionStatistics
}
