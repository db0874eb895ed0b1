// Package feed assembles the Metal Archives homepage: one paged manager per
// list section plus the site statistics, loaded concurrently.
package feed

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/client"
	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"github.com/Sternrassler/metal-archives-client/pkg/pagination"
	"github.com/Sternrassler/metal-archives-client/pkg/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	sectionLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_feed_section_loads_total",
		Help: "Homepage section loads by section and outcome",
	}, []string{"section", "outcome"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_feed_refreshes_total",
		Help: "Homepage refreshes by outcome",
	}, []string{"outcome"})
)

// Config holds the homepage settings.
type Config struct {
	// BaseURL of the site.
	BaseURL string

	// Now returns the current time; it selects the month of the
	// month-scoped sections.
	Now func() time.Time

	// ShortListSize is the number of records ShortList returns per section.
	ShortListSize int
}

// DefaultConfig returns the default homepage configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:       client.DefaultBaseURL,
		Now:           time.Now,
		ShortListSize: 5,
	}
}

// pager is the type-erased view of a pagination.Manager.
type pager interface {
	Load(ctx context.Context) error
	Len() int
	Total() (int, bool)
	HasMore() bool
	Reset()
	list(limit int) any
	// month returns the month the manager was built for; false for
	// sections that are not month-scoped.
	month() (models.YearMonth, bool)
}

type managed[T any] struct {
	*pagination.Manager[T]
	ym      models.YearMonth
	monthly bool
}

func (m managed[T]) month() (models.YearMonth, bool) {
	return m.ym, m.monthly
}

func (m managed[T]) list(limit int) any {
	items := m.Items()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Homepage owns the homepage sections.
type Homepage struct {
	transport pagination.Transport
	cfg       Config
	bus       *Bus
	logger    zerolog.Logger

	mu        sync.RWMutex
	month     models.YearMonth
	pagers    map[Section]pager
	statistic *stats.Statistic
}

// New creates an empty homepage. bus may be nil.
func New(transport pagination.Transport, cfg Config, bus *Bus) *Homepage {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	if cfg.ShortListSize <= 0 {
		cfg.ShortListSize = defaults.ShortListSize
	}

	h := &Homepage{
		transport: transport,
		cfg:       cfg,
		bus:       bus,
		logger:    log.With().Str("component", "feed").Logger(),
		month:     models.YearMonthOf(cfg.Now()),
	}
	h.pagers = h.buildPagers(h.month)
	return h
}

func (h *Homepage) buildPagers(month models.YearMonth) map[Section]pager {
	plain := pagination.Config{BaseURL: h.cfg.BaseURL}
	monthly := pagination.Config{BaseURL: h.cfg.BaseURL, Options: month.Options()}

	return map[Section]pager{
		SectionNews: managed[models.News]{
			Manager: pagination.NewManager[models.News](h.transport, models.NewsKind{}, plain),
		},
		SectionBandAdditions: managed[models.BandAddition]{
			pagination.NewManager[models.BandAddition](h.transport, models.BandAdditionKind{}, monthly), month, true,
		},
		SectionBandUpdates: managed[models.BandUpdate]{
			pagination.NewManager[models.BandUpdate](h.transport, models.BandUpdateKind{}, monthly), month, true,
		},
		SectionLatestReviews: managed[models.LatestReview]{
			pagination.NewManager[models.LatestReview](h.transport, models.LatestReviewKind{}, monthly), month, true,
		},
		SectionUpcomingAlbums: managed[models.UpcomingAlbum]{
			Manager: pagination.NewManager[models.UpcomingAlbum](h.transport, models.UpcomingAlbumKind{}, plain),
		},
	}
}

// Load loads the first page of every section that holds no data yet, and
// the statistics if missing. Sections load concurrently and independently;
// their errors are joined.
func (h *Homepage) Load(ctx context.Context) error {
	h.mu.RLock()
	pagers := maps.Clone(h.pagers)
	needStats := h.statistic == nil
	h.mu.RUnlock()

	var sections []Section
	for _, s := range Sections() {
		if s == SectionStatistics {
			if needStats {
				sections = append(sections, s)
			}
		} else if pagers[s].Len() == 0 {
			sections = append(sections, s)
		}
	}

	results := h.loadAll(ctx, sections, pagers)
	h.commitStatistic(results)
	h.publishResults(sections, results, pagers)

	return joinResults(sections, results)
}

// Refresh reloads every section from page 0 for the current month. A
// section that fails keeps the data it had, and the month it was loaded
// for. Month advances once any month-scoped section was replaced.
func (h *Homepage) Refresh(ctx context.Context) error {
	month := models.YearMonthOf(h.cfg.Now())
	fresh := h.buildPagers(month)
	sections := Sections()

	results := h.loadAll(ctx, sections, fresh)
	h.commitStatistic(results)

	var failed []Section
	var stale []pager
	h.mu.Lock()
	for _, s := range sections {
		if results[s].err != nil {
			failed = append(failed, s)
			continue
		}
		if p, ok := fresh[s]; ok {
			stale = append(stale, h.pagers[s])
			h.pagers[s] = p
			if _, monthly := p.month(); monthly {
				h.month = month
			}
		}
	}
	h.mu.Unlock()

	// Drop whatever the replaced managers still have in flight.
	for _, p := range stale {
		p.Reset()
	}

	h.publishResults(sections, results, fresh)
	h.bus.Publish(Refreshed{Month: month, Failed: failed, At: time.Now()})

	if len(failed) > 0 {
		refreshesTotal.WithLabelValues("partial").Inc()
	} else {
		refreshesTotal.WithLabelValues("success").Inc()
	}

	h.logger.Info().
		Str("month", month.String()).
		Int("failed", len(failed)).
		Msg("Homepage refreshed")

	return joinResults(sections, results)
}

// LoadMore fetches the next page of one section.
func (h *Homepage) LoadMore(ctx context.Context, s Section) error {
	if !s.Paged() {
		return fmt.Errorf("load more %s: %w", s, ErrNotPaged)
	}

	h.mu.RLock()
	p, ok := h.pagers[s]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}

	err := p.Load(ctx)
	h.publish(s, sectionResult{err: err}, p)
	if err != nil {
		return fmt.Errorf("%s: %w", s, err)
	}
	return nil
}

type sectionResult struct {
	err       error
	statistic *stats.Statistic
}

func (h *Homepage) loadAll(ctx context.Context, sections []Section, pagers map[Section]pager) map[Section]sectionResult {
	var mu sync.Mutex
	results := make(map[Section]sectionResult, len(sections))

	var g errgroup.Group
	for _, s := range sections {
		g.Go(func() error {
			var r sectionResult
			if s == SectionStatistics {
				r.statistic, r.err = stats.Fetch(ctx, h.transport, h.cfg.BaseURL)
			} else {
				r.err = pagers[s].Load(ctx)
			}

			mu.Lock()
			results[s] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (h *Homepage) commitStatistic(results map[Section]sectionResult) {
	r, ok := results[SectionStatistics]
	if !ok || r.err != nil {
		return
	}

	h.mu.Lock()
	h.statistic = r.statistic
	h.mu.Unlock()
}

func (h *Homepage) publishResults(sections []Section, results map[Section]sectionResult, pagers map[Section]pager) {
	for _, s := range sections {
		h.publish(s, results[s], pagers[s])
	}
}

func (h *Homepage) publish(s Section, r sectionResult, p pager) {
	now := time.Now()

	if r.err != nil {
		sectionLoads.WithLabelValues(string(s), "error").Inc()
		h.logger.Warn().Err(r.err).Str("section", string(s)).Msg("Section load failed")
		h.bus.Publish(SectionFailed{Section: s, Err: r.err, At: now})
		return
	}

	sectionLoads.WithLabelValues(string(s), "success").Inc()

	event := SectionLoaded{Section: s, At: now}
	if p != nil {
		event.Count = p.Len()
		if total, ok := p.Total(); ok {
			event.Total = &total
		}
	} else if r.statistic != nil {
		event.Count = 1
	}

	h.logger.Debug().Str("section", string(s)).Int("count", event.Count).Msg("Section loaded")
	h.bus.Publish(event)
}

func joinResults(sections []Section, results map[Section]sectionResult) error {
	var errs []error
	for _, s := range sections {
		if err := results[s].err; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s, err))
		}
	}
	return errors.Join(errs...)
}

// Month returns the month of the most recently loaded month-scoped
// sections. Snapshot reports the month of each section.
func (h *Homepage) Month() models.YearMonth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.month
}

// Statistic returns the site statistics, nil until loaded.
func (h *Homepage) Statistic() *stats.Statistic {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.statistic
}

// News returns the loaded news posts.
func (h *Homepage) News() []models.News {
	return items[models.News](h, SectionNews)
}

// BandAdditions returns the loaded recently added bands.
func (h *Homepage) BandAdditions() []models.BandAddition {
	return items[models.BandAddition](h, SectionBandAdditions)
}

// BandUpdates returns the loaded recently updated bands.
func (h *Homepage) BandUpdates() []models.BandUpdate {
	return items[models.BandUpdate](h, SectionBandUpdates)
}

// LatestReviews returns the loaded latest reviews.
func (h *Homepage) LatestReviews() []models.LatestReview {
	return items[models.LatestReview](h, SectionLatestReviews)
}

// UpcomingAlbums returns the loaded upcoming albums.
func (h *Homepage) UpcomingAlbums() []models.UpcomingAlbum {
	return items[models.UpcomingAlbum](h, SectionUpcomingAlbums)
}

func items[T any](h *Homepage, s Section) []T {
	h.mu.RLock()
	p := h.pagers[s]
	h.mu.RUnlock()

	m, ok := p.(managed[T])
	if !ok {
		return nil
	}
	return m.Items()
}

// Snapshot is a read-only view of one section.
type Snapshot struct {
	Section   Section          `json:"section"`
	Title     string           `json:"title"`
	Month     string           `json:"month,omitempty"`
	Items     any              `json:"items,omitempty"`
	Count     int              `json:"count"`
	Total     *int             `json:"total,omitempty"`
	HasMore   bool             `json:"has_more"`
	Statistic *stats.Statistic `json:"statistic,omitempty"`
}

// Snapshot returns the section's records, at most limit of them when limit
// is positive. Count is always the number of records held.
func (h *Homepage) Snapshot(s Section, limit int) (Snapshot, error) {
	h.mu.RLock()
	p, paged := h.pagers[s]
	statistic := h.statistic
	h.mu.RUnlock()

	snap := Snapshot{Section: s, Title: s.Title()}

	if s == SectionStatistics {
		snap.Statistic = statistic
		if statistic != nil {
			snap.Count = 1
		}
		return snap, nil
	}
	if !paged {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}

	if month, ok := p.month(); ok {
		snap.Month = month.String()
	}

	snap.Items = p.list(limit)
	snap.Count = p.Len()
	if total, ok := p.Total(); ok {
		snap.Total = &total
	}
	snap.HasMore = p.HasMore()
	return snap, nil
}

// ShortList returns a snapshot trimmed to the configured short list size.
func (h *Homepage) ShortList(s Section) (Snapshot, error) {
	return h.Snapshot(s, h.cfg.ShortListSize)
}
