package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CollectConfig holds bulk fetch configuration.
type CollectConfig struct {
	// MaxConcurrency is the maximum number of parallel page requests.
	// Keep it low: the site throttles aggressive clients.
	MaxConcurrency int

	// Timeout per page fetch.
	Timeout time.Duration

	// MaxPages caps the number of pages fetched. 0 means no cap for kinds
	// that report a total; kinds without a total always need a cap.
	MaxPages int
}

// DefaultCollectConfig returns a polite default configuration.
func DefaultCollectConfig() CollectConfig {
	return CollectConfig{
		MaxConcurrency: 3,
		Timeout:        30 * time.Second,
		MaxPages:       50,
	}
}

// Collect fetches every page of kind and returns the records in page order.
// The first page is fetched alone to learn the total; the remaining pages
// are fetched in parallel. Kinds without a total are walked sequentially
// until a short page or MaxPages. Any page failure fails the whole call.
func Collect[T any](ctx context.Context, transport Transport, kind Kind[T], cfg Config, cc CollectConfig) ([]T, error) {
	if cc.MaxConcurrency <= 0 {
		cc.MaxConcurrency = 3
	}
	if cc.Timeout <= 0 {
		cc.Timeout = 30 * time.Second
	}

	size := kind.PageSize()
	if size < 1 {
		return nil, fmt.Errorf("collect %s: page size must be positive", kind.Name())
	}

	logger := log.With().Str("component", "pagination").Str("kind", kind.Name()).Logger()
	start := time.Now()

	fetch := func(ctx context.Context, index int) (*models.Page[T], error) {
		pageCtx, cancel := context.WithTimeout(ctx, cc.Timeout)
		defer cancel()

		page, err := fetchPage(pageCtx, transport, kind, cfg.BaseURL, NewPageRequest(kind.Name(), index, size, cfg.Options))
		if err != nil {
			return nil, fmt.Errorf("collect %s page %d: %w", kind.Name(), index, err)
		}
		return page, nil
	}

	first, err := fetch(ctx, 0)
	if err != nil {
		return nil, err
	}

	if first.Total == nil {
		return collectSequential(ctx, fetch, first, size, cc.MaxPages)
	}

	totalPages := (*first.Total + size - 1) / size
	if cc.MaxPages > 0 && totalPages > cc.MaxPages {
		logger.Warn().
			Int("total_pages", totalPages).
			Int("max_pages", cc.MaxPages).
			Msg("Page cap reached - collection will be truncated")
		totalPages = cc.MaxPages
	}

	logger.Info().
		Int("total", *first.Total).
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	pages := make([][]T, max(totalPages, 1))
	pages[0] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cc.MaxConcurrency)
	for index := 1; index < totalPages; index++ {
		g.Go(func() error {
			page, err := fetch(gctx, index)
			if err != nil {
				return err
			}
			pages[index] = page.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := flatten(pages)

	logger.Info().
		Int("pages", totalPages).
		Int("records", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return items, nil
}

func collectSequential[T any](ctx context.Context, fetch func(context.Context, int) (*models.Page[T], error), first *models.Page[T], size, maxPages int) ([]T, error) {
	if maxPages <= 0 {
		maxPages = DefaultCollectConfig().MaxPages
	}

	pages := [][]T{first.Items}
	last := first
	for index := 1; index < maxPages && len(last.Items) >= size; index++ {
		page, err := fetch(ctx, index)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page.Items)
		last = page
	}
	return flatten(pages), nil
}

func flatten[T any](pages [][]T) []T {
	n := 0
	for _, p := range pages {
		n += len(p)
	}

	items := make([]T, 0, n)
	for _, p := range pages {
		items = append(items, p...)
	}
	return items
}
