package pagination

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the per-manager settings.
type Config struct {
	// BaseURL is prefixed to resolved templates that start with "/".
	BaseURL string

	// Options are template substitutions, e.g. models.OptionYearMonth.
	// The manager keeps its own copy.
	Options map[string]string
}

// call is one in-flight request and the completions waiting on it.
type call struct {
	waiters []func(error)
}

func (c *call) complete(err error) {
	for _, fn := range c.waiters {
		fn(err)
	}
}

// Manager accumulates the pages of one entity kind.
type Manager[T any] struct {
	transport Transport
	kind      Kind[T]
	baseURL   string
	options   map[string]string
	logger    zerolog.Logger

	mu         sync.Mutex
	items      []T
	total      *int
	inflight   *call
	generation uint64
	drained    bool
}

// NewManager creates an empty manager. It panics if the kind reports a
// page size below one.
func NewManager[T any](transport Transport, kind Kind[T], cfg Config) *Manager[T] {
	if kind.PageSize() < 1 {
		panic("pagination: page size of " + kind.Name() + " must be positive")
	}

	return &Manager[T]{
		transport: transport,
		kind:      kind,
		baseURL:   cfg.BaseURL,
		options:   maps.Clone(cfg.Options),
		logger: log.With().
			Str("component", "pagination").
			Str("kind", kind.Name()).
			Logger(),
	}
}

// Fetch requests the next page and returns immediately. completion, if not
// nil, is called exactly once with the outcome:
//   - nil after the page was appended, or when the collection already holds
//     the reported total or, without a total, a short page came back (no
//     request is made)
//   - the transport or parse error, leaving the collection untouched
//   - ErrSuperseded when Reset ran while the request was in flight
//
// A Fetch while another is in flight issues no request; its completion
// receives the in-flight result.
func (m *Manager[T]) Fetch(ctx context.Context, completion func(error)) {
	name := m.kind.Name()

	m.mu.Lock()

	if m.inflight != nil {
		if completion != nil {
			m.inflight.waiters = append(m.inflight.waiters, completion)
		}
		m.mu.Unlock()
		fetchesTotal.WithLabelValues(name, outcomeJoined).Inc()
		m.logger.Debug().Msg("Fetch joined in-flight request")
		return
	}

	if m.exhausted() {
		m.mu.Unlock()
		fetchesTotal.WithLabelValues(name, outcomeExhausted).Inc()
		if completion != nil {
			go completion(nil)
		}
		return
	}

	size := m.kind.PageSize()
	req := NewPageRequest(name, len(m.items)/size, size, m.options)
	c := &call{}
	if completion != nil {
		c.waiters = append(c.waiters, completion)
	}
	m.inflight = c
	gen := m.generation

	m.mu.Unlock()

	go m.run(ctx, c, req, gen)
}

func (m *Manager[T]) run(ctx context.Context, c *call, req PageRequest, gen uint64) {
	name := m.kind.Name()
	start := time.Now()

	page, err := fetchPage(ctx, m.transport, m.kind, m.baseURL, req)
	fetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		staleCompletions.WithLabelValues(name).Inc()
		fetchesTotal.WithLabelValues(name, outcomeSuperseded).Inc()
		m.logger.Debug().Int("page", req.Index).Msg("Discarding result of request started before reset")
		c.complete(ErrSuperseded)
		return
	}

	m.inflight = nil
	var length int
	if err == nil {
		m.items = append(m.items, page.Items...)
		if page.Total != nil {
			total := *page.Total
			m.total = &total
		}
		m.drained = len(page.Items) < req.Size
		length = len(m.items)
	}
	m.mu.Unlock()

	if err != nil {
		fetchesTotal.WithLabelValues(name, outcomeError).Inc()
		m.logger.Warn().Err(err).Int("page", req.Index).Msg("Page fetch failed")
		c.complete(err)
		return
	}

	fetchesTotal.WithLabelValues(name, outcomeSuccess).Inc()
	pagesDecoded.WithLabelValues(name).Inc()
	recordsAppended.WithLabelValues(name).Add(float64(len(page.Items)))

	m.logger.Debug().
		Int("page", req.Index).
		Int("records", len(page.Items)).
		Int("collection", length).
		Dur("duration", time.Since(start)).
		Msg("Page appended")

	c.complete(nil)
}

// Load fetches the next page and waits for the outcome or for ctx to end.
func (m *Manager[T]) Load(ctx context.Context) error {
	done := make(chan error, 1)
	m.Fetch(ctx, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset empties the collection and forgets the total. A request still in
// flight is not cancelled; its result is discarded.
func (m *Manager[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.total = nil
	m.inflight = nil
	m.drained = false
	m.generation++
}

// Items returns a copy of the collection.
func (m *Manager[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]T, len(m.items))
	copy(items, m.items)
	return items
}

// Len returns the number of records held.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Total returns the server-reported record count, if one was reported.
func (m *Manager[T]) Total() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.total == nil {
		return 0, false
	}
	return *m.total, true
}

// Fetching reports whether a request is in flight.
func (m *Manager[T]) Fetching() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight != nil
}

// HasMore reports whether another Fetch may return records. Without a
// total it turns false once a page came back short.
func (m *Manager[T]) HasMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return !m.exhausted()
}

// exhausted must be called with mu held.
func (m *Manager[T]) exhausted() bool {
	if m.total != nil {
		return len(m.items) >= *m.total
	}
	return m.drained
}

// Options returns a copy of the template options.
func (m *Manager[T]) Options() map[string]string {
	return maps.Clone(m.options)
}

// Kind returns the entity kind.
func (m *Manager[T]) Kind() Kind[T] {
	return m.kind
}
