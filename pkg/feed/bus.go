package feed

import (
	"sync"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ma_feed_events_dropped_total",
	Help: "Feed events dropped because a subscriber channel was full",
})

// Event is published on the Bus. The concrete types are SectionLoaded,
// SectionFailed and Refreshed.
type Event interface {
	event()
}

// SectionLoaded is published after a section received data.
type SectionLoaded struct {
	Section Section
	Count   int
	Total   *int
	At      time.Time
}

// SectionFailed is published when loading a section failed. Data already
// held for the section is kept.
type SectionFailed struct {
	Section Section
	Err     error
	At      time.Time
}

// Refreshed is published once a refresh finished.
type Refreshed struct {
	Month  models.YearMonth
	Failed []Section
	At     time.Time
}

func (SectionLoaded) event() {}
func (SectionFailed) event() {}
func (Refreshed) event()     {}

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	next   int
	buffer int
	closed bool
}

// NewBus creates a bus whose subscriber channels hold buffer events.
func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Subscribe returns a channel of events and a function that ends the
// subscription and closes the channel. A nil bus returns a closed channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default: // Non-blocking if channel full
			eventsDropped.Inc()
		}
	}
}

// Close ends all subscriptions.
func (b *Bus) Close() {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
