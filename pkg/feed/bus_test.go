package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(4)
	first, unsubFirst := bus.Subscribe()
	second, unsubSecond := bus.Subscribe()
	defer unsubFirst()
	defer unsubSecond()

	bus.Publish(SectionLoaded{Section: SectionNews, Count: 10})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case e := <-ch:
			loaded, ok := e.(SectionLoaded)
			require.True(t, ok)
			assert.Equal(t, SectionNews, loaded.Section)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus(2)
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(SectionLoaded{Section: SectionNews, Count: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	assert.Len(t, events, 2)
	first := (<-events).(SectionLoaded)
	assert.Equal(t, 0, first.Count)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(1)
	events, unsubscribe := bus.Subscribe()

	unsubscribe()
	unsubscribe()

	_, open := <-events
	assert.False(t, open)

	bus.Publish(Refreshed{})
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(1)
	events, unsubscribe := bus.Subscribe()

	bus.Close()
	unsubscribe()

	_, open := <-events
	assert.False(t, open)

	late, _ := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestBus_NilIsSafe(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() { bus.Publish(Refreshed{}) })

	var events <-chan Event
	var unsubscribe func()
	assert.NotPanics(t, func() { events, unsubscribe = bus.Subscribe() })
	_, open := <-events
	assert.False(t, open)
	assert.NotPanics(t, unsubscribe)

	assert.NotPanics(t, bus.Close)
}
