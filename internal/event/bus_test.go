package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFIFOOrder(t *testing.T) {
	bus := NewBus()
	bus.PublishApp(ReviewsLoad{})
	bus.PublishApp(GitBranchesLoad{})
	bus.Publish(Tick())

	ev, ok := bus.TryNext()
	require.True(t, ok)
	assert.IsType(t, ReviewsLoad{}, ev.App)

	ev, ok = bus.TryNext()
	require.True(t, ok)
	assert.IsType(t, GitBranchesLoad{}, ev.App)

	ev, ok = bus.TryNext()
	require.True(t, ok)
	assert.Equal(t, KindTick, ev.Kind)

	_, ok = bus.TryNext()
	assert.False(t, ok)
}

func TestBusNextBlocksUntilPublish(t *testing.T) {
	bus := NewBus()

	done := make(chan *Event, 1)
	go func() {
		ev, err := bus.Next(context.Background())
		if err == nil {
			done <- ev
		}
	}()

	// The receiver must not observe anything before the publish.
	select {
	case <-done:
		t.Fatal("Next returned before an event was published")
	case <-time.After(20 * time.Millisecond):
	}

	bus.PublishApp(QuitRequested{})

	select {
	case ev := <-done:
		assert.IsType(t, QuitRequested{}, ev.App)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after publish")
	}
}

func TestBusNextHonorsContext(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bus.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus()

	const publishers = 8
	const perPublisher = 50

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				bus.Publish(Tick())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, publishers*perPublisher, bus.Len())
}

func TestBusPublishDuringDrainIsAppended(t *testing.T) {
	bus := NewBus()
	bus.PublishApp(ReviewsLoad{})

	// A follow-up published while handling the first event must come after
	// everything already queued.
	bus.PublishApp(GitBranchesLoad{})

	ev, _ := bus.TryNext()
	assert.IsType(t, ReviewsLoad{}, ev.App)
	bus.PublishApp(ReviewsLoading{})

	ev, _ = bus.TryNext()
	assert.IsType(t, GitBranchesLoad{}, ev.App)
	ev, _ = bus.TryNext()
	assert.IsType(t, ReviewsLoading{}, ev.App)
}
