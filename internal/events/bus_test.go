package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(2)

	received := make(chan Event, 1)
	bus.Subscribe(KindRecordCreated, func(ctx context.Context, ev Event) {
		received <- ev
	})

	bus.Start()
	defer bus.Stop()

	ev := RecordCreated{UserID: uuid.New(), Year: 2026, Month: 8}
	bus.Publish(ev)

	select {
	case got := <-received:
		assert.Equal(t, ev, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBusOnlyMatchingKindFires(t *testing.T) {
	bus := NewBus(1)

	var mu sync.Mutex
	fired := map[Kind]int{}
	delivered := make(chan struct{}, 2)
	handler := func(kind Kind) Handler {
		return func(ctx context.Context, ev Event) {
			mu.Lock()
			fired[kind]++
			mu.Unlock()
			delivered <- struct{}{}
		}
	}
	bus.Subscribe(KindRecordCreated, handler(KindRecordCreated))
	bus.Subscribe(KindRecordDeleted, handler(KindRecordDeleted))

	bus.Start()
	defer bus.Stop()

	bus.Publish(RecordCreated{UserID: uuid.New(), Year: 2026, Month: 8})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired[KindRecordCreated])
	assert.Equal(t, 0, fired[KindRecordDeleted])
}

func TestBusFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus(1)

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		bus.Subscribe(KindFriendChanged, func(ctx context.Context, ev Event) {
			wg.Done()
		})
	}

	bus.Start()
	defer bus.Stop()

	bus.Publish(FriendChanged{ActorID: uuid.New(), TargetID: uuid.New(), Added: true})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not every subscriber saw the event")
	}
}

func TestBusStopReturns(t *testing.T) {
	bus := NewBus(3)
	bus.Start()

	done := make(chan struct{})
	go func() {
		bus.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestBusHandlerContextHasDeadline(t *testing.T) {
	bus := NewBus(1)

	gotDeadline := make(chan bool, 1)
	bus.Subscribe(KindLevelChanged, func(ctx context.Context, ev Event) {
		_, ok := ctx.Deadline()
		gotDeadline <- ok
	})

	bus.Start()
	defer bus.Stop()

	bus.Publish(LevelChanged{UserID: uuid.New(), NewLevel: 1})

	select {
	case ok := <-gotDeadline:
		require.True(t, ok, "handler context should carry a deadline")
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}
