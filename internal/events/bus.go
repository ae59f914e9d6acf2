package events

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_published_total",
			Help: "Events accepted onto the pipeline bus",
		},
		[]string{"kind"},
	)
	eventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_dropped_total",
			Help: "Events dropped because the bus queue stayed full",
		},
		[]string{"kind"},
	)
	eventsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_processed_total",
			Help: "Events handed to their subscribers",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(eventsPublished, eventsDropped, eventsProcessed)
}

type Handler func(ctx context.Context, ev Event)

// Bus fans post-commit events out to subscribed reactions on a small
// worker pool. Publish is called only after the triggering transaction
// has committed, so a handler never observes rolled-back state.
type Bus struct {
	workers  int
	queue    chan Event
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

const (
	publishTimeout = 5 * time.Second
	handleTimeout  = 10 * time.Second
)

func NewBus(workers int) *Bus {
	return &Bus{
		workers:  workers,
		queue:    make(chan Event, 256),
		stopChan: make(chan struct{}),
		handlers: make(map[Kind][]Handler),
	}
}

// Subscribe registers a handler for one event kind. All subscriptions
// happen during wiring in main, before Start.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

func (b *Bus) Start() {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}
	log.Printf("Event bus started with %d workers", b.workers)
}

// Publish enqueues an event without blocking the request goroutine
// indefinitely. A full queue drops the event after a bounded wait;
// pipeline events are best-effort once the transaction has committed.
func (b *Bus) Publish(ev Event) {
	select {
	case b.queue <- ev:
		eventsPublished.WithLabelValues(string(ev.Kind())).Inc()
	case <-time.After(publishTimeout):
		eventsDropped.WithLabelValues(string(ev.Kind())).Inc()
		log.Printf("Event bus queue full, dropping %s event", ev.Kind())
	}
}

func (b *Bus) worker(id int) {
	defer b.wg.Done()
	for {
		select {
		case ev := <-b.queue:
			b.dispatch(ev)
		case <-b.stopChan:
			return
		}
	}
}

func (b *Bus) dispatch(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	b.mu.RLock()
	handlers := b.handlers[ev.Kind()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
	eventsProcessed.WithLabelValues(string(ev.Kind())).Inc()
}

// Stop drains nothing: queued events that no worker picked up before
// shutdown are lost, which matches their fire-and-forget contract.
func (b *Bus) Stop() {
	log.Println("Stopping event bus...")
	close(b.stopChan)
	b.wg.Wait()
	log.Println("Event bus stopped")
}
