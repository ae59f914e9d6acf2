package sse

import (
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "sse_active_connections",
	Help: "Live push connections currently registered",
})

func init() {
	prometheus.MustRegister(activeConnections)
}

// Registry holds at most one live connection per user id. It is a
// process-local concurrent map; every close path (completion, timeout,
// delivery error) converges on Delete for the user id. A second
// subscription replaces the entry, and the older connection is left to
// expire on its own.
type Registry struct {
	emitters sync.Map // user id -> *Emitter
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Save(userID string, e *Emitter) {
	if _, loaded := r.emitters.Swap(userID, e); loaded {
		log.Printf("Replacing live connection for user %s", userID)
	} else {
		activeConnections.Inc()
	}
}

func (r *Registry) Get(userID string) (*Emitter, bool) {
	v, ok := r.emitters.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(*Emitter), true
}

func (r *Registry) Delete(userID string) {
	if _, loaded := r.emitters.LoadAndDelete(userID); loaded {
		activeConnections.Dec()
	}
}
