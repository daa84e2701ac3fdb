package engine

import (
	"sync"
	"time"

	"github.com/ALCarroll24/MeasurementLQG/searcher"
	"github.com/ALCarroll24/MeasurementLQG/world"
)

// Snapshot is the cross-thread-safe view of one completed planning cycle.
// It carries only flattened records and value copies, never live nodes.
type Snapshot struct {
	ID          string                `json:"id"`
	Cycle       int                   `json:"cycle"`
	Exploration float64               `json:"k"`
	Nodes       []searcher.NodeRecord `json:"nodes"`
	Decision    world.Action          `json:"decision"`
	Trace       float64               `json:"trace"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Hub fans completed snapshots out to external readers such as the
// visualization service.
type Hub struct {
	mu          sync.RWMutex
	latest      *Snapshot
	subscribers map[chan Snapshot]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Snapshot]struct{})}
}

// Publish stores the snapshot as latest and pushes it to all subscribers.
// Slow subscribers miss intermediate snapshots rather than stalling planning.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &s
	for ch := range h.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}

// Latest returns the most recent snapshot, if any cycle completed yet.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}

func (h *Hub) Subscribe() chan Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Snapshot, 1)
	h.subscribers[ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(ch chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subscribers, ch)
	close(ch)
}
