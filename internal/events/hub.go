// Package events fans reader position events out to subscribers such as the
// websocket stream of the event server.
package events

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// Event types.
const (
	TypeOpened             = "opened"
	TypePageChange         = "page_change"
	TypeNavigationComplete = "navigation_complete"
	TypeWindowChange       = "window_change"
	TypePositionSaved      = "position_saved"
	TypeReloaded           = "reloaded"
	TypeClosed             = "closed"
)

// Event is a snapshot of the reader taken when something changed.
type Event struct {
	Type        string          `json:"type"`
	DocID       string          `json:"doc_id"`
	Path        string          `json:"path,omitempty"`
	Page        int             `json:"page"`
	TotalPages  int             `json:"total_pages"`
	ScrollRatio float64         `json:"scroll_ratio"`
	Navigating  bool            `json:"navigating"`
	TargetPage  int             `json:"target_page,omitempty"`
	Window      *pageview.Range `json:"window,omitempty"`
	At          time.Time       `json:"at"`
}

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published, by type.",
	}, []string{"type"})

	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Events dropped because a subscriber was not keeping up.",
	})

	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "folio",
		Subsystem: "events",
		Name:      "subscribers",
		Help:      "Current number of event subscribers.",
	})
)

// Hub is an in-memory fan-out of events. It also remembers the latest event
// so late subscribers and polling clients can read the current position.
type Hub struct {
	mu   sync.RWMutex
	subs []*subscriber
	last Event
	has  bool
}

type subscriber struct {
	ch     chan Event
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe returns a channel of events. Call the returned function to
// unsubscribe and close the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	sub := &subscriber{ch: ch}

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	subscribersGauge.Set(float64(len(h.subs)))
	h.mu.Unlock()

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, s := range h.subs {
			if s == sub {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				if !s.closed {
					s.closed = true
					close(s.ch)
				}
				break
			}
		}
		subscribersGauge.Set(float64(len(h.subs)))
	}
	return ch, unsub
}

// Publish records e as the latest event and sends it to every subscriber.
// Slow subscribers whose buffers are full miss the event.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	publishedTotal.WithLabelValues(e.Type).Inc()

	h.mu.Lock()
	h.last = e
	h.has = true
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			droppedTotal.Inc()
			tuilog.Log.Warn("Hub.Publish: dropping event for slow subscriber", "type", e.Type)
		}
	}
}

// Last returns the most recent event, if any.
func (h *Hub) Last() (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.has
}

// Close closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if !s.closed {
			s.closed = true
			close(s.ch)
		}
	}
	h.subs = nil
	subscribersGauge.Set(0)
}
