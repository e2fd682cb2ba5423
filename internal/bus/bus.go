// Package bus implements the market-data broadcast fan-out: a bounded,
// multi-consumer channel where slow subscribers may miss ticks rather
// than stall the feed. It is the in-process analogue of an NATS
// subject fan-out, realized here as native channels so a single
// process can run the whole pipeline without a broker.
package bus

import (
	"sync"

	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/metrics"
)

// DefaultCapacity is the bounded ring size for each subscriber's queue.
const DefaultCapacity = 4096

// MDBus broadcasts MdTicks to any number of subscribers. Each subscriber
// gets its own bounded channel; a full channel means that subscriber is
// lagging and the tick is dropped for it only.
type MDBus struct {
	mu   sync.RWMutex
	subs map[int]chan domain.MdTick
	next int
}

// NewMDBus creates an empty bus.
func NewMDBus() *MDBus {
	return &MDBus{subs: make(map[int]chan domain.MdTick)}
}

// Subscription is a live MD bus subscriber. Cancel releases it.
type Subscription struct {
	id     int
	bus    *MDBus
	C      <-chan domain.MdTick
	name   string
}

// Subscribe registers a new consumer and returns its channel. name is
// only stored on the Subscription: Publish counts lag for every
// subscriber under the single "md_bus" consumer label, not under name.
func (b *MDBus) Subscribe(name string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan domain.MdTick, DefaultCapacity)
	id := b.next
	b.next++
	b.subs[id] = ch
	return &Subscription{id: id, bus: b, C: ch, name: name}
}

// Cancel unregisters the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if ch, ok := s.bus.subs[s.id]; ok {
		delete(s.bus.subs, s.id)
		close(ch)
	}
}

// Publish broadcasts a tick to every current subscriber. A subscriber
// whose queue is full observes a lag: the tick is dropped for it and a
// lag counter increments, but Publish never blocks.
func (b *MDBus) Publish(tick domain.MdTick) {
	metrics.TicksTotal.WithLabelValues(tick.Symbol).Inc()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- tick:
		default:
			metrics.MdLagTotal.WithLabelValues("md_bus").Inc()
		}
	}
}
