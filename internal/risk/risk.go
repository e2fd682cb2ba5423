// Package risk implements the pre-trade risk gate: a single task that
// checks notional, price band, and throttle limits in order, converting
// accepted signals into orders with unique client ids, and rejecting
// the rest without retry.
package risk

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/metrics"
)

// Limits bounds what the risk gate allows through.
type Limits struct {
	MaxNotional int64
	PxMin       int64
	PxMax       int64
	MaxQPS      int64
}

// Gate owns the throttle state; it must run on a single goroutine since
// last_ns/counter are mutated without locking.
type Gate struct {
	limits  Limits
	lastNs  int64
	counter int64
}

// NewGate builds a risk gate with the given limits.
func NewGate(limits Limits) *Gate {
	return &Gate{limits: limits}
}

const throttleWindowNs = 20 * int64(time.Millisecond)

// check returns the reject kind, or "" if the signal passes all checks.
func (g *Gate) check(sig domain.Signal) domain.RejectKind {
	if sig.Px != 0 && sig.Qty > math.MaxInt64/sig.Px {
		return domain.RejectNotional
	}
	if sig.Px*sig.Qty > g.limits.MaxNotional {
		return domain.RejectNotional
	}
	if sig.Px < g.limits.PxMin || sig.Px > g.limits.PxMax {
		return domain.RejectPriceBand
	}

	now := sig.TsNs
	if now-g.lastNs < throttleWindowNs {
		g.counter++
		if g.counter > g.limits.MaxQPS {
			return domain.RejectThrottle
		}
	} else {
		g.counter = 0
		g.lastNs = now
	}
	return ""
}

// clID produces a process-lifetime-unique client order id.
func (g *Gate) clID(nowNs int64) string {
	return fmt.Sprintf("CL-%d-%s", nowNs, uuid.NewString())
}

// Run consumes signals from in, emits accepted orders to out, and logs
// rejections (by kind, never retried) until in is closed.
func (g *Gate) Run(in <-chan domain.Signal, out chan<- domain.Order) {
	for sig := range in {
		if kind := g.check(sig); kind != "" {
			metrics.RejectsTotal.WithLabelValues(string(kind)).Inc()
			log.Printf("risk: rejected signal symbol=%s side=%v px=%d qty=%d kind=%s", sig.Symbol, sig.Side, sig.Px, sig.Qty, kind)
			continue
		}
		order := domain.Order{
			ClID:   g.clID(sig.TsNs),
			TsNs:   sig.TsNs,
			Symbol: sig.Symbol,
			Side:   sig.Side,
			Px:     sig.Px,
			Qty:    sig.Qty,
		}
		metrics.OrdersTotal.WithLabelValues(order.Symbol).Inc()
		out <- order
	}
}
