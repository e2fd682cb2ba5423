// Package strategy implements three per-tick trading state machines:
// mean-reversion, moving-average crossover, and volatility breakout.
// Each is a pure function of its own rolling window state — no I/O
// beyond the MD tick it is handed — so multiple independent workers of
// the same strategy can run concurrently against the shared MD bus
// without synchronization between them.
package strategy

import (
	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/metrics"
)

// SignalQty is the fixed quantity emitted by every strategy signal.
const SignalQty = 10

// Strategy consumes one MdTick at a time and optionally emits a Signal.
type Strategy interface {
	Name() string
	OnTick(tick domain.MdTick) *domain.Signal
}

func mid(tick domain.MdTick) int64 {
	return tick.Mid()
}

func recordSignal(strategyName, symbol string) {
	metrics.SignalsTotal.WithLabelValues(strategyName, symbol).Inc()
}

// Run pumps ticks from in to out through s until in is closed. It is
// the worker loop a caller spawns once per (strategy, symbol) instance.
func Run(s Strategy, in <-chan domain.MdTick, out chan<- domain.Signal) {
	for tick := range in {
		if sig := s.OnTick(tick); sig != nil {
			recordSignal(s.Name(), sig.Symbol)
			out <- *sig
		}
	}
}
