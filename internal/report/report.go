// Package report periodically summarizes aggregate PnL across all
// tracked symbols, grounded on reporter.go's ticker-driven performance
// report loop.
package report

import (
	"fmt"
	"log"
	"time"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/recorder"
)

// DefaultInterval matches reporter.go's one-minute report cadence.
const DefaultInterval = 1 * time.Minute

// Summary is one tick of the aggregate report.
type Summary struct {
	TsNs          int64            `json:"ts_ns"`
	RealizedPnL   int64            `json:"realized_pnl"`
	UnrealizedPnL int64            `json:"unrealized_pnl"`
	BySymbol      map[string]int64 `json:"by_symbol_realized_pnl"`
}

// Reporter reads the latest InvSnapshot of every tracked symbol on a
// fixed interval and logs (and, if wired, records) an aggregate summary.
type Reporter struct {
	snaps    map[string]*bus.Latest[*domain.InvSnapshot]
	interval time.Duration
	rq       chan<- domain.Event
}

// New builds a reporter over snaps, the same per-symbol snapshot
// channels the router reads for inventory bias. rq may be nil, in which
// case summaries are only logged, never recorded.
func New(snaps map[string]*bus.Latest[*domain.InvSnapshot], interval time.Duration, rq chan<- domain.Event) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{snaps: snaps, interval: interval, rq: rq}
}

// Run emits a Summary every interval until stop is closed.
func (r *Reporter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s := r.snapshot()
			log.Printf("report: realized_pnl=%d unrealized_pnl=%d symbols=%d", s.RealizedPnL, s.UnrealizedPnL, len(s.BySymbol))
			if r.rq != nil {
				recorder.TrySend(r.rq, domain.NewNoteEvent(formatNote(s)))
			}
		}
	}
}

func (r *Reporter) snapshot() Summary {
	s := Summary{TsNs: time.Now().UnixNano(), BySymbol: make(map[string]int64, len(r.snaps))}
	for symbol, snap := range r.snaps {
		inv, ok := snap.Get()
		if !ok || inv.State == nil {
			continue
		}
		s.RealizedPnL += inv.State.RealizedPnL
		s.UnrealizedPnL += inv.State.UnrealizedPnL
		s.BySymbol[symbol] = inv.State.RealizedPnL
	}
	return s
}

func formatNote(s Summary) string {
	return fmt.Sprintf("report: realized_pnl=%d unrealized_pnl=%d", s.RealizedPnL, s.UnrealizedPnL)
}
