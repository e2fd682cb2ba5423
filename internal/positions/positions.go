// Package positions implements the per-symbol position/PnL accumulator:
// one task per symbol, owning its SymbolState exclusively, publishing a
// new InvSnapshot after every MdTick and every fill report (PartialFill
// or Filled). Ack and Rejected reports change nothing and publish nothing.
package positions

import (
	"strings"
	"time"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/metrics"
)

// Tracker owns the SymbolState for one symbol. All mutation happens on
// the goroutine running Run; nothing here is safe for concurrent use
// from multiple goroutines, by design.
type Tracker struct {
	symbol string
	state  *domain.SymbolState
	snap   *bus.Latest[*domain.InvSnapshot]
}

// NewTracker builds a tracker for symbol, publishing snapshots onto
// snap (subscribed to by the router for inventory bias).
func NewTracker(symbol string, snap *bus.Latest[*domain.InvSnapshot]) *Tracker {
	return &Tracker{symbol: symbol, state: domain.NewSymbolState(symbol), snap: snap}
}

// venueOf extracts the trailing "-<venue>" suffix of a child cl_id: the
// venue is recovered from the id itself, with no separate
// order-registry table. The first dash only ends the id's leading tag
// (as in "CL-..."), so an id with one dash or none carries no venue
// suffix and yields "?".
func venueOf(clID string) string {
	idx := strings.LastIndex(clID, "-")
	if idx <= strings.Index(clID, "-") || idx == len(clID)-1 {
		return "?"
	}
	return clID[idx+1:]
}

// Run consumes MdTicks from mdIn and ExecReports from execIn, updating
// state and publishing a new snapshot after each tick and each fill
// report, until both channels are closed.
func (t *Tracker) Run(mdIn <-chan domain.MdTick, execIn <-chan domain.ExecReport) {
	for mdIn != nil || execIn != nil {
		select {
		case tick, ok := <-mdIn:
			if !ok {
				mdIn = nil
				continue
			}
			t.onTick(tick)
		case report, ok := <-execIn:
			if !ok {
				execIn = nil
				continue
			}
			t.onExecReport(report)
		}
	}
}

func (t *Tracker) onTick(tick domain.MdTick) {
	t.state.LastMid = tick.Mid()

	var unrealized int64
	for _, pos := range t.state.ByVenue {
		if pos.Qty == 0 || pos.AvgCostPx == 0 {
			continue
		}
		unrealized += (t.state.LastMid - pos.AvgCostPx) * pos.Qty
	}
	t.state.UnrealizedPnL = unrealized
	metrics.UnrealizedPnLGauge.WithLabelValues(t.symbol).Set(float64(unrealized))
	t.publish(tick.TsNs)
}

// inferSide approximates the fill side from last_mid vs avg_px: the
// exec-report stream here carries no explicit side.
func inferSide(lastMid, avgPx int64) domain.Side {
	if lastMid <= avgPx {
		return domain.Buy
	}
	return domain.Sell
}

func (t *Tracker) onExecReport(report domain.ExecReport) {
	if report.Status != domain.PartialFill && report.Status != domain.Filled {
		return
	}

	venue := venueOf(report.ClID)
	pos, ok := t.state.ByVenue[venue]
	if !ok {
		pos = &domain.VenuePosition{}
		t.state.ByVenue[venue] = pos
	}

	side := inferSide(t.state.LastMid, report.AvgPx)
	signedQty := side.Sign() * report.FilledQty

	prevQty := pos.Qty
	sameDirectionOrFlat := prevQty == 0 || sign64(prevQty) == sign64(signedQty)

	if sameDirectionOrFlat {
		if prevQty == 0 {
			pos.AvgCostPx = report.AvgPx
		} else {
			absPrev := abs64(prevQty)
			absSigned := abs64(signedQty)
			pos.AvgCostPx = (pos.AvgCostPx*absPrev + report.AvgPx*absSigned) / (absPrev + absSigned)
		}
		pos.Qty += signedQty
	} else {
		qtyClosed := min64(abs64(signedQty), abs64(prevQty))
		delta := (report.AvgPx - pos.AvgCostPx) * qtyClosed
		if prevQty < 0 {
			delta = -delta
		}
		pos.RealizedPnL += delta
		pos.Qty += signedQty
		if pos.Qty == 0 {
			pos.AvgCostPx = 0
		} else {
			pos.AvgCostPx = report.AvgPx
		}
	}

	t.recomputeTotals()
	metrics.InventoryGauge.WithLabelValues(t.symbol, venue).Set(float64(pos.Qty))
	metrics.RealizedPnLGauge.WithLabelValues(t.symbol).Set(float64(t.state.RealizedPnL))
	metrics.ExecReportsTotal.WithLabelValues(report.Status.String(), venue).Inc()
	t.publish(report.TsNs)
}

func (t *Tracker) recomputeTotals() {
	var totalQty, realized int64
	for _, pos := range t.state.ByVenue {
		totalQty += pos.Qty
		realized += pos.RealizedPnL
	}
	t.state.TotalQty = totalQty
	t.state.RealizedPnL = realized
}

func (t *Tracker) publish(tsNs int64) {
	if tsNs == 0 {
		tsNs = time.Now().UnixNano()
	}
	t.snap.Publish(&domain.InvSnapshot{TsNs: tsNs, Symbol: t.symbol, State: t.state.Clone()})
}

func sign64(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
