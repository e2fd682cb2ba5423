package strategy

import "github.com/autovant/dma-engine/internal/domain"

// MeanReversion emits a Buy once the ask trades edge ticks below the
// trailing fair value, and a Sell once the bid trades edge above it.
type MeanReversion struct {
	w    int
	edge int64
	win  *window
}

// NewMeanReversion builds a mean-reversion strategy with window length w
// and edge threshold edge (defaults w=64, edge=3).
func NewMeanReversion(w int, edge int64) *MeanReversion {
	return &MeanReversion{w: w, edge: edge, win: newWindow(w)}
}

func (m *MeanReversion) Name() string { return "mean_reversion" }

func (m *MeanReversion) OnTick(tick domain.MdTick) *domain.Signal {
	m.win.push(mid(tick))
	if !m.win.Full() {
		return nil
	}
	fair := m.win.Mean()
	switch {
	case tick.BestAsk < fair-m.edge:
		return &domain.Signal{
			TsNs:   tick.TsNs,
			Symbol: tick.Symbol,
			Side:   domain.Buy,
			Px:     tick.BestAsk,
			Qty:    SignalQty,
		}
	case tick.BestBid > fair+m.edge:
		return &domain.Signal{
			TsNs:   tick.TsNs,
			Symbol: tick.Symbol,
			Side:   domain.Sell,
			Px:     tick.BestBid,
			Qty:    SignalQty,
		}
	}
	return nil
}
