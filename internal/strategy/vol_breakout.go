package strategy

import "github.com/autovant/dma-engine/internal/domain"

// VolBreakout emits a Buy when the mid breaks above the trailing high by
// more than edge, and a Sell when it breaks below the trailing low,
// subject to a cooldown between signals.
type VolBreakout struct {
	edge      int64
	cooldown  int
	win       *window
	sinceLast int
}

// NewVolBreakout builds a breakout strategy with window w, edge
// threshold, and cooldown (defaults w=100, edge=5, cooldown=20).
func NewVolBreakout(w int, edge int64, cooldown int) *VolBreakout {
	return &VolBreakout{edge: edge, cooldown: cooldown, win: newWindow(w), sinceLast: cooldown}
}

func (b *VolBreakout) Name() string { return "vol_breakout" }

func (b *VolBreakout) OnTick(tick domain.MdTick) *domain.Signal {
	m := mid(tick)
	b.sinceLast++

	full := b.win.Full()
	lo, hi := b.win.MinMax()
	b.win.push(m)

	if !full {
		return nil
	}
	if b.sinceLast < b.cooldown {
		return nil
	}

	switch {
	case m > hi+b.edge:
		b.sinceLast = 0
		return &domain.Signal{TsNs: tick.TsNs, Symbol: tick.Symbol, Side: domain.Buy, Px: tick.BestAsk, Qty: SignalQty}
	case m < lo-b.edge:
		b.sinceLast = 0
		return &domain.Signal{TsNs: tick.TsNs, Symbol: tick.Symbol, Side: domain.Sell, Px: tick.BestBid, Qty: SignalQty}
	}
	return nil
}
