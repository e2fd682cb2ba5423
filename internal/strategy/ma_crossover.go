package strategy

import "github.com/autovant/dma-engine/internal/domain"

// MACrossover emits a Buy on a golden cross (fast SMA crosses above slow
// SMA) and a Sell on a dead cross, subject to a minimum edge and a
// cooldown between signals.
type MACrossover struct {
	minEdge  int64
	cooldown int

	fast *window
	slow *window

	prevSign  int
	sinceLast int
}

// NewMACrossover builds a crossover strategy with the given fast/slow
// window lengths, minimum edge, and cooldown tick count (defaults
// fast_w=16, slow_w=64, min_edge=2, cooldown=16).
func NewMACrossover(fastW, slowW int, minEdge int64, cooldown int) *MACrossover {
	return &MACrossover{
		minEdge:   minEdge,
		cooldown:  cooldown,
		fast:      newWindow(fastW),
		slow:      newWindow(slowW),
		sinceLast: cooldown,
	}
}

func (c *MACrossover) Name() string { return "ma_crossover" }

func (c *MACrossover) OnTick(tick domain.MdTick) *domain.Signal {
	m := mid(tick)
	c.fast.push(m)
	c.slow.push(m)
	c.sinceLast++

	if !c.fast.Full() || !c.slow.Full() {
		return nil
	}

	diff := c.fast.Mean() - c.slow.Mean()
	if abs64(diff) < c.minEdge {
		return nil
	}

	curSign := -1
	if diff > 0 {
		curSign = 1
	}

	// prevSign starts at 0 ("no bias yet"). The first non-ignored diff
	// is itself treated as a cross out of that neutral state, so a
	// strategy that has never seen a qualifying diff before can still
	// act on its first one instead of only ever latching it silently.
	if curSign != c.prevSign && c.sinceLast >= c.cooldown {
		c.prevSign = curSign
		c.sinceLast = 0
		if curSign == 1 {
			return &domain.Signal{TsNs: tick.TsNs, Symbol: tick.Symbol, Side: domain.Buy, Px: tick.BestAsk, Qty: SignalQty}
		}
		return &domain.Signal{TsNs: tick.TsNs, Symbol: tick.Symbol, Side: domain.Sell, Px: tick.BestBid, Qty: SignalQty}
	}

	c.prevSign = curSign
	return nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
