package strategy

import (
	"testing"

	"github.com/autovant/dma-engine/internal/domain"
)

func TestVolBreakoutFiresOnUpwardBreakout(t *testing.T) {
	s := NewVolBreakout(5, 5, 1)

	var signals []*domain.Signal
	feed := func(bid, ask int64, n int) {
		for i := 0; i < n; i++ {
			if sig := s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: bid, BestAsk: ask}); sig != nil {
				signals = append(signals, sig)
			}
		}
	}

	feed(9999, 10001, 5)    // mid 10000, fills the window
	feed(10099, 10101, 1)   // mid 10100, breaks above hi(10000)+edge(5)

	if len(signals) != 1 {
		t.Fatalf("expected exactly one Buy signal on the breakout, got %d: %+v", len(signals), signals)
	}
	if signals[0].Side != domain.Buy {
		t.Errorf("expected Buy, got %v", signals[0].Side)
	}
}

func TestVolBreakoutFiresOnDownwardBreakout(t *testing.T) {
	s := NewVolBreakout(5, 5, 1)

	var signals []*domain.Signal
	feed := func(bid, ask int64, n int) {
		for i := 0; i < n; i++ {
			if sig := s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: bid, BestAsk: ask}); sig != nil {
				signals = append(signals, sig)
			}
		}
	}

	feed(9999, 10001, 5)  // mid 10000, fills the window
	feed(9899, 9901, 1)   // mid 9900, breaks below lo(10000)-edge(5)

	if len(signals) != 1 {
		t.Fatalf("expected exactly one Sell signal on the breakout, got %d: %+v", len(signals), signals)
	}
	if signals[0].Side != domain.Sell {
		t.Errorf("expected Sell, got %v", signals[0].Side)
	}
}
