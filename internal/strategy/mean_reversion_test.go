package strategy

import (
	"testing"

	"github.com/autovant/dma-engine/internal/domain"
)

func TestMeanReversionBuySignal(t *testing.T) {
	s := NewMeanReversion(64, 3)

	// 64 ticks at a constant mid of 10000 (bid 9999 / ask 10001).
	for i := 0; i < 64; i++ {
		sig := s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 9999, BestAsk: 10001})
		if sig != nil {
			t.Fatalf("unexpected signal while filling the window: %+v", sig)
		}
	}

	sig := s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 9989, BestAsk: 9990})
	if sig == nil {
		t.Fatal("expected a Buy signal once ask drops below fair-edge")
	}
	if sig.Side != domain.Buy {
		t.Errorf("expected Buy, got %v", sig.Side)
	}
	if sig.Px != 9990 {
		t.Errorf("expected px=9990, got %d", sig.Px)
	}
	if sig.Qty != 10 {
		t.Errorf("expected qty=10, got %d", sig.Qty)
	}
}

func TestMeanReversionSellSignal(t *testing.T) {
	s := NewMeanReversion(64, 3)
	for i := 0; i < 64; i++ {
		s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 9999, BestAsk: 10001})
	}
	sig := s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 10010, BestAsk: 10011})
	if sig == nil || sig.Side != domain.Sell {
		t.Fatalf("expected a Sell signal, got %+v", sig)
	}
	if sig.Px != 10010 {
		t.Errorf("expected px=10010, got %d", sig.Px)
	}
}

func TestMeanReversionNoSignalWithinBand(t *testing.T) {
	s := NewMeanReversion(64, 3)
	for i := 0; i < 64; i++ {
		s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 9999, BestAsk: 10001})
	}
	if sig := s.OnTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 9999, BestAsk: 10001}); sig != nil {
		t.Fatalf("expected no signal inside the edge band, got %+v", sig)
	}
}
