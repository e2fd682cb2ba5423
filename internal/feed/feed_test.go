package feed

import (
	"testing"
	"time"

	"github.com/autovant/dma-engine/internal/bus"
)

func TestRunMockPublishesTicksUntilStopped(t *testing.T) {
	b := bus.NewMDBus()
	sub := b.Subscribe("test")
	stop := make(chan struct{})

	go RunMock(b, "BTCUSDT", stop)

	select {
	case tick := <-sub.C:
		if tick.Symbol != "BTCUSDT" {
			t.Errorf("expected symbol BTCUSDT, got %s", tick.Symbol)
		}
		if tick.BestAsk != tick.BestBid+1 {
			t.Errorf("expected best_ask = best_bid+1, got bid=%d ask=%d", tick.BestBid, tick.BestAsk)
		}
		if tick.BestBid < 5000 {
			t.Errorf("expected px_bid clamped to >= 5000, got %d", tick.BestBid)
		}
	case <-time.After(time.Second):
		t.Fatal("expected at least one tick within a second")
	}
	close(stop)
}

func TestParseBookTickerConvertsToTickScale(t *testing.T) {
	tick, ok := parseBookTicker("BTCUSDT", []byte(`{"b":"100.50","a":"100.75"}`))
	if !ok {
		t.Fatal("expected frame to parse")
	}
	if tick.BestBid != 10050 || tick.BestAsk != 10075 {
		t.Errorf("unexpected tick scaling: %+v", tick)
	}
}

func TestParseBookTickerDropsNonPositiveSides(t *testing.T) {
	if _, ok := parseBookTicker("BTCUSDT", []byte(`{"b":"0","a":"100.75"}`)); ok {
		t.Error("expected a non-positive bid to be dropped")
	}
	if _, ok := parseBookTicker("BTCUSDT", []byte(`{"b":"100.50","a":"-1"}`)); ok {
		t.Error("expected a negative ask to be dropped")
	}
}

func TestParseBookTickerSkipsMalformedFrame(t *testing.T) {
	if _, ok := parseBookTicker("BTCUSDT", []byte("not json")); ok {
		t.Error("expected malformed frame to be skipped")
	}
}
