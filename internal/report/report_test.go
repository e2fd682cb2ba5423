package report

import (
	"testing"
	"time"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
)

func TestSnapshotAggregatesAcrossSymbols(t *testing.T) {
	snapA := bus.NewLatest[*domain.InvSnapshot]()
	snapB := bus.NewLatest[*domain.InvSnapshot]()

	stateA := domain.NewSymbolState("AAA")
	stateA.RealizedPnL = 100
	stateA.UnrealizedPnL = 10
	snapA.Publish(&domain.InvSnapshot{Symbol: "AAA", State: stateA})

	stateB := domain.NewSymbolState("BBB")
	stateB.RealizedPnL = -40
	stateB.UnrealizedPnL = 5
	snapB.Publish(&domain.InvSnapshot{Symbol: "BBB", State: stateB})

	r := New(map[string]*bus.Latest[*domain.InvSnapshot]{"AAA": snapA, "BBB": snapB}, 0, nil)
	s := r.snapshot()

	if s.RealizedPnL != 60 {
		t.Fatalf("realized pnl = %d, want 60", s.RealizedPnL)
	}
	if s.UnrealizedPnL != 15 {
		t.Fatalf("unrealized pnl = %d, want 15", s.UnrealizedPnL)
	}
	if s.BySymbol["AAA"] != 100 || s.BySymbol["BBB"] != -40 {
		t.Fatalf("by-symbol breakdown wrong: %+v", s.BySymbol)
	}
}

func TestRunStopsOnStopChannel(t *testing.T) {
	r := New(map[string]*bus.Latest[*domain.InvSnapshot]{}, time.Millisecond, nil)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() { r.Run(stop); close(done) }()

	time.Sleep(5 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}
}
