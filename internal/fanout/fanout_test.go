package fanout

import (
	"testing"
	"time"

	"github.com/autovant/dma-engine/internal/domain"
)

func TestDispatcherRoutesBySymbolAndClonesToPostTrade(t *testing.T) {
	in := make(chan domain.ExecReport, 2)
	postTrade := make(chan domain.ExecReport, 2)
	btc := make(chan domain.ExecReport, 2)

	d := &Dispatcher{
		PostTrade:     postTrade,
		PositionChans: map[string]chan<- domain.ExecReport{"BTCUSDT": btc},
	}

	in <- domain.ExecReport{Symbol: "BTCUSDT", ClID: "CL-1-sim", Status: domain.Filled}
	close(in)

	done := make(chan struct{})
	go func() { d.Run(in); close(done) }()
	<-done

	select {
	case r := <-postTrade:
		if r.ClID != "CL-1-sim" {
			t.Errorf("unexpected post-trade report: %+v", r)
		}
	default:
		t.Fatal("expected a report on the post-trade channel")
	}
	select {
	case r := <-btc:
		if r.ClID != "CL-1-sim" {
			t.Errorf("unexpected position report: %+v", r)
		}
	default:
		t.Fatal("expected a report on the BTCUSDT position channel")
	}
}

func TestDispatcherDropsUnknownSymbolWithoutBlocking(t *testing.T) {
	in := make(chan domain.ExecReport, 1)
	postTrade := make(chan domain.ExecReport, 1)

	var gotSymbol string
	d := &Dispatcher{
		PostTrade:     postTrade,
		PositionChans: map[string]chan<- domain.ExecReport{},
		OnUnknown:     func(symbol string, _ domain.ExecReport) { gotSymbol = symbol },
	}

	in <- domain.ExecReport{Symbol: "DOGEUSDT", ClID: "CL-1-sim", Status: domain.Ack}
	close(in)

	done := make(chan struct{})
	go func() { d.Run(in); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher blocked on an unregistered symbol instead of dropping it")
	}

	if gotSymbol != "DOGEUSDT" {
		t.Errorf("expected OnUnknown to be called with DOGEUSDT, got %q", gotSymbol)
	}
	if len(postTrade) != 1 {
		t.Error("expected the post-trade copy to still be delivered even for an unknown symbol")
	}
}
