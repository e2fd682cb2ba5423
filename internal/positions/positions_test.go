package positions

import (
	"testing"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
)

func newTestTracker(symbol string) *Tracker {
	return NewTracker(symbol, bus.NewLatest[*domain.InvSnapshot]())
}

func TestPositionFlip(t *testing.T) {
	tr := newTestTracker("BTCUSDT")

	tr.onTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 49, BestAsk: 51}) // mid=50, <=100 -> infers Buy
	tr.onExecReport(domain.ExecReport{ClID: "CL-1-X", Symbol: "BTCUSDT", Status: domain.Filled, FilledQty: 10, AvgPx: 100})

	pos := tr.state.ByVenue["X"]
	if pos.Qty != 10 || pos.AvgCostPx != 100 {
		t.Fatalf("after first fill expected qty=10 avg_cost_px=100, got qty=%d avg_cost_px=%d", pos.Qty, pos.AvgCostPx)
	}

	tr.onTick(domain.MdTick{Symbol: "BTCUSDT", BestBid: 199, BestAsk: 201}) // mid=200, >110 -> infers Sell
	tr.onExecReport(domain.ExecReport{ClID: "CL-1-X", Symbol: "BTCUSDT", Status: domain.Filled, FilledQty: 15, AvgPx: 110})

	pos = tr.state.ByVenue["X"]
	if pos.Qty != -5 {
		t.Errorf("expected qty=-5, got %d", pos.Qty)
	}
	if pos.RealizedPnL != 100 {
		t.Errorf("expected realized_pnl=100, got %d", pos.RealizedPnL)
	}
	if pos.AvgCostPx != 110 {
		t.Errorf("expected avg_cost_px=110, got %d", pos.AvgCostPx)
	}
	if tr.state.TotalQty != pos.Qty {
		t.Errorf("expected total_qty to equal venue qty, got %d vs %d", tr.state.TotalQty, pos.Qty)
	}
	if tr.state.RealizedPnL != pos.RealizedPnL {
		t.Errorf("expected top-level realized_pnl to equal venue realized_pnl, got %d vs %d", tr.state.RealizedPnL, pos.RealizedPnL)
	}
}

func TestFillThenOppositeFillSameSizeZeroesPosition(t *testing.T) {
	tr := newTestTracker("ETHUSDT")

	tr.onTick(domain.MdTick{Symbol: "ETHUSDT", BestBid: 99, BestAsk: 101}) // mid=100 -> Buy
	tr.onExecReport(domain.ExecReport{ClID: "CL-1-Y", Symbol: "ETHUSDT", Status: domain.Filled, FilledQty: 20, AvgPx: 2000})

	tr.onTick(domain.MdTick{Symbol: "ETHUSDT", BestBid: 2999, BestAsk: 3001}) // mid=3000 -> Sell
	tr.onExecReport(domain.ExecReport{ClID: "CL-1-Y", Symbol: "ETHUSDT", Status: domain.Filled, FilledQty: 20, AvgPx: 2000})

	pos := tr.state.ByVenue["Y"]
	if pos.Qty != 0 {
		t.Errorf("expected qty=0, got %d", pos.Qty)
	}
	if pos.AvgCostPx != 0 {
		t.Errorf("expected avg_cost_px=0, got %d", pos.AvgCostPx)
	}
	if pos.RealizedPnL != 0 {
		t.Errorf("expected realized_pnl=0 for an equal opposite fill at the same price, got %d", pos.RealizedPnL)
	}
}

func TestVenueOfDerivesFromClIDSuffix(t *testing.T) {
	if got := venueOf("CL-12345-binance"); got != "binance" {
		t.Errorf("expected venue binance, got %s", got)
	}
	if got := venueOf("CL-12345"); got != "?" {
		t.Errorf("expected ? for a cl_id with no venue suffix, got %s", got)
	}
}
