package posttrade

import (
	"testing"
	"time"

	"github.com/autovant/dma-engine/internal/domain"
)

func TestRunDrainsAllStatusesAndReturnsOnClose(t *testing.T) {
	in := make(chan domain.ExecReport, 4)
	in <- domain.ExecReport{Symbol: "BTCUSDT", ClID: "CL-1-sim", Status: domain.Ack}
	in <- domain.ExecReport{Symbol: "BTCUSDT", ClID: "CL-1-sim", Status: domain.PartialFill, FilledQty: 3, AvgPx: 10000}
	in <- domain.ExecReport{Symbol: "BTCUSDT", ClID: "CL-1-sim", Status: domain.Filled, FilledQty: 10, AvgPx: 10000}
	in <- domain.ExecReport{Symbol: "BTCUSDT", ClID: "CL-1-sim", Status: domain.Rejected, Reason: "bad request"}
	close(in)

	done := make(chan struct{})
	go func() { Run(in); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after its input channel was closed")
	}
}
