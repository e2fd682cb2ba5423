package gateway

import (
	"time"

	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/metrics"
)

// SimGateway is a simulated venue: it acks immediately, waits a fixed
// fill delay, then reports a full fill at the order's own price. It
// never rejects.
type SimGateway struct {
	Venue     string
	FillDelay time.Duration
}

// NewSimGateway builds a simulated gateway for venue with the given
// fill delay.
func NewSimGateway(venue string, fillDelay time.Duration) *SimGateway {
	return &SimGateway{Venue: venue, FillDelay: fillDelay}
}

func (g *SimGateway) Run(in <-chan domain.VenueOrder, out chan<- domain.ExecReport) {
	for vo := range in {
		ack := domain.ExecReport{
			ClID:   vo.Order.ClID,
			Symbol: vo.Order.Symbol,
			Status: domain.Ack,
			TsNs:   time.Now().UnixNano(),
		}
		metrics.ExecReportsTotal.WithLabelValues(ack.Status.String(), g.Venue).Inc()
		out <- ack

		go g.fill(vo, out)
	}
}

func (g *SimGateway) fill(vo domain.VenueOrder, out chan<- domain.ExecReport) {
	time.Sleep(g.FillDelay)
	filled := domain.ExecReport{
		ClID:      vo.Order.ClID,
		Symbol:    vo.Order.Symbol,
		Status:    domain.Filled,
		FilledQty: vo.Order.Qty,
		AvgPx:     vo.Order.Px,
		TsNs:      time.Now().UnixNano(),
	}
	metrics.ExecReportsTotal.WithLabelValues(filled.Status.String(), g.Venue).Inc()
	out <- filled
}
