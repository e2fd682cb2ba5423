// Package feed implements the market-data feed: one task per (variant,
// symbol), publishing onto the shared MD broadcast bus.
package feed

import (
	"math/rand"
	"time"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
)

const (
	mockTickInterval = 5 * time.Millisecond
	mockInitialBid   = 10000
	mockMinBid       = 5000
)

// RunMock drives a per-symbol integer random walk onto b: every tick, a
// uniform [-3, +3] step is added to px_bid, clamped to mockMinBid, and a
// {best_bid=px_bid, best_ask=px_bid+1} tick is published. Stops when
// stop is closed.
func RunMock(b *bus.MDBus, symbol string, stop <-chan struct{}) {
	pxBid := int64(mockInitialBid)
	ticker := time.NewTicker(mockTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			step := int64(rand.Intn(7)) - 3
			pxBid += step
			if pxBid < mockMinBid {
				pxBid = mockMinBid
			}
			b.Publish(domain.MdTick{
				TsNs:    time.Now().UnixNano(),
				Symbol:  symbol,
				BestBid: pxBid,
				BestAsk: pxBid + 1,
			})
		}
	}
}
