// Package gateway implements the venue gateway state machines: a
// simulated fill engine and a REST+user-data-stream exchange gateway,
// both consuming VenueOrders and emitting ExecReports onto a shared
// central queue.
package gateway

import "github.com/autovant/dma-engine/internal/domain"

// Gateway consumes VenueOrders and emits ExecReports to out until in is
// closed.
type Gateway interface {
	Run(in <-chan domain.VenueOrder, out chan<- domain.ExecReport)
}
