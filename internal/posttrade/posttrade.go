// Package posttrade implements the post-trade logger: a leaf consumer
// of ExecReports that only logs, never back-pressures the pipeline, and
// never blocks anything upstream of it.
package posttrade

import (
	"log"

	"github.com/autovant/dma-engine/internal/domain"
)

// Run logs a human-readable line for every ExecReport on in, until the
// channel is closed.
func Run(in <-chan domain.ExecReport) {
	for report := range in {
		logReport(report)
	}
}

func logReport(r domain.ExecReport) {
	switch r.Status {
	case domain.Ack:
		log.Printf("post-trade: %s %s ack", r.Symbol, r.ClID)
	case domain.PartialFill:
		log.Printf("post-trade: %s %s partial fill qty=%d avg_px=%d", r.Symbol, r.ClID, r.FilledQty, r.AvgPx)
	case domain.Filled:
		log.Printf("post-trade: %s %s filled qty=%d avg_px=%d", r.Symbol, r.ClID, r.FilledQty, r.AvgPx)
	case domain.Rejected:
		log.Printf("post-trade: %s %s rejected: %s", r.Symbol, r.ClID, r.Reason)
	default:
		log.Printf("post-trade: %s %s unknown status %v", r.Symbol, r.ClID, r.Status)
	}
}
