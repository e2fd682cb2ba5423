// Package fanout implements the execution-report fan-out task: a
// dedicated task that clones each ExecReport from the central exec
// queue into the post-trade channel and the matching per-symbol
// position channel, preserving each consumer's backpressure
// independently.
package fanout

import (
	"log"

	"github.com/autovant/dma-engine/internal/domain"
)

// Dispatcher routes ExecReports by symbol. PositionChans must be
// populated before Run starts; it is read-only afterwards.
type Dispatcher struct {
	PostTrade     chan<- domain.ExecReport
	PositionChans map[string]chan<- domain.ExecReport
	OnUnknown     func(symbol string, report domain.ExecReport)
}

// Run reads ExecReports from in and, for each one, sends a copy to
// PostTrade and a copy to the position channel for its symbol. Both
// sends block (await) so that a slow downstream never causes a report
// to be dropped. An ExecReport for a symbol with no registered position
// channel is an inconsistency: logged and dropped, never fatal.
func (d *Dispatcher) Run(in <-chan domain.ExecReport) {
	for report := range in {
		d.PostTrade <- report

		ch, ok := d.PositionChans[report.Symbol]
		if !ok {
			if d.OnUnknown != nil {
				d.OnUnknown(report.Symbol, report)
			} else {
				log.Printf("debug: fanout: exec report for unknown symbol %q dropped", report.Symbol)
			}
			continue
		}
		ch <- report
	}
}
