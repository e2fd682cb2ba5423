// Package domain holds the core entities of the trading pipeline. All
// prices and quantities are integers in tick scale (two decimal places);
// conversion to a venue's floating-point representation happens only at
// the gateway boundary.
package domain

import "fmt"

// Side is the direction of a signal, order, or fill.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// Sign returns +1 for Buy, -1 for Sell.
func (s Side) Sign() int64 {
	if s == Buy {
		return 1
	}
	return -1
}

// MdTick is an immutable market-data snapshot for one symbol.
type MdTick struct {
	TsNs    int64  `json:"ts_ns"`
	Symbol  string `json:"symbol"`
	BestBid int64  `json:"best_bid"`
	BestAsk int64  `json:"best_ask"`
}

// Mid returns (best_bid+best_ask)/2 using integer division.
func (t MdTick) Mid() int64 {
	return (t.BestBid + t.BestAsk) / 2
}

// Signal is a trade intent produced by a strategy, before any risk check.
type Signal struct {
	TsNs   int64  `json:"ts_ns"`
	Symbol string `json:"symbol"`
	Side   Side   `json:"side"`
	Px     int64  `json:"px"`
	Qty    int64  `json:"qty"`
}

// Order is a Signal promoted by risk, carrying a process-lifetime-unique id.
type Order struct {
	ClID   string `json:"cl_id"`
	TsNs   int64  `json:"ts_ns"`
	Symbol string `json:"symbol"`
	Side   Side   `json:"side"`
	Px     int64  `json:"px"`
	Qty    int64  `json:"qty"`
}

// VenueOrder is a child order destined for a specific venue.
type VenueOrder struct {
	Venue string `json:"venue"`
	Order Order  `json:"order"`
}

// ChildClID derives the child order's client id from its parent.
func ChildClID(parentClID, venue string) string {
	return fmt.Sprintf("%s-%s", parentClID, venue)
}

// ExecStatus is the lifecycle state of a client order id.
type ExecStatus int

const (
	Ack ExecStatus = iota
	PartialFill
	Filled
	Rejected
)

func (s ExecStatus) String() string {
	switch s {
	case Ack:
		return "Ack"
	case PartialFill:
		return "PartialFill"
	case Filled:
		return "Filled"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// ExecReport is a status update for a client order id.
type ExecReport struct {
	ClID       string     `json:"cl_id"`
	Symbol     string     `json:"symbol"`
	Status     ExecStatus `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	FilledQty  int64      `json:"filled_qty"`
	AvgPx      int64      `json:"avg_px"`
	TsNs       int64      `json:"ts_ns"`
}

// VenuePosition is the per-(symbol,venue) position state.
type VenuePosition struct {
	Qty         int64 `json:"qty"`
	AvgCostPx   int64 `json:"avg_cost_px"`
	RealizedPnL int64 `json:"realized_pnl"`
}

// SymbolState aggregates position and PnL for one symbol across venues.
type SymbolState struct {
	Symbol        string                    `json:"symbol"`
	LastMid       int64                     `json:"last_mid"`
	TotalQty      int64                     `json:"total_qty"`
	RealizedPnL   int64                     `json:"realized_pnl"`
	UnrealizedPnL int64                     `json:"unrealized_pnl"`
	ByVenue       map[string]*VenuePosition `json:"by_venue"`
}

// NewSymbolState creates an empty SymbolState for symbol.
func NewSymbolState(symbol string) *SymbolState {
	return &SymbolState{
		Symbol:  symbol,
		ByVenue: make(map[string]*VenuePosition),
	}
}

// Clone returns a deep copy, safe to publish on the inventory snapshot
// channel without aliasing the owning task's mutable state.
func (s *SymbolState) Clone() *SymbolState {
	cp := &SymbolState{
		Symbol:        s.Symbol,
		LastMid:       s.LastMid,
		TotalQty:      s.TotalQty,
		RealizedPnL:   s.RealizedPnL,
		UnrealizedPnL: s.UnrealizedPnL,
		ByVenue:       make(map[string]*VenuePosition, len(s.ByVenue)),
	}
	for v, p := range s.ByVenue {
		cp2 := *p
		cp.ByVenue[v] = &cp2
	}
	return cp
}

// InvSnapshot is the most recently published SymbolState for a symbol.
type InvSnapshot struct {
	TsNs   int64        `json:"ts_ns"`
	Symbol string       `json:"symbol"`
	State  *SymbolState `json:"state"`
}
