package domain

// RejectKind identifies why the risk gate refused a signal. Kinds, not
// error strings: the gate logs and counts each rejection by kind and
// never retries it; no exec report is emitted for a risk rejection.
type RejectKind string

const (
	RejectNotional  RejectKind = "Notional"
	RejectPriceBand RejectKind = "PriceBand"
	RejectThrottle  RejectKind = "Throttle"
)
