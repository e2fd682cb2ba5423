package engine

import "github.com/autovant/dma-engine/internal/router"

// defaultSimVenues is the fixed three-venue universe used in mock venue
// mode (liquidity scores 70/50/90 split across top_n=2).
var defaultSimVenues = []router.VenueConfig{
	{Name: "A", FeeBps: 5, EstLatencyMs: 10, LiqScore: 70},
	{Name: "B", FeeBps: 5, EstLatencyMs: 8, LiqScore: 50},
	{Name: "C", FeeBps: 4, EstLatencyMs: 12, LiqScore: 90},
}

const (
	defaultTopN          = 2
	defaultMinChildQty   = 2
	defaultInvTarget     = 0
	defaultInvBiasWeight = 5
)

// exchangeVenues is the single-venue universe used in binance_sandbox
// and binance_mainnet modes: there is exactly one real venue to route
// to, so top_n collapses to 1.
func exchangeVenues(venueName string) []router.VenueConfig {
	return []router.VenueConfig{
		{Name: venueName, FeeBps: 4, EstLatencyMs: 20, LiqScore: 100},
	}
}
