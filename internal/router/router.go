// Package router implements the smart-order router: score venues by a
// base liquidity/fee/latency formula biased by live inventory, then
// split the order's quantity across the top_n venues weighted by
// liquidity, deriving each per-venue number from a small venue config
// struct.
package router

import (
	"log"
	"sort"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/metrics"
)

// VenueConfig is the static description of one routable venue.
type VenueConfig struct {
	Name         string
	FeeBps       int64
	EstLatencyMs int64
	LiqScore     int64
}

// Config parametrizes the router.
type Config struct {
	Venues        []VenueConfig
	TopN          int
	MinChildQty   int64
	InvTarget     int64
	InvBiasWeight int64
}

// Router scores venues and splits orders into child VenueOrders.
type Router struct {
	cfg   Config
	invSnap *bus.Latest[*domain.InvSnapshot]
}

// New builds a router against the given config and inventory snapshot
// channel (subscribed for the router's primary symbol).
func New(cfg Config, invSnap *bus.Latest[*domain.InvSnapshot]) *Router {
	return &Router{cfg: cfg, invSnap: invSnap}
}

type scoredVenue struct {
	cfg   VenueConfig
	score int64
}

func (r *Router) inventoryAt(venue string) int64 {
	snap, ok := r.invSnap.Get()
	if !ok || snap == nil || snap.State == nil {
		return 0
	}
	pos, ok := snap.State.ByVenue[venue]
	if !ok {
		return 0
	}
	return pos.Qty
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// score computes the base liquidity/fee/latency score plus inventory
// bias for one venue at the given order price.
func (r *Router) score(v VenueConfig, px int64) int64 {
	base := v.LiqScore - (v.FeeBps*px)/10_000 - v.EstLatencyMs
	qty := r.inventoryAt(v.Name)
	bias := -sign(qty) * r.cfg.InvBiasWeight
	return base + bias
}

// Route scores venues for order, selects the top_n, splits the parent
// quantity by liquidity weight, and returns the resulting child orders
// in deterministic ascending-score order (weakest selected venue first,
// the venue that absorbs the remainder last). The sum of returned child
// quantities equals order.Qty whenever every computed share is > 0.
func (r *Router) Route(order domain.Order) []domain.VenueOrder {
	scored := make([]scoredVenue, 0, len(r.cfg.Venues))
	for _, v := range r.cfg.Venues {
		s := r.score(v, order.Px)
		scored = append(scored, scoredVenue{cfg: v, score: s})
		metrics.RouterScoreGauge.WithLabelValues(v.Name).Set(float64(s))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].cfg.Name < scored[j].cfg.Name
	})

	topN := r.cfg.TopN
	if topN > len(scored) {
		topN = len(scored)
	}
	selected := scored[:topN]

	var totalLiq int64
	for _, v := range selected {
		totalLiq += v.cfg.LiqScore
	}
	if totalLiq <= 0 {
		log.Printf("router: no positive liquidity among selected venues for order %s", order.ClID)
		return nil
	}

	// The remainder of the quantity split goes to the best-scoring
	// selected venue, not the worst: iterate weakest-first so the
	// strongest venue absorbs the rounding leftover.
	splitOrder := make([]scoredVenue, len(selected))
	for i, v := range selected {
		splitOrder[len(selected)-1-i] = v
	}

	children := make([]domain.VenueOrder, 0, len(splitOrder))
	var allocated int64
	for i, v := range splitOrder {
		var childQty int64
		if i == len(selected)-1 {
			childQty = order.Qty - allocated
		} else {
			share := (order.Qty * v.cfg.LiqScore) / totalLiq
			if share < r.cfg.MinChildQty {
				share = r.cfg.MinChildQty
			}
			childQty = share
		}
		if childQty <= 0 {
			continue
		}
		allocated += childQty
		child := order
		child.ClID = domain.ChildClID(order.ClID, v.cfg.Name)
		child.Qty = childQty
		children = append(children, domain.VenueOrder{Venue: v.cfg.Name, Order: child})
	}
	return children
}
