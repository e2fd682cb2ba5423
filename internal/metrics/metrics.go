// Package metrics exposes the engine's Prometheus-format metrics as
// package-level vectors registered in an init(). This registry is
// process-wide and write-only on the hot path: no locks beyond what
// client_golang's vectors already impose.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dma_ticks_total",
			Help: "Total market-data ticks observed, by symbol",
		},
		[]string{"symbol"},
	)

	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dma_signals_total",
			Help: "Total signals emitted by strategies, by strategy and symbol",
		},
		[]string{"strategy", "symbol"},
	)

	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dma_orders_total",
			Help: "Total orders accepted by the risk gate, by symbol",
		},
		[]string{"symbol"},
	)

	RejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dma_risk_rejects_total",
			Help: "Total signals rejected by the risk gate, by kind",
		},
		[]string{"kind"},
	)

	ExecReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dma_exec_reports_total",
			Help: "Total execution reports received, by status and venue",
		},
		[]string{"status", "venue"},
	)

	InventoryGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dma_inventory_qty",
			Help: "Current signed position quantity, by symbol and venue",
		},
		[]string{"symbol", "venue"},
	)

	RealizedPnLGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dma_realized_pnl",
			Help: "Aggregate realized PnL in tick-scale units, by symbol",
		},
		[]string{"symbol"},
	)

	UnrealizedPnLGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dma_unrealized_pnl",
			Help: "Aggregate unrealized PnL in tick-scale units, by symbol",
		},
		[]string{"symbol"},
	)

	RouterScoreGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dma_router_venue_score",
			Help: "Most recent router score per venue",
		},
		[]string{"venue"},
	)

	ConfigGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dma_config_value",
			Help: "Reflection of numeric risk configuration at startup",
		},
		[]string{"key"},
	)

	MdLagTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dma_md_bus_lag_total",
			Help: "Total times a subscriber observed a lagged market-data read",
		},
		[]string{"consumer"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		SignalsTotal,
		OrdersTotal,
		RejectsTotal,
		ExecReportsTotal,
		InventoryGauge,
		RealizedPnLGauge,
		UnrealizedPnLGauge,
		RouterScoreGauge,
		ConfigGauge,
		MdLagTotal,
	)
}

// Serve starts the Prometheus exposition endpoint on addr. It blocks
// until the listener fails and is meant to be run in its own goroutine,
// matching execution_service.go's metrics-server goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", promhttp.Handler())
	log.Printf("metrics exposed on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics server error: %v", err)
	}
}
