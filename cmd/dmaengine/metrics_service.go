package main

import (
	"context"
	"fmt"

	"github.com/autovant/dma-engine/internal/config"
	"github.com/autovant/dma-engine/internal/metrics"
)

// runMetricsService runs the Prometheus exposition endpoint as a
// standalone sidecar, grounded on ops_api.go's metrics server goroutine.
func runMetricsService(ctx context.Context, cfg *config.Config) error {
	go metrics.Serve(fmt.Sprintf(":%d", cfg.MetricsPort))
	<-ctx.Done()
	return nil
}
