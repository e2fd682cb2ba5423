// Command dmaengine dispatches to one of the five runnable services of
// the trading engine, selected by -service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/autovant/dma-engine/internal/config"
	"github.com/autovant/dma-engine/internal/engine"
	"github.com/autovant/dma-engine/internal/metrics"
)

func main() {
	service := flag.String("service", "", "Service to run (engine, feed, metrics, recorder, replay)")
	flag.Parse()

	if *service == "" {
		log.Fatal("specify a service to run: -service=engine|feed|metrics|recorder|replay")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("received shutdown signal")
		cancel()
	}()

	var runErr error
	switch *service {
	case "engine":
		runErr = runEngine(ctx, cfg)
	case "feed":
		runErr = runFeedService(ctx, cfg)
	case "metrics":
		runErr = runMetricsService(ctx, cfg)
	case "recorder":
		runErr = runRecorderService(ctx, cfg)
	case "replay":
		runErr = runReplayService(ctx, cfg)
	default:
		runErr = fmt.Errorf("unknown service %q: use engine, feed, metrics, recorder, or replay", *service)
	}
	if runErr != nil {
		log.Fatalf("%s service error: %v", *service, runErr)
	}
	log.Printf("%s service stopped", *service)
}

func runEngine(ctx context.Context, cfg *config.Config) error {
	log.Println("starting engine service")
	go metrics.Serve(fmt.Sprintf(":%d", cfg.MetricsPort))

	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	e.Run(ctx.Done())
	return nil
}
