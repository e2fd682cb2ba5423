package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/config"
	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/feed"
)

// runFeedService runs the market-data feed as its own deployable,
// publishing every tick onto cfg.MarketDataSubject, matching
// feed_handler.go's "generate then nc.Publish" shape.
func runFeedService(ctx context.Context, cfg *config.Config) error {
	log.Println("starting feed service")
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	b := bus.NewMDBus()
	stop := ctx.Done()

	for _, symbol := range cfg.Symbols {
		symbol := symbol
		if cfg.FeedMode == config.ModeMock {
			go feed.RunMock(b, symbol, stop)
		} else {
			go feed.RunExchange(b, feed.ExchangeFeedConfig{Symbol: symbol, WSURL: cfg.BinanceWS}, stop)
		}
	}

	sub := b.Subscribe("feed-service-publisher")
	for {
		select {
		case <-ctx.Done():
			return nil
		case tick, ok := <-sub.C:
			if !ok {
				return nil
			}
			publishTick(nc, cfg.MarketDataSubject, tick)
		}
	}
}

func publishTick(nc *nats.Conn, subject string, tick domain.MdTick) {
	payload, err := json.Marshal(tick)
	if err != nil {
		log.Printf("feed service: marshal failed: %v", err)
		return
	}
	if err := nc.Publish(subject, payload); err != nil {
		log.Printf("feed service: publish failed: %v", err)
	}
}
