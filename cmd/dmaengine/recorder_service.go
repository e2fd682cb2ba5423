package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/autovant/dma-engine/internal/config"
	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/recorder"
)

// runRecorderService tails cfg.MarketDataSubject on NATS and appends
// every tick to cfg.RecordFile as an Md Event, the NATS-subject-to-disk
// shape replay_service.go demonstrates for its own source material.
func runRecorderService(ctx context.Context, cfg *config.Config) error {
	log.Println("starting recorder service")
	if cfg.RecordFile == "" {
		return fmt.Errorf("RECORD_FILE must be set to run the recorder service")
	}

	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	rec, err := recorder.Open(cfg.RecordFile)
	if err != nil {
		return err
	}

	queue := recorder.NewQueue()
	sub, err := nc.Subscribe(cfg.MarketDataSubject, func(msg *nats.Msg) {
		var tick domain.MdTick
		if err := json.Unmarshal(msg.Data, &tick); err != nil {
			log.Printf("recorder service: malformed tick: %v", err)
			return
		}
		recorder.TrySend(queue, domain.NewMdEvent(tick))
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() { rec.Run(queue); close(done) }()

	<-ctx.Done()
	close(queue)
	<-done
	return nil
}
