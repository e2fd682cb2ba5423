package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/config"
	"github.com/autovant/dma-engine/internal/replay"
)

type replayCommand struct {
	Command   string `json:"command"`
	Timestamp string `json:"timestamp"`
}

// runReplayService replays cfg.ReplaySource back onto
// cfg.MarketDataSubject at cfg.ReplaySpeed, honoring pause/resume/seek
// messages on cfg.ReplayControlSubject, grounded on replay_service.go.
func runReplayService(ctx context.Context, cfg *config.Config) error {
	log.Println("starting replay service")
	if cfg.ReplaySource == "" {
		return fmt.Errorf("REPLAY_SOURCE must be set to run the replay service")
	}

	ticks, err := replay.LoadTicks(cfg.ReplaySource)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("replay: no ticks available for %s", cfg.ReplaySource)
	}

	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	control := make(chan replay.Command, 16)
	if cfg.ReplayControlSubject != "" {
		sub, err := nc.Subscribe(cfg.ReplayControlSubject, func(msg *nats.Msg) {
			var cmd replayCommand
			if err := json.Unmarshal(msg.Data, &cmd); err != nil {
				log.Printf("replay service: invalid control message: %v", err)
				return
			}
			parsed := replay.Command{Kind: replay.CommandKind(cmd.Command)}
			if cmd.Timestamp != "" {
				if ts, err := time.Parse(time.RFC3339, cmd.Timestamp); err == nil {
					parsed.Timestamp = ts
				} else {
					log.Printf("replay service: invalid seek timestamp: %v", err)
					return
				}
			}
			select {
			case control <- parsed:
			default:
				log.Printf("replay service: control channel saturated, dropping %s", cmd.Command)
			}
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()
	}

	b := bus.NewMDBus()
	player := replay.NewPlayer(ticks, b, cfg.ReplaySpeed)

	out := b.Subscribe("replay-service-publisher")
	go func() {
		for tick := range out.C {
			publishTick(nc, cfg.MarketDataSubject, tick)
		}
	}()

	player.Run(control, ctx.Done())
	return nil
}
