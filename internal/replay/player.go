package replay

import (
	"log"
	"time"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
)

// CommandKind is a replay control message, carried over the
// replay.control NATS subject.
type CommandKind string

const (
	CommandPause  CommandKind = "pause"
	CommandResume CommandKind = "resume"
	CommandSeek   CommandKind = "seek"
)

// Command is one replay control message.
type Command struct {
	Kind      CommandKind
	Timestamp time.Time
}

// Player replays a fixed sequence of MdTicks onto an MDBus at a
// configurable speed, honoring pause/resume/seek commands.
type Player struct {
	ticks []domain.MdTick
	bus   *bus.MDBus
	speed int
}

// NewPlayer builds a player over ticks (must already be time-ordered),
// publishing at speed ticks-per-second-of-wall-clock multiplier. speed
// <= 0 defaults to 1x.
func NewPlayer(ticks []domain.MdTick, b *bus.MDBus, speed int) *Player {
	if speed <= 0 {
		speed = 1
	}
	return &Player{ticks: ticks, bus: b, speed: speed}
}

// Run drives playback until the ticks are exhausted or stop is closed.
// A closed control channel is ignored and playback continues.
func (p *Player) Run(control <-chan Command, stop <-chan struct{}) {
	if len(p.ticks) == 0 {
		return
	}
	ticker := time.NewTicker(time.Second / time.Duration(p.speed))
	defer ticker.Stop()

	paused := false
	index := 0

	for index < len(p.ticks) {
		select {
		case <-stop:
			return
		case cmd, ok := <-control:
			if !ok {
				control = nil
				continue
			}
			switch cmd.Kind {
			case CommandPause:
				paused = true
			case CommandResume:
				paused = false
			case CommandSeek:
				index = seekIndex(p.ticks, cmd.Timestamp)
			default:
				log.Printf("replay: unknown command %q", cmd.Kind)
			}
		case <-ticker.C:
			if paused {
				continue
			}
			p.bus.Publish(p.ticks[index])
			index++
		}
	}
}

// seekIndex returns the index of the first tick at or after target, or
// the last tick if target is after every tick.
func seekIndex(ticks []domain.MdTick, target time.Time) int {
	targetNs := target.UnixNano()
	for i, tick := range ticks {
		if tick.TsNs >= targetNs {
			return i
		}
	}
	if len(ticks) == 0 {
		return 0
	}
	return len(ticks) - 1
}
