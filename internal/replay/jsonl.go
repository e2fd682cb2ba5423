package replay

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/autovant/dma-engine/internal/domain"
)

// ReadJSONL reads a recorder-produced JSONL file and returns the MdTicks
// carried by its Md-variant events, in file order.
func ReadJSONL(path string) ([]domain.MdTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ticks []domain.MdTick
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev domain.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		if ev.Kind == domain.EventMd {
			ticks = append(ticks, ev.Md)
		}
	}
	return ticks, scanner.Err()
}

// ticksFromBars converts OHLC bars into tick-scale MdTicks using the
// same spread-synthesis idiom as the source bars.
func ticksFromBars(bars []bar) []domain.MdTick {
	ticks := make([]domain.MdTick, len(bars))
	for i, b := range bars {
		ticks[i] = synthesizeTick(b)
	}
	return ticks
}
