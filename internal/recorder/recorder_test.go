package recorder

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/autovant/dma-engine/internal/domain"
)

func TestRunAppendsOneJSONLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	rec, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	in := make(chan domain.Event, 4)
	in <- domain.NewMdEvent(domain.MdTick{TsNs: 1, Symbol: "BTCUSDT", BestBid: 100, BestAsk: 101})
	in <- domain.NewNoteEvent("hello")
	close(in)

	done := make(chan struct{})
	go func() { rec.Run(in); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after its input channel was closed")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopening recorded file failed: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 recorded lines, got %d", len(lines))
	}

	var first domain.Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line did not decode: %v", err)
	}
	if first.Kind != domain.EventMd || first.Md.Symbol != "BTCUSDT" {
		t.Errorf("unexpected first event: %+v", first)
	}

	var second domain.Event
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line did not decode: %v", err)
	}
	if second.Kind != domain.EventNote || second.Note != "hello" {
		t.Errorf("unexpected second event: %+v", second)
	}
}

func TestTrySendDropsOnFullQueueWithoutBlocking(t *testing.T) {
	in := make(chan domain.Event, 1)
	in <- domain.NewNoteEvent("first")

	done := make(chan struct{})
	go func() {
		TrySend(in, domain.NewNoteEvent("second"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TrySend blocked on a full queue instead of dropping")
	}

	if len(in) != 1 {
		t.Fatalf("expected queue to still hold exactly 1 event, got %d", len(in))
	}
}
