// Package recorder implements the JSONL event recorder: an append-only
// file of tagged-variant Event lines, flushed on a 1-second timer and
// every 1000 events, with reopen-and-retry-once on write failure before
// the event is dropped.
package recorder

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/autovant/dma-engine/internal/domain"
)

// QueueCapacity is the recorder's input queue size. Sends onto it are
// best-effort and non-blocking: a full queue means events are dropped,
// never that the producing task stalls.
const QueueCapacity = 4096

// flushEvery is the event-count flush threshold.
const flushEvery = 1000

// Recorder owns the record file exclusively; the file handle belongs
// to the recorder task alone.
type Recorder struct {
	path string
	file *os.File
	enc  *json.Encoder
}

// Open creates or truncates the record file at path.
func Open(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Recorder{path: path, file: f, enc: json.NewEncoder(f)}, nil
}

// NewQueue allocates a recorder input channel of QueueCapacity.
func NewQueue() chan domain.Event {
	return make(chan domain.Event, QueueCapacity)
}

// TrySend offers ev to in without blocking; the event is silently
// dropped if the queue is full.
func TrySend(in chan<- domain.Event, ev domain.Event) {
	select {
	case in <- ev:
	default:
	}
}

// Run drains in, appending each Event as one JSON line, until in is
// closed. It flushes every flushEvery events and on every tick of a
// 1-second timer, and closes the file before returning.
func (r *Recorder) Run(in <-chan domain.Event) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	defer r.file.Close()

	unflushed := 0
	for {
		select {
		case ev, ok := <-in:
			if !ok {
				r.flush()
				return
			}
			if err := r.write(ev); err != nil {
				log.Printf("recorder: write failed, dropping event: %v", err)
				continue
			}
			unflushed++
			if unflushed >= flushEvery {
				r.flush()
				unflushed = 0
			}
		case <-ticker.C:
			r.flush()
			unflushed = 0
		}
	}
}

// write appends ev, reopening the file and retrying exactly once on
// failure before giving up.
func (r *Recorder) write(ev domain.Event) error {
	if err := r.enc.Encode(ev); err == nil {
		return nil
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	r.file.Close()
	r.file = f
	r.enc = json.NewEncoder(f)
	return r.enc.Encode(ev)
}

func (r *Recorder) flush() {
	if err := r.file.Sync(); err != nil {
		log.Printf("recorder: flush failed: %v", err)
	}
}
