package feed

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/domain"
)

// ExchangeFeedConfig holds the per-symbol WS feed endpoint.
type ExchangeFeedConfig struct {
	Symbol string
	WSURL  string
}

type bookTickerFrame struct {
	BestBid string `json:"b"`
	BestAsk string `json:"a"`
}

// RunExchange connects to cfg.WSURL's per-symbol best-bid/best-ask
// topic and republishes onto b in tick-scale integers. A malformed URL
// is fatal for this task; any other connection or read failure triggers
// a reconnect with exponential backoff. Stops when stop is closed.
func RunExchange(b *bus.MDBus, cfg ExchangeFeedConfig, stop <-chan struct{}) {
	if _, err := url.Parse(cfg.WSURL); err != nil {
		log.Printf("feed: malformed exchange WS URL %q: %v", cfg.WSURL, err)
		return
	}

	attempt := 0
	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := consume(b, cfg, stop); err != nil {
			log.Printf("feed: %s exchange WS error: %v", cfg.Symbol, err)
			backoff := time.Duration(500*(1<<min(attempt, 6))) * time.Millisecond
			jitter := time.Duration(rand.Intn(250)) * time.Millisecond
			time.Sleep(backoff + jitter)
			attempt++
			continue
		}
		attempt = 0
	}
}

func consume(b *bus.MDBus, cfg ExchangeFeedConfig, stop <-chan struct{}) error {
	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		select {
		case <-stop:
			conn.Close()
		case <-closed:
		}
	}()
	defer close(closed)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		tick, ok := parseBookTicker(cfg.Symbol, msg)
		if !ok {
			continue
		}
		b.Publish(tick)
	}
}

// parseBookTicker parses a best-bid/best-ask text frame into a tick-scale
// MdTick, dropping frames where either side parses to ≤ 0.
func parseBookTicker(symbol string, msg []byte) (domain.MdTick, bool) {
	var frame bookTickerFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return domain.MdTick{}, false
	}
	bid, err := decimal.NewFromString(frame.BestBid)
	if err != nil {
		return domain.MdTick{}, false
	}
	ask, err := decimal.NewFromString(frame.BestAsk)
	if err != nil {
		return domain.MdTick{}, false
	}
	bidTicks := bid.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	askTicks := ask.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if bidTicks <= 0 || askTicks <= 0 {
		return domain.MdTick{}, false
	}
	return domain.MdTick{
		TsNs:    time.Now().UnixNano(),
		Symbol:  symbol,
		BestBid: bidTicks,
		BestAsk: askTicks,
	}, true
}
