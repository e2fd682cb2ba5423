// Package engine wires together every pipeline stage into the
// long-running goroutines of the "engine" service: feeds, strategy
// workers, risk gate, router, venue gateways, positions, and the
// exec-report fan-out with its post-trade logger.
package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/autovant/dma-engine/internal/bus"
	"github.com/autovant/dma-engine/internal/config"
	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/fanout"
	"github.com/autovant/dma-engine/internal/feed"
	"github.com/autovant/dma-engine/internal/gateway"
	"github.com/autovant/dma-engine/internal/metrics"
	"github.com/autovant/dma-engine/internal/positions"
	"github.com/autovant/dma-engine/internal/posttrade"
	"github.com/autovant/dma-engine/internal/recorder"
	"github.com/autovant/dma-engine/internal/report"
	"github.com/autovant/dma-engine/internal/risk"
	"github.com/autovant/dma-engine/internal/router"
	"github.com/autovant/dma-engine/internal/strategy"
)

// Channel capacities for the in-process pipeline queues.
const (
	signalQueueCap    = 2048
	orderQueueCap     = 2048
	venueQueueCap     = 1024
	execQueueCap      = 4096
	postTradeQueueCap = 4096
	positionQueueCap  = 2048
)

const simFillDelay = 15 * time.Millisecond
const exchangeMinOrderGap = 50 * time.Millisecond

// Engine owns every long-lived task of a single "engine" process run.
type Engine struct {
	cfg *config.Config
	rec *recorder.Recorder
	rq  chan domain.Event
}

// New builds an engine from cfg. If cfg.RecordFile is set, it opens the
// recorder eagerly so a failure to open is fatal at startup rather than
// silently dropping every event.
func New(cfg *config.Config) (*Engine, error) {
	e := &Engine{cfg: cfg}
	if cfg.RecordFile != "" {
		rec, err := recorder.Open(cfg.RecordFile)
		if err != nil {
			return nil, fmt.Errorf("engine: opening record file: %w", err)
		}
		e.rec = rec
		e.rq = recorder.NewQueue()
	}
	reflectConfig(cfg)
	return e, nil
}

func reflectConfig(cfg *config.Config) {
	metrics.ConfigGauge.WithLabelValues("max_notional").Set(float64(cfg.MaxNotional))
	metrics.ConfigGauge.WithLabelValues("px_min").Set(float64(cfg.PxMin))
	metrics.ConfigGauge.WithLabelValues("px_max").Set(float64(cfg.PxMax))
	metrics.ConfigGauge.WithLabelValues("max_qps").Set(float64(cfg.MaxQPS))
}

// Run starts every task and blocks until stop is closed. It never
// returns an error: task-level failures are logged and isolated to
// their owning task.
func (e *Engine) Run(stop <-chan struct{}) {
	if e.rec != nil {
		go e.rec.Run(e.rq)
	}

	venues := defaultSimVenues
	topN := defaultTopN
	if e.cfg.VenueMode != config.ModeMock {
		venues = exchangeVenues(string(e.cfg.VenueMode))
		topN = 1
	}

	execQueue := make(chan domain.ExecReport, execQueueCap)
	postTradeQueue := make(chan domain.ExecReport, postTradeQueueCap)
	positionQueues := make(map[string]chan domain.ExecReport, len(e.cfg.Symbols))
	positionChansForFanout := make(map[string]chan<- domain.ExecReport, len(e.cfg.Symbols))

	for _, symbol := range e.cfg.Symbols {
		pq := make(chan domain.ExecReport, positionQueueCap)
		positionQueues[symbol] = pq
		positionChansForFanout[symbol] = pq
	}

	dispatcher := &fanout.Dispatcher{PostTrade: postTradeQueue, PositionChans: positionChansForFanout}
	go dispatcher.Run(execQueue)
	go posttrade.Run(postTradeQueue)

	venueQueues := make(map[string]chan domain.VenueOrder, len(venues))
	for _, v := range venues {
		vq := make(chan domain.VenueOrder, venueQueueCap)
		venueQueues[v.Name] = vq
		go e.runGateway(v.Name, vq, execQueue)
	}

	invSnaps := make(map[string]*bus.Latest[*domain.InvSnapshot], len(e.cfg.Symbols))
	for _, symbol := range e.cfg.Symbols {
		invSnaps[symbol] = e.runSymbol(symbol, venues, topN, venueQueues, positionQueues[symbol], stop)
	}

	rep := report.New(invSnaps, report.DefaultInterval, e.rq)
	go rep.Run(stop)

	<-stop
}

// runSymbol starts the feed, strategy workers, risk gate, and router for
// one symbol, plus its position tracker, and returns its inventory
// snapshot channel for the aggregate reporter.
func (e *Engine) runSymbol(symbol string, venues []router.VenueConfig, topN int, venueQueues map[string]chan domain.VenueOrder, positionIn chan domain.ExecReport, stop <-chan struct{}) *bus.Latest[*domain.InvSnapshot] {
	mdBus := bus.NewMDBus()
	invSnap := bus.NewLatest[*domain.InvSnapshot]()

	e.startFeed(mdBus, symbol, stop)
	e.tapMd(mdBus, symbol, stop)

	rawSig := make(chan domain.Signal, signalQueueCap)
	sigQueue := make(chan domain.Signal, signalQueueCap)
	go e.relaySignals(rawSig, sigQueue)

	for _, name := range e.cfg.Strategies {
		for w := 0; w < e.cfg.StrategyWorkers; w++ {
			s, err := newStrategy(name)
			if err != nil {
				log.Printf("engine: %v", err)
				continue
			}
			sub := mdBus.Subscribe(fmt.Sprintf("%s-%s-%d", symbol, name, w))
			go strategy.Run(s, sub.C, rawSig)
		}
	}

	rawOrd := make(chan domain.Order, orderQueueCap)
	ordQueue := make(chan domain.Order, orderQueueCap)
	gate := risk.NewGate(risk.Limits{
		MaxNotional: e.cfg.MaxNotional,
		PxMin:       e.cfg.PxMin,
		PxMax:       e.cfg.PxMax,
		MaxQPS:      e.cfg.MaxQPS,
	})
	go gate.Run(sigQueue, rawOrd)
	go e.relayOrders(rawOrd, ordQueue)

	r := router.New(router.Config{
		Venues:        venues,
		TopN:          topN,
		MinChildQty:   defaultMinChildQty,
		InvTarget:     defaultInvTarget,
		InvBiasWeight: defaultInvBiasWeight,
	}, invSnap)
	go e.runRouter(r, ordQueue, venueQueues)

	tracker := positions.NewTracker(symbol, invSnap)
	posMdSub := mdBus.Subscribe(symbol + "-positions")
	go tracker.Run(posMdSub.C, positionIn)

	return invSnap
}

func (e *Engine) runRouter(r *router.Router, in <-chan domain.Order, venueQueues map[string]chan domain.VenueOrder) {
	for order := range in {
		for _, child := range r.Route(order) {
			vq, ok := venueQueues[child.Venue]
			if !ok {
				log.Printf("router: no queue for venue %q, dropping child order", child.Venue)
				continue
			}
			vq <- child
		}
	}
}

func (e *Engine) startFeed(b *bus.MDBus, symbol string, stop <-chan struct{}) {
	switch e.cfg.FeedMode {
	case config.ModeMock:
		go feed.RunMock(b, symbol, stop)
	default:
		go feed.RunExchange(b, feed.ExchangeFeedConfig{Symbol: symbol, WSURL: e.cfg.BinanceWS}, stop)
	}
}

func (e *Engine) runGateway(venue string, in <-chan domain.VenueOrder, out chan<- domain.ExecReport) {
	rawOut := make(chan domain.ExecReport, execQueueCap)
	go e.relayExecs(rawOut, out)

	var gw gateway.Gateway
	if e.cfg.VenueMode == config.ModeMock {
		gw = gateway.NewSimGateway(venue, simFillDelay)
	} else {
		egw := gateway.NewExchangeGateway(gateway.ExchangeConfig{
			Venue:       venue,
			RestBaseURL: e.cfg.BinanceRest,
			WSBaseURL:   e.cfg.BinanceWS,
			APIKey:      e.cfg.BinanceAPIKey,
			APISecret:   e.cfg.BinanceAPISecret,
			RecvWindow:  e.cfg.BinanceRecvWindow,
			MinOrderGap: exchangeMinOrderGap,
		})
		if err := egw.Start(rawOut); err != nil {
			log.Printf("engine: exchange gateway %s: %v", venue, err)
			return
		}
		gw = egw
	}
	gw.Run(in, rawOut)
}

// tapMd subscribes a recorder-only consumer of symbol's MD bus when
// recording is enabled; it never affects the strategies' own subscriptions.
func (e *Engine) tapMd(b *bus.MDBus, symbol string, stop <-chan struct{}) {
	if e.rq == nil {
		return
	}
	sub := b.Subscribe(symbol + "-recorder")
	go func() {
		for {
			select {
			case <-stop:
				sub.Cancel()
				return
			case tick, ok := <-sub.C:
				if !ok {
					return
				}
				recorder.TrySend(e.rq, domain.NewMdEvent(tick))
			}
		}
	}()
}

func (e *Engine) relaySignals(in <-chan domain.Signal, out chan<- domain.Signal) {
	for sig := range in {
		if e.rq != nil {
			recorder.TrySend(e.rq, domain.NewSigEvent(sig))
		}
		out <- sig
	}
}

func (e *Engine) relayOrders(in <-chan domain.Order, out chan<- domain.Order) {
	for order := range in {
		if e.rq != nil {
			recorder.TrySend(e.rq, domain.NewOrdEvent(order))
		}
		out <- order
	}
}

func (e *Engine) relayExecs(in <-chan domain.ExecReport, out chan<- domain.ExecReport) {
	for report := range in {
		if e.rq != nil {
			recorder.TrySend(e.rq, domain.NewExecEvent(report))
		}
		out <- report
	}
}

func newStrategy(name string) (strategy.Strategy, error) {
	switch name {
	case "mean_reversion":
		return strategy.NewMeanReversion(64, 3), nil
	case "ma_crossover":
		return strategy.NewMACrossover(16, 64, 2, 16), nil
	case "vol_breakout":
		return strategy.NewVolBreakout(100, 5, 20), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
