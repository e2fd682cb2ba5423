// Package config loads the engine's configuration from the environment
// once at startup, the way the ops API's Config and the polymarket-mm
// bot's config.Load bind an external source into a flat struct.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Mode selects how a feed or venue gateway talks to the outside world.
type Mode string

const (
	ModeMock           Mode = "mock"
	ModeBinanceSandbox Mode = "binance_sandbox"
	ModeBinanceMainnet Mode = "binance_mainnet"
)

// Config is the full environment-sourced configuration table of the
// engine. JSON tags exist so an ops endpoint can reflect it back.
type Config struct {
	Symbols    []string `json:"symbols"`
	FeedMode   Mode     `json:"feed_mode"`
	VenueMode  Mode     `json:"venue_mode"`
	BinanceWS  string   `json:"binance_ws_url"`
	BinanceRest string  `json:"binance_rest_url"`

	Strategies      []string `json:"strategies"`
	StrategyWorkers int      `json:"strategy_workers"`

	MaxNotional int64 `json:"max_notional"`
	PxMin       int64 `json:"px_min"`
	PxMax       int64 `json:"px_max"`
	MaxQPS      int64 `json:"max_qps"`

	MetricsPort int    `json:"metrics_port"`
	RecordFile  string `json:"record_file"`

	BinanceAPIKey     string `json:"-"`
	BinanceAPISecret  string `json:"-"`
	BinanceRecvWindow int64  `json:"binance_recv_window"`

	// NATS transport, used only by the standalone feed/recorder/replay
	// services to pass ticks and replay commands between themselves; the
	// in-process engine service does not connect to NATS (see DESIGN.md).
	NatsURL             string `json:"nats_url"`
	MarketDataSubject   string `json:"market_data_subject"`
	ReplayControlSubject string `json:"replay_control_subject"`
	ReplaySource        string `json:"replay_source"`
	ReplaySpeed         int    `json:"replay_speed"`
}

var binanceWSDefaults = map[Mode]string{
	ModeBinanceSandbox: "wss://stream.binancefuture.com/ws",
	ModeBinanceMainnet: "wss://fstream.binance.com/ws",
}

var binanceRestDefaults = map[Mode]string{
	ModeBinanceSandbox: "https://testnet.binancefuture.com",
	ModeBinanceMainnet: "https://fapi.binance.com",
}

// Load reads configuration from the process environment. A malformed
// numeric value is a fatal configuration error: the caller should treat
// a non-nil err as unrecoverable.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SYMBOLS", "BTCUSDT")
	v.SetDefault("FEED_MODE", string(ModeMock))
	v.SetDefault("VENUE_MODE", string(ModeMock))
	v.SetDefault("STRATEGIES", "mean_reversion")
	v.SetDefault("STRATEGY_WORKERS", 2)
	v.SetDefault("MAX_NOTIONAL", int64(2_000_000_000))
	v.SetDefault("PX_MIN", int64(1000))
	v.SetDefault("PX_MAX", int64(200000))
	v.SetDefault("MAX_QPS", int64(50))
	v.SetDefault("METRICS_PORT", 9898)
	v.SetDefault("BINANCE_RECV_WINDOW", int64(5000))
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("MARKET_DATA_SUBJECT", "market.data")
	v.SetDefault("REPLAY_CONTROL_SUBJECT", "replay.control")
	v.SetDefault("REPLAY_SPEED", 1)

	for _, key := range []string{"STRATEGY_WORKERS", "MAX_NOTIONAL", "PX_MIN", "PX_MAX", "MAX_QPS", "METRICS_PORT", "BINANCE_RECV_WINDOW", "REPLAY_SPEED"} {
		raw := strings.TrimSpace(v.GetString(key))
		if _, err := strconv.ParseInt(raw, 0, 64); err != nil {
			return nil, fmt.Errorf("config: invalid numeric %s %q: %w", key, raw, err)
		}
	}

	symbolsCSV := firstNonEmpty(v.GetString("SYMBOLS"), v.GetString("SYMBOL"))
	strategiesCSV := firstNonEmpty(v.GetString("STRATEGIES"), v.GetString("STRATEGY"))

	feedMode := Mode(v.GetString("FEED_MODE"))
	venueMode := Mode(v.GetString("VENUE_MODE"))

	cfg := &Config{
		Symbols:           splitCSV(symbolsCSV),
		FeedMode:          feedMode,
		VenueMode:         venueMode,
		BinanceWS:         firstNonEmpty(v.GetString("BINANCE_WS_URL"), binanceWSDefaults[feedMode]),
		BinanceRest:       firstNonEmpty(v.GetString("BINANCE_REST_URL"), binanceRestDefaults[venueMode]),
		Strategies:        splitCSV(strategiesCSV),
		StrategyWorkers:   v.GetInt("STRATEGY_WORKERS"),
		MaxNotional:       v.GetInt64("MAX_NOTIONAL"),
		PxMin:             v.GetInt64("PX_MIN"),
		PxMax:             v.GetInt64("PX_MAX"),
		MaxQPS:            v.GetInt64("MAX_QPS"),
		MetricsPort:       v.GetInt("METRICS_PORT"),
		RecordFile:        v.GetString("RECORD_FILE"),
		BinanceAPIKey:     v.GetString("BINANCE_API_KEY"),
		BinanceAPISecret:  v.GetString("BINANCE_API_SECRET"),
		BinanceRecvWindow: v.GetInt64("BINANCE_RECV_WINDOW"),

		NatsURL:              v.GetString("NATS_URL"),
		MarketDataSubject:    v.GetString("MARKET_DATA_SUBJECT"),
		ReplayControlSubject: v.GetString("REPLAY_CONTROL_SUBJECT"),
		ReplaySource:         v.GetString("REPLAY_SOURCE"),
		ReplaySpeed:          v.GetInt("REPLAY_SPEED"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.FeedMode {
	case ModeMock, ModeBinanceSandbox, ModeBinanceMainnet:
	default:
		return fmt.Errorf("config: invalid FEED_MODE %q", c.FeedMode)
	}
	switch c.VenueMode {
	case ModeMock, ModeBinanceSandbox, ModeBinanceMainnet:
	default:
		return fmt.Errorf("config: invalid VENUE_MODE %q", c.VenueMode)
	}
	if c.VenueMode != ModeMock && (c.BinanceAPIKey == "" || c.BinanceAPISecret == "") {
		return fmt.Errorf("config: BINANCE_API_KEY and BINANCE_API_SECRET are required in venue mode %q", c.VenueMode)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("config: no symbols configured")
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("config: no strategies configured")
	}
	if c.MaxQPS <= 0 {
		return fmt.Errorf("config: MAX_QPS must be > 0")
	}
	if c.PxMin > c.PxMax {
		return fmt.Errorf("config: PX_MIN must be <= PX_MAX")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
