package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/autovant/dma-engine/internal/domain"
	"github.com/autovant/dma-engine/internal/metrics"
)

// ExchangeConfig holds everything the exchange gateway needs to submit
// signed REST orders and follow the user-data stream.
type ExchangeConfig struct {
	Venue      string
	RestBaseURL string
	WSBaseURL   string
	APIKey      string
	APISecret   string
	RecvWindow  int64
	MinOrderGap time.Duration
}

// ExchangeGateway is the REST-submit + user-data-stream venue gateway.
// The REST response is only a submit-acknowledgment; the user-data
// stream is the source of truth for PartialFill/Filled/terminal
// Rejected.
type ExchangeGateway struct {
	cfg    ExchangeConfig
	http   *resty.Client
	lastAt time.Time
	mu     sync.Mutex
}

// NewExchangeGateway builds an exchange gateway. Creating the listen
// key and spawning the user-data stream reader is the caller's job
// (Start); a failure there is fatal for this gateway task.
func NewExchangeGateway(cfg ExchangeConfig) *ExchangeGateway {
	httpClient := resty.New().
		SetBaseURL(cfg.RestBaseURL).
		SetTimeout(5 * time.Second).
		SetHeader("X-MBX-APIKEY", cfg.APIKey)
	return &ExchangeGateway{cfg: cfg, http: httpClient}
}

// Start creates the listen key via authenticated REST and spawns the
// user-data-stream reconnect loop, which translates ORDER_TRADE_UPDATE
// frames into ExecReports on out. Failure to create the listen key is
// fatal for this gateway task.
func (g *ExchangeGateway) Start(out chan<- domain.ExecReport) error {
	listenKey, err := g.createListenKey()
	if err != nil {
		return fmt.Errorf("exchange gateway: create listen key: %w", err)
	}
	go g.runUserDataStream(listenKey, out)
	return nil
}

func (g *ExchangeGateway) createListenKey() (string, error) {
	var result struct {
		ListenKey string `json:"listenKey"`
	}
	resp, err := g.http.R().SetResult(&result).Post("/fapi/v1/listenKey")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}
	return result.ListenKey, nil
}

// runUserDataStream connects to the per-listen-key stream and reconnects
// on any error after a 2s wait.
func (g *ExchangeGateway) runUserDataStream(listenKey string, out chan<- domain.ExecReport) {
	streamURL := g.cfg.WSBaseURL + "/" + listenKey
	for {
		if err := g.consumeUserDataStream(streamURL, out); err != nil {
			log.Printf("exchange gateway: user-data stream error: %v", err)
		}
		time.Sleep(2 * time.Second)
	}
}

func (g *ExchangeGateway) consumeUserDataStream(streamURL string, out chan<- domain.ExecReport) error {
	conn, _, err := websocket.DefaultDialer.Dial(streamURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		report, ok := parseOrderTradeUpdate(msg)
		if !ok {
			continue
		}
		metrics.ExecReportsTotal.WithLabelValues(report.Status.String(), g.cfg.Venue).Inc()
		out <- report
	}
}

type orderTradeUpdateEnvelope struct {
	Event string `json:"e"`
	Order struct {
		ClientOrderID     string `json:"c"`
		Symbol            string `json:"s"`
		Status            string `json:"X"`
		CumulativeQty     string `json:"z"`
		AvgPrice          string `json:"ap"`
	} `json:"o"`
	EventTimeMs int64 `json:"E"`
}

// parseOrderTradeUpdate translates an ORDER_TRADE_UPDATE frame into an
// ExecReport. Malformed frames are logged and skipped, other event types
// are skipped without logging; neither is fatal.
func parseOrderTradeUpdate(msg []byte) (domain.ExecReport, bool) {
	var env orderTradeUpdateEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("exchange gateway: malformed user-data frame: %v", err)
		return domain.ExecReport{}, false
	}
	if env.Event != "ORDER_TRADE_UPDATE" {
		return domain.ExecReport{}, false
	}

	status, reason := mapExchangeStatus(env.Order.Status)

	filledQty := int64(0)
	if d, err := decimal.NewFromString(env.Order.CumulativeQty); err == nil {
		filledQty = d.Truncate(0).IntPart()
	}
	avgPx := int64(0)
	if d, err := decimal.NewFromString(env.Order.AvgPrice); err == nil {
		avgPx = d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	}

	return domain.ExecReport{
		ClID:      env.Order.ClientOrderID,
		Symbol:    env.Order.Symbol,
		Status:    status,
		Reason:    reason,
		FilledQty: filledQty,
		AvgPx:     avgPx,
		TsNs:      env.EventTimeMs * int64(time.Millisecond),
	}, true
}

func mapExchangeStatus(exchangeStatus string) (domain.ExecStatus, string) {
	switch exchangeStatus {
	case "NEW":
		return domain.Ack, ""
	case "PARTIALLY_FILLED":
		return domain.PartialFill, ""
	case "FILLED":
		return domain.Filled, ""
	case "CANCELED", "EXPIRED":
		return domain.Rejected, exchangeStatus
	case "REJECTED":
		return domain.Rejected, "REJECTED"
	default:
		return domain.Ack, ""
	}
}

// Run consumes VenueOrders, optimistically acks each, submits a signed
// LIMIT-GTC REST order, and emits a Rejected report on any submit
// failure. Fills arrive separately via the user-data stream.
func (g *ExchangeGateway) Run(in <-chan domain.VenueOrder, out chan<- domain.ExecReport) {
	for vo := range in {
		ack := domain.ExecReport{
			ClID:   vo.Order.ClID,
			Symbol: vo.Order.Symbol,
			Status: domain.Ack,
			TsNs:   time.Now().UnixNano(),
		}
		metrics.ExecReportsTotal.WithLabelValues(ack.Status.String(), g.cfg.Venue).Inc()
		out <- ack

		g.paceSubmission()
		if err := g.submit(vo); err != nil {
			rej := domain.ExecReport{
				ClID:   vo.Order.ClID,
				Symbol: vo.Order.Symbol,
				Status: domain.Rejected,
				Reason: err.Error(),
				TsNs:   time.Now().UnixNano(),
			}
			metrics.ExecReportsTotal.WithLabelValues(rej.Status.String(), g.cfg.Venue).Inc()
			out <- rej
		}
	}
}

// paceSubmission blocks until MinOrderGap has elapsed since the last
// submission, keeping the gateway under venue rate limits.
func (g *ExchangeGateway) paceSubmission() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gap := time.Since(g.lastAt); gap < g.cfg.MinOrderGap {
		time.Sleep(g.cfg.MinOrderGap - gap)
	}
	g.lastAt = time.Now()
}

func sideString(side domain.Side) string {
	if side == domain.Buy {
		return "BUY"
	}
	return "SELL"
}

// submit builds and sends the signed LIMIT-GTC order.
func (g *ExchangeGateway) submit(vo domain.VenueOrder) error {
	price := decimal.NewFromInt(vo.Order.Px).Div(decimal.NewFromInt(100)).String()
	quantity := strconv.FormatInt(vo.Order.Qty, 10)

	form := url.Values{}
	form.Set("symbol", vo.Order.Symbol)
	form.Set("side", sideString(vo.Order.Side))
	form.Set("type", "LIMIT")
	form.Set("timeInForce", "GTC")
	form.Set("quantity", quantity)
	form.Set("price", price)
	form.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	form.Set("recvWindow", strconv.FormatInt(g.cfg.RecvWindow, 10))
	form.Set("newClientOrderId", vo.Order.ClID)

	canonical := canonicalQuery(form)
	signature := sign(canonical, g.cfg.APISecret)

	resp, err := g.http.R().
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(canonical + "&signature=" + signature).
		Post("/fapi/v1/order")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s", resp.String())
	}
	return nil
}

// canonicalQuery URL-encodes form fields as k=v joined by & in
// insertion order (url.Values.Encode would sort by key, so the field
// order is fixed explicitly here by the order slice).
func canonicalQuery(form url.Values) string {
	order := []string{"symbol", "side", "type", "timeInForce", "quantity", "price", "timestamp", "recvWindow", "newClientOrderId"}
	out := ""
	for i, k := range order {
		v := form.Get(k)
		if i > 0 {
			out += "&"
		}
		out += url.QueryEscape(k) + "=" + url.QueryEscape(v)
	}
	return out
}

func sign(canonical, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}
