package gateway

import (
	"net/url"
	"testing"

	"github.com/autovant/dma-engine/internal/domain"
)

func TestParseOrderTradeUpdateMapsStatuses(t *testing.T) {
	cases := []struct {
		exchangeStatus string
		wantStatus     domain.ExecStatus
		wantReason     string
	}{
		{"NEW", domain.Ack, ""},
		{"PARTIALLY_FILLED", domain.PartialFill, ""},
		{"FILLED", domain.Filled, ""},
		{"CANCELED", domain.Rejected, "CANCELED"},
		{"EXPIRED", domain.Rejected, "EXPIRED"},
		{"REJECTED", domain.Rejected, "REJECTED"},
		{"SOMETHING_NEW", domain.Ack, ""},
	}
	for _, c := range cases {
		frame := []byte(`{"e":"ORDER_TRADE_UPDATE","E":1000,"o":{"c":"CL-1-binance","s":"BTCUSDT","X":"` + c.exchangeStatus + `","z":"5","ap":"100.50"}}`)
		report, ok := parseOrderTradeUpdate(frame)
		if !ok {
			t.Fatalf("%s: expected frame to parse", c.exchangeStatus)
		}
		if report.Status != c.wantStatus {
			t.Errorf("%s: expected status %v, got %v", c.exchangeStatus, c.wantStatus, report.Status)
		}
		if report.Reason != c.wantReason {
			t.Errorf("%s: expected reason %q, got %q", c.exchangeStatus, c.wantReason, report.Reason)
		}
		if report.FilledQty != 5 {
			t.Errorf("%s: expected filled_qty 5, got %d", c.exchangeStatus, report.FilledQty)
		}
		if report.AvgPx != 10050 {
			t.Errorf("%s: expected avg_px 10050, got %d", c.exchangeStatus, report.AvgPx)
		}
	}
}

func TestParseOrderTradeUpdateIgnoresOtherEvents(t *testing.T) {
	frame := []byte(`{"e":"ACCOUNT_UPDATE","E":1000,"o":{}}`)
	if _, ok := parseOrderTradeUpdate(frame); ok {
		t.Fatal("expected non-ORDER_TRADE_UPDATE frame to be ignored")
	}
}

func TestParseOrderTradeUpdateSkipsMalformedFrame(t *testing.T) {
	if _, ok := parseOrderTradeUpdate([]byte("not json")); ok {
		t.Fatal("expected malformed frame to be skipped, not parsed")
	}
}

func TestCanonicalQueryPreservesFieldOrder(t *testing.T) {
	form := url.Values{}
	form.Set("symbol", "BTCUSDT")
	form.Set("side", "BUY")
	form.Set("type", "LIMIT")
	form.Set("timeInForce", "GTC")
	form.Set("quantity", "10")
	form.Set("price", "100.00")
	form.Set("timestamp", "1000")
	form.Set("recvWindow", "5000")
	form.Set("newClientOrderId", "CL-1-binance")

	got := canonicalQuery(form)
	want := "symbol=BTCUSDT&side=BUY&type=LIMIT&timeInForce=GTC&quantity=10&price=100.00&timestamp=1000&recvWindow=5000&newClientOrderId=CL-1-binance"
	if got != want {
		t.Errorf("unexpected canonical query:\n got:  %s\n want: %s", got, want)
	}
}

func TestSignIsDeterministicHMAC(t *testing.T) {
	a := sign("foo=bar", "secret")
	b := sign("foo=bar", "secret")
	if a != b {
		t.Error("expected sign to be deterministic for the same input")
	}
	if sign("foo=bar", "other-secret") == a {
		t.Error("expected different secrets to produce different signatures")
	}
}
