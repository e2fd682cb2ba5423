package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEventRoundTripsThroughJSON(t *testing.T) {
	cases := []Event{
		NewMdEvent(MdTick{TsNs: 1, Symbol: "BTCUSDT", BestBid: 9990, BestAsk: 10010}),
		NewSigEvent(Signal{TsNs: 2, Symbol: "BTCUSDT", Side: Buy, Px: 9990, Qty: 10}),
		NewOrdEvent(Order{ClID: "CL-1", TsNs: 3, Symbol: "BTCUSDT", Side: Sell, Px: 10010, Qty: 5}),
		NewExecEvent(ExecReport{ClID: "CL-1-sim", Symbol: "BTCUSDT", Status: Filled, FilledQty: 5, AvgPx: 10010, TsNs: 4}),
		NewNoteEvent("startup complete"),
	}

	for _, want := range cases {
		encoded, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %v failed: %v", want.Kind, err)
		}
		var got Event
		if err := json.Unmarshal(encoded, &got); err != nil {
			t.Fatalf("unmarshal %v failed: %v", want.Kind, err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("event did not round-trip: want %+v, got %+v (wire: %s)", want, got, encoded)
		}
	}
}

func TestEventUnmarshalRejectsMultiKeyObject(t *testing.T) {
	var e Event
	if err := json.Unmarshal([]byte(`{"Md":{},"Sig":{}}`), &e); err == nil {
		t.Fatal("expected an error for an object with more than one variant key")
	}
}
