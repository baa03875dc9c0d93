package dto

import (
	"encoding/json"
	"testing"
)

func TestPriceValueAcceptsStringAndNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"45000"`, "45000"},
		{`"2%"`, "2%"},
		{`45000`, "45000"},
		{`45000.5`, "45000.5"},
	}
	for _, tt := range tests {
		var p PriceValue
		if err := json.Unmarshal([]byte(tt.in), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if p.Raw != tt.want {
			t.Errorf("PriceValue(%s).Raw = %q, want %q", tt.in, p.Raw, tt.want)
		}
	}
}

func TestPriceListAcceptsArrayAndScalar(t *testing.T) {
	var fromArray PriceList
	if err := json.Unmarshal([]byte(`["45000", 44100, "2%"]`), &fromArray); err != nil {
		t.Fatalf("array unmarshal: %v", err)
	}
	if len(fromArray) != 3 || fromArray[2].Raw != "2%" {
		t.Errorf("array result = %+v", fromArray)
	}

	var fromScalar PriceList
	if err := json.Unmarshal([]byte(`"45000"`), &fromScalar); err != nil {
		t.Fatalf("scalar unmarshal: %v", err)
	}
	if len(fromScalar) != 1 || fromScalar[0].Raw != "45000" {
		t.Errorf("scalar result = %+v", fromScalar)
	}
}

func TestWebhookRequestDecoding(t *testing.T) {
	payload := `{
		"symbol": "BINGX:BTCUSDT.P",
		"side": "LONG",
		"type": "TRIGGER_CROSS",
		"leverage": 10,
		"entries": [45000, "44100"],
		"targets": ["2%"],
		"stop_loss": "5%",
		"levels": "HM",
		"prices": "45000 | 44500"
	}`
	var req WebhookRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Leverage == nil || *req.Leverage != 10 {
		t.Errorf("leverage = %v", req.Leverage)
	}
	if len(req.Entries) != 2 || req.Entries[1].Raw != "44100" {
		t.Errorf("entries = %+v", req.Entries)
	}
	if len(req.StopLoss) != 1 || req.StopLoss[0].Raw != "5%" {
		t.Errorf("scalar stop_loss = %+v", req.StopLoss)
	}
}

func TestImportSignalRequestValidation(t *testing.T) {
	valid := ImportSignalRequest{
		Symbol:   "BTC-USDT",
		Side:     "LONG",
		Leverage: 10,
		Entries:  PriceList{{Raw: "45000"}},
		Targets:  PriceList{{Raw: "2%"}},
		StopLoss: PriceList{{Raw: "5%"}},
	}
	if err := Validate.Struct(valid); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	badSide := valid
	badSide.Side = "UP"
	if err := Validate.Struct(badSide); err == nil {
		t.Error("side UP should be rejected")
	}

	badLeverage := valid
	badLeverage.Leverage = 0
	if err := Validate.Struct(badLeverage); err == nil {
		t.Error("leverage 0 should be rejected")
	}

	noStop := valid
	noStop.StopLoss = nil
	if err := Validate.Struct(noStop); err == nil {
		t.Error("missing stop loss should be rejected")
	}
}
