package service

import (
	"bytes"
	"compress/gzip"
	"testing"
	"time"
)

func TestSplitDataType(t *testing.T) {
	symbol, ok := splitDataType("BTC-USDT@lastPrice")
	if !ok || symbol != "BTC-USDT" {
		t.Errorf("splitDataType = %q, %v", symbol, ok)
	}
	if _, ok := splitDataType("noseparator"); ok {
		t.Error("missing @ should not parse")
	}
}

func TestParsePricePayload(t *testing.T) {
	tests := []struct {
		name string
		data string
		want float64
		ok   bool
	}{
		{"bare string", `"45123.5"`, 45123.5, true},
		{"object with c", `{"c":"45123.5"}`, 45123.5, true},
		{"object with p", `{"p":"44000"}`, 44000, true},
		{"garbage", `"abc"`, 0, false},
		{"empty object", `{}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePricePayload([]byte(tt.data))
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("parsePricePayload(%s) = %v, %v; want %v, %v", tt.data, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHandleMessageUpdatesCache(t *testing.T) {
	f := NewPriceFeed()
	f.handleMessage([]byte(`{"dataType":"BTC-USDT@lastPrice","data":{"c":"45123.5"}}`))

	price, ok := f.Price("BTC-USDT", time.Minute)
	if !ok || price != 45123.5 {
		t.Errorf("cached price = %v, %v", price, ok)
	}
}

func TestPriceExpires(t *testing.T) {
	f := NewPriceFeed()
	f.prices["BTC-USDT"] = cachedPrice{price: 45000, at: time.Now().Add(-time.Minute)}

	if _, ok := f.Price("BTC-USDT", time.Second); ok {
		t.Error("stale price should not be returned")
	}
	if p, ok := f.Price("BTC-USDT", time.Hour); !ok || p != 45000 {
		t.Errorf("price within max age = %v, %v", p, ok)
	}
}

func TestInflate(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("Ping"))
	zw.Close()

	out, err := inflate(buf.Bytes())
	if err != nil || string(out) != "Ping" {
		t.Errorf("inflate gzip = %q, %v", out, err)
	}

	plain, err := inflate([]byte("Ping"))
	if err != nil || string(plain) != "Ping" {
		t.Errorf("inflate plain = %q, %v", plain, err)
	}
}
