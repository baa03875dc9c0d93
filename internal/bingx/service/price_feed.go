package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"

	"github.com/xempie/trade-sub002/internal/metrics"
)

const marketStreamURL = "wss://open-api-swap.bingx.com/swap-market"

// PriceFeed keeps an in-memory last-price cache fed by the BingX swap market
// stream. Messages arrive gzip-compressed; the server sends "Ping" frames
// that must be answered with "Pong" or the connection is dropped.
type PriceFeed struct {
	URL string

	mu      sync.RWMutex
	symbols map[string]struct{}
	prices  map[string]cachedPrice
	conn    *websocket.Conn
}

type cachedPrice struct {
	price float64
	at    time.Time
}

func NewPriceFeed() *PriceFeed {
	return &PriceFeed{
		URL:     marketStreamURL,
		symbols: make(map[string]struct{}),
		prices:  make(map[string]cachedPrice),
	}
}

// Watch adds a symbol to the subscription set. Takes effect on the next
// (re)connect if the feed is already running.
func (f *PriceFeed) Watch(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.symbols[symbol]; ok {
		return
	}
	f.symbols[symbol] = struct{}{}
	if f.conn != nil {
		if err := f.subscribe(f.conn, symbol); err != nil {
			log.Printf("PriceFeed: subscribe %s failed: %v", symbol, err)
		}
	}
}

// Price returns the cached price for a symbol if it is younger than maxAge.
func (f *PriceFeed) Price(symbol string, maxAge time.Duration) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.prices[symbol]
	if !ok || time.Since(c.at) > maxAge {
		return 0, false
	}
	return c.price, true
}

// Run connects and consumes the stream until the context is cancelled,
// reconnecting with exponential backoff on failure.
func (f *PriceFeed) Run(ctx context.Context) {
	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    time.Minute,
		Factor: 2,
		Jitter: true,
	}

	for {
		if ctx.Err() != nil {
			return
		}

		err := f.connectAndConsume(ctx)
		if ctx.Err() != nil {
			return
		}
		metrics.BingXWebSocketConnected.Set(0)

		d := b.Duration()
		log.Printf("PriceFeed: connection lost (%v), reconnecting in %s", err, d)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
		}
	}
}

func (f *PriceFeed) connectAndConsume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return fmt.Errorf("dial market stream: %w", err)
	}
	defer conn.Close()

	f.mu.Lock()
	f.conn = conn
	for symbol := range f.symbols {
		if err := f.subscribe(conn, symbol); err != nil {
			f.conn = nil
			f.mu.Unlock()
			return err
		}
	}
	f.mu.Unlock()

	metrics.BingXWebSocketConnected.Set(1)
	log.Println("PriceFeed: connected to market stream")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			f.mu.Lock()
			f.conn = nil
			f.mu.Unlock()
			return err
		}

		text, err := inflate(payload)
		if err != nil {
			log.Printf("PriceFeed: bad frame: %v", err)
			continue
		}

		if string(text) == "Ping" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("Pong")); err != nil {
				f.mu.Lock()
				f.conn = nil
				f.mu.Unlock()
				return err
			}
			continue
		}

		f.handleMessage(text)
	}
}

// subscribe is called with f.mu held.
func (f *PriceFeed) subscribe(conn *websocket.Conn, symbol string) error {
	sub := map[string]string{
		"id":       uuid.NewString(),
		"reqType":  "sub",
		"dataType": symbol + "@lastPrice",
	}
	return conn.WriteJSON(sub)
}

func (f *PriceFeed) handleMessage(text []byte) {
	var msg struct {
		DataType string          `json:"dataType"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(text, &msg); err != nil || msg.DataType == "" {
		return
	}

	symbol, ok := splitDataType(msg.DataType)
	if !ok {
		return
	}

	price, ok := parsePricePayload(msg.Data)
	if !ok {
		return
	}

	f.mu.Lock()
	f.prices[symbol] = cachedPrice{price: price, at: time.Now()}
	f.mu.Unlock()
}

func splitDataType(dataType string) (string, bool) {
	for i := 0; i < len(dataType); i++ {
		if dataType[i] == '@' {
			return dataType[:i], true
		}
	}
	return "", false
}

// parsePricePayload accepts either a bare string price or an object
// carrying the price under "c" or "p".
func parsePricePayload(data json.RawMessage) (float64, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p, err := strconv.ParseFloat(s, 64)
		return p, err == nil
	}

	var obj struct {
		C string `json:"c"`
		P string `json:"p"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return 0, false
	}
	raw := obj.C
	if raw == "" {
		raw = obj.P
	}
	p, err := strconv.ParseFloat(raw, 64)
	return p, err == nil
}

func inflate(payload []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		// Not compressed, take as-is
		return payload, nil
	}
	defer r.Close()
	return io.ReadAll(r)
}
