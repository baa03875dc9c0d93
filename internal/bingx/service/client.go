package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xempie/trade-sub002/internal/bingx/entity"
	"github.com/xempie/trade-sub002/internal/metrics"
)

const (
	pathTicker     = "/openApi/swap/v2/quote/ticker"
	pathPrice      = "/openApi/swap/v2/quote/price"
	pathContracts  = "/openApi/swap/v2/quote/contracts"
	pathBalance    = "/openApi/swap/v2/user/balance"
	pathPositions  = "/openApi/swap/v2/user/positions"
	pathOrder      = "/openApi/swap/v2/trade/order"
	pathOpenOrders = "/openApi/swap/v2/trade/openOrders"
	pathLeverage   = "/openApi/swap/v2/trade/leverage"
)

// Client is a BingX USDT perpetual REST client.
// Every private request carries a timestamp, recvWindow and an HMAC-SHA256
// signature over the sorted query string; the API key goes into X-BX-APIKEY.
type Client struct {
	APIKey     string
	SecretKey  string
	BaseURL    string
	RecvWindow int64
	HTTPClient *http.Client
}

func NewClient(apiKey, secretKey, baseURL string, recvWindow int64) *Client {
	if recvWindow <= 0 {
		recvWindow = 5000
	}
	return &Client{
		APIKey:     apiKey,
		SecretKey:  secretKey,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		RecvWindow: recvWindow,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope is the common BingX response wrapper.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Sign builds the canonical query string and its signature. Parameters are
// sorted by key before signing; the signature itself is appended unsorted.
func Sign(params map[string]string, secretKey string) (query, signature string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	query = strings.Join(parts, "&")

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(query))
	signature = hex.EncodeToString(mac.Sum(nil))
	return query, signature
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, signed bool) (json.RawMessage, error) {
	if params == nil {
		params = map[string]string{}
	}
	if signed {
		params["timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
		params["recvWindow"] = strconv.FormatInt(c.RecvWindow, 10)
	}

	var rawQuery string
	if signed {
		query, sig := Sign(params, c.SecretKey)
		rawQuery = query + "&signature=" + sig
	} else {
		vals := url.Values{}
		for k, v := range params {
			vals.Set(k, v)
		}
		rawQuery = vals.Encode()
	}

	reqURL := c.BaseURL + path
	if rawQuery != "" {
		reqURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		req.Header.Set("X-BX-APIKEY", c.APIKey)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	metrics.BingXAPIRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BingXAPIRequestsTotal.WithLabelValues(path, "error").Inc()
		return nil, fmt.Errorf("bingx request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BingXAPIRequestsTotal.WithLabelValues(path, "error").Inc()
		return nil, fmt.Errorf("bingx read response %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.BingXAPIRequestsTotal.WithLabelValues(path, "error").Inc()
		return nil, fmt.Errorf("bingx decode response %s: %w", path, err)
	}
	if env.Code != 0 {
		metrics.BingXAPIRequestsTotal.WithLabelValues(path, "api_error").Inc()
		return nil, fmt.Errorf("bingx API error %d on %s: %s", env.Code, path, env.Msg)
	}

	metrics.BingXAPIRequestsTotal.WithLabelValues(path, "ok").Inc()
	return env.Data, nil
}

// GetTickerPrice returns the last trade price for a contract.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	data, err := c.do(ctx, http.MethodGet, pathTicker, map[string]string{"symbol": symbol}, false)
	if err != nil {
		return 0, err
	}
	var t struct {
		LastPrice string `json:"lastPrice"`
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return 0, fmt.Errorf("bingx ticker for %s: %w", symbol, err)
	}
	return strconv.ParseFloat(t.LastPrice, 64)
}

// GetPrice returns the current mark price for a contract.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	data, err := c.do(ctx, http.MethodGet, pathPrice, map[string]string{"symbol": symbol}, false)
	if err != nil {
		return 0, err
	}
	var p struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("bingx price for %s: %w", symbol, err)
	}
	return strconv.ParseFloat(p.Price, 64)
}

// GetBalance returns the USDT perpetual account balance.
func (c *Client) GetBalance(ctx context.Context) (*entity.Balance, error) {
	data, err := c.do(ctx, http.MethodGet, pathBalance, nil, true)
	if err != nil {
		return nil, err
	}
	var b struct {
		Balance struct {
			Asset            string `json:"asset"`
			Balance          string `json:"balance"`
			AvailableMargin  string `json:"availableMargin"`
			UsedMargin       string `json:"usedMargin"`
			UnrealizedProfit string `json:"unrealizedProfit"`
		} `json:"balance"`
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bingx balance: %w", err)
	}
	return &entity.Balance{
		Asset:            b.Balance.Asset,
		Balance:          parseFloat(b.Balance.Balance),
		AvailableMargin:  parseFloat(b.Balance.AvailableMargin),
		UsedMargin:       parseFloat(b.Balance.UsedMargin),
		UnrealizedProfit: parseFloat(b.Balance.UnrealizedProfit),
	}, nil
}

// GetPositions returns open positions, optionally filtered by symbol
// (empty symbol returns all).
func (c *Client) GetPositions(ctx context.Context, symbol string) ([]entity.Position, error) {
	params := map[string]string{}
	if symbol != "" {
		params["symbol"] = symbol
	}
	data, err := c.do(ctx, http.MethodGet, pathPositions, params, true)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Symbol           string `json:"symbol"`
		PositionSide     string `json:"positionSide"`
		PositionAmt      string `json:"positionAmt"`
		AvgPrice         string `json:"avgPrice"`
		Leverage         int    `json:"leverage"`
		UnrealizedProfit string `json:"unrealizedProfit"`
		Margin           string `json:"margin"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bingx positions: %w", err)
	}

	positions := make([]entity.Position, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, entity.Position{
			Symbol:           p.Symbol,
			PositionSide:     p.PositionSide,
			PositionAmt:      parseFloat(p.PositionAmt),
			AvgPrice:         parseFloat(p.AvgPrice),
			Leverage:         p.Leverage,
			UnrealizedProfit: parseFloat(p.UnrealizedProfit),
			Margin:           parseFloat(p.Margin),
		})
	}
	return positions, nil
}

// GetOpenOrders returns resting orders for a symbol.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]entity.OpenOrder, error) {
	data, err := c.do(ctx, http.MethodGet, pathOpenOrders, map[string]string{"symbol": symbol}, true)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Orders []struct {
			OrderID      int64  `json:"orderId"`
			Symbol       string `json:"symbol"`
			Side         string `json:"side"`
			PositionSide string `json:"positionSide"`
			Type         string `json:"type"`
			StopPrice    string `json:"stopPrice"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bingx open orders for %s: %w", symbol, err)
	}

	orders := make([]entity.OpenOrder, 0, len(raw.Orders))
	for _, o := range raw.Orders {
		orders = append(orders, entity.OpenOrder{
			OrderID:      o.OrderID,
			Symbol:       o.Symbol,
			Side:         o.Side,
			PositionSide: o.PositionSide,
			Type:         o.Type,
			StopPrice:    parseFloat(o.StopPrice),
		})
	}
	return orders, nil
}

// PlaceOrder submits an order and returns the exchange order id.
func (c *Client) PlaceOrder(ctx context.Context, req entity.OrderRequest) (int64, error) {
	params := map[string]string{
		"symbol":       req.Symbol,
		"side":         req.Side,
		"positionSide": req.PositionSide,
		"type":         req.Type,
		"quantity":     formatFloat(req.Quantity),
		"timeInForce":  "GTC",
		"workingType":  "MARK_PRICE",
	}
	if req.StopPrice > 0 {
		params["stopPrice"] = formatFloat(req.StopPrice)
	}
	if req.ClientOrderID != "" {
		params["clientOrderID"] = req.ClientOrderID
	}

	data, err := c.do(ctx, http.MethodPost, pathOrder, params, true)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Order struct {
			OrderID int64 `json:"orderId"`
		} `json:"order"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("bingx place order for %s: %w", req.Symbol, err)
	}
	return resp.Order.OrderID, nil
}

// GetOrder polls the status of a previously placed order.
func (c *Client) GetOrder(ctx context.Context, symbol string, orderID int64) (*entity.OrderStatus, error) {
	params := map[string]string{
		"symbol":  symbol,
		"orderId": strconv.FormatInt(orderID, 10),
	}
	data, err := c.do(ctx, http.MethodGet, pathOrder, params, true)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Order struct {
			OrderID  int64  `json:"orderId"`
			Symbol   string `json:"symbol"`
			Status   string `json:"status"`
			AvgPrice string `json:"avgPrice"`
		} `json:"order"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("bingx order status for %s/%d: %w", symbol, orderID, err)
	}
	return &entity.OrderStatus{
		OrderID:  resp.Order.OrderID,
		Symbol:   resp.Order.Symbol,
		Status:   resp.Order.Status,
		AvgPrice: parseFloat(resp.Order.AvgPrice),
	}, nil
}

// SetLeverage sets leverage for both position sides of a contract.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	params := map[string]string{
		"symbol":   symbol,
		"leverage": strconv.Itoa(leverage),
		"side":     "BOTH",
	}
	_, err := c.do(ctx, http.MethodPost, pathLeverage, params, true)
	return err
}

// GetContracts returns the tradable perpetual contract catalog.
func (c *Client) GetContracts(ctx context.Context) ([]entity.Contract, error) {
	data, err := c.do(ctx, http.MethodGet, pathContracts, nil, false)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Symbol            string `json:"symbol"`
		PricePrecision    int    `json:"pricePrecision"`
		QuantityPrecision int    `json:"quantityPrecision"`
		Status            int    `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bingx contracts: %w", err)
	}

	contracts := make([]entity.Contract, 0, len(raw))
	for _, ct := range raw {
		contracts = append(contracts, entity.Contract{
			Symbol:            ct.Symbol,
			PricePrecision:    ct.PricePrecision,
			QuantityPrecision: ct.QuantityPrecision,
			Status:            ct.Status,
		})
	}
	return contracts, nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
