// Package marketdata is the gateway to external exchange data. It
// proxies order books, tickers, OHLCV and symbol lists from public
// REST venues; nothing here ever places an order.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"paper-trader-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Supported venues. All of them speak the same public v3 REST dialect,
// so one client covers the whole registry.
var exchangeBaseURLs = map[string]string{
	"binance":   "https://api.binance.com/api/v3",
	"binanceus": "https://api.binance.us/api/v3",
	"mexc":      "https://api.mexc.com/api/v3",
}

// ErrUnknownExchange is returned for an exchange outside the registry.
var ErrUnknownExchange = errors.New("unknown exchange")

// GatewayInterface defines the market data operations consumed by the
// HTTP layer.
type GatewayInterface interface {
	Exchanges() []string
	Symbols(ctx context.Context, exchange string) ([]string, error)
	OrderBook(ctx context.Context, exchange, symbol string, limit int) (*OrderBook, error)
	Ticker(ctx context.Context, exchange, symbol string) (*Ticker, error)
	OHLCV(ctx context.Context, exchange, symbol, interval string, limit int) ([]Candle, error)
}

// Client fetches market data over REST with rate limiting and bounded
// retries. It implements GatewayInterface.
type Client struct {
	client  *resty.Client
	baseURL map[string]string
	logger  *zap.Logger
	limiter *rate.Limiter
	symbols *symbolCache
}

// ensure Client implements the interface
var _ GatewayInterface = (*Client)(nil)

// NewClient creates a market data client.
func NewClient(cfg *config.MarketData, logger *zap.Logger) (*Client, error) {
	cache, err := newSymbolCache(time.Duration(cfg.SymbolCacheTTL) * time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to create symbol cache: %w", err)
	}

	return &Client{
		client:  resty.New(),
		baseURL: exchangeBaseURLs,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		symbols: cache,
	}, nil
}

// Exchanges lists the registered venues, sorted.
func (c *Client) Exchanges() []string {
	names := make([]string, 0, len(c.baseURL))
	for name := range c.baseURL {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Client) endpoint(exchange, path string) (string, error) {
	base, ok := c.baseURL[exchange]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownExchange, exchange)
	}
	return base + path, nil
}

// marketSymbol converts a unified "BASE/QUOTE" symbol to the wire
// format, e.g. "BTC/USDT" -> "BTCUSDT".
func marketSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

// doRequest executes the request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests || statusCode == 418 { // HTTP 429 or 418
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// depthResponse is the wire format of the /depth endpoint; levels come
// back as ["price", "quantity"] string pairs.
type depthResponse struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

func parseLevels(raw [][]string) []PriceLevel {
	levels := make([]PriceLevel, 0, len(raw))
	for _, l := range raw {
		if len(l) < 2 {
			continue
		}
		price, err1 := strconv.ParseFloat(l[0], 64)
		qty, err2 := strconv.ParseFloat(l[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		levels = append(levels, PriceLevel{price, qty})
	}
	return levels
}

// OrderBook fetches a depth snapshot for the market.
func (c *Client) OrderBook(ctx context.Context, exchange, symbol string, limit int) (*OrderBook, error) {
	url, err := c.endpoint(exchange, "/depth")
	if err != nil {
		return nil, err
	}

	var depth depthResponse
	req := c.client.R().
		SetQueryParam("symbol", marketSymbol(symbol)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&depth)

	if _, err := c.doRequest(ctx, "GET", url, req); err != nil {
		return nil, fmt.Errorf("failed to get order book for %s on %s: %w", symbol, exchange, err)
	}

	return &OrderBook{
		Bids: parseLevels(depth.Bids),
		Asks: parseLevels(depth.Asks),
	}, nil
}

// ticker24hResponse is the wire format of the /ticker/24hr endpoint.
type ticker24hResponse struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	BidPrice           string `json:"bidPrice"`
	AskPrice           string `json:"askPrice"`
	OpenPrice          string `json:"openPrice"`
	PrevClosePrice     string `json:"prevClosePrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	CloseTime          int64  `json:"closeTime"`
}

func parseF(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// Ticker fetches the 24h statistics for the market.
func (c *Client) Ticker(ctx context.Context, exchange, symbol string) (*Ticker, error) {
	url, err := c.endpoint(exchange, "/ticker/24hr")
	if err != nil {
		return nil, err
	}

	var raw ticker24hResponse
	req := c.client.R().
		SetQueryParam("symbol", marketSymbol(symbol)).
		SetResult(&raw)

	if _, err := c.doRequest(ctx, "GET", url, req); err != nil {
		return nil, fmt.Errorf("failed to get ticker for %s on %s: %w", symbol, exchange, err)
	}

	return &Ticker{
		Symbol:      symbol,
		Last:        parseF(raw.LastPrice),
		High:        parseF(raw.HighPrice),
		Low:         parseF(raw.LowPrice),
		Bid:         parseF(raw.BidPrice),
		Ask:         parseF(raw.AskPrice),
		Open:        parseF(raw.OpenPrice),
		Close:       parseF(raw.PrevClosePrice),
		BaseVolume:  parseF(raw.Volume),
		QuoteVolume: parseF(raw.QuoteVolume),
		Percentage:  parseF(raw.PriceChangePercent),
		Change:      parseF(raw.PriceChange),
		Datetime:    time.UnixMilli(raw.CloseTime).UTC().Format(time.RFC3339),
	}, nil
}

// OHLCV fetches candles for the market. Each kline row arrives as a
// mixed array of numbers and numeric strings.
func (c *Client) OHLCV(ctx context.Context, exchange, symbol, interval string, limit int) ([]Candle, error) {
	url, err := c.endpoint(exchange, "/klines")
	if err != nil {
		return nil, err
	}

	var raw [][]any
	req := c.client.R().
		SetQueryParam("symbol", marketSymbol(symbol)).
		SetQueryParam("interval", interval).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&raw)

	if _, err := c.doRequest(ctx, "GET", url, req); err != nil {
		return nil, fmt.Errorf("failed to get OHLCV for %s on %s: %w", symbol, exchange, err)
	}

	candles := make([]Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		candles = append(candles, Candle{
			anyToFloat(row[0]), // open time
			anyToFloat(row[1]), // open
			anyToFloat(row[2]), // high
			anyToFloat(row[3]), // low
			anyToFloat(row[4]), // close
			anyToFloat(row[5]), // volume
		})
	}
	return candles, nil
}

func anyToFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		return parseF(x)
	default:
		return 0
	}
}

// exchangeInfoResponse is the wire format of the /exchangeInfo endpoint.
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// Symbols lists the actively trading markets of an exchange in unified
// "BASE/QUOTE" form. Results are cached with a TTL.
func (c *Client) Symbols(ctx context.Context, exchange string) ([]string, error) {
	if symbols, ok := c.symbols.get(exchange); ok {
		return symbols, nil
	}

	url, err := c.endpoint(exchange, "/exchangeInfo")
	if err != nil {
		return nil, err
	}

	var info exchangeInfoResponse
	req := c.client.R().SetResult(&info)
	if _, err := c.doRequest(ctx, "GET", url, req); err != nil {
		return nil, fmt.Errorf("failed to get exchange info for %s: %w", exchange, err)
	}

	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "" && s.Status != "TRADING" {
			continue
		}
		if s.BaseAsset == "" || s.QuoteAsset == "" {
			continue
		}
		symbols = append(symbols, s.BaseAsset+"/"+s.QuoteAsset)
	}
	sort.Strings(symbols)

	c.symbols.set(exchange, symbols)
	return symbols, nil
}
