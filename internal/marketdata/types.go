package marketdata

// PriceLevel is one side of the book at one price: [price, quantity].
type PriceLevel [2]float64

// OrderBook is a depth snapshot for one market.
type OrderBook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// Snapshot is an order book capture with the time it was taken,
// kept in the per-market snapshot history.
type Snapshot struct {
	Timestamp int64        `json:"timestamp"` // unix milliseconds
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
}

// Ticker is the 24h market statistics for one symbol.
type Ticker struct {
	Symbol      string  `json:"symbol"`
	Last        float64 `json:"last"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	Open        float64 `json:"open"`
	Close       float64 `json:"close"`
	BaseVolume  float64 `json:"baseVolume"`
	QuoteVolume float64 `json:"quoteVolume"`
	Percentage  float64 `json:"percentage"`
	Change      float64 `json:"change"`
	Datetime    string  `json:"datetime"`
}

// Candle is one OHLCV bar: [timestamp, open, high, low, close, volume].
type Candle [6]float64
