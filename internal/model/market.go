package model

import "github.com/shopspring/decimal"

// Bar is a single intraday OHLCV bar as reported by the quote provider.
// Timestamp is kept verbatim: it is provider-local time with no zone.
type Bar struct {
	Timestamp string
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
}

// QuoteSnapshot is the latest bar reduced to the fields the dashboard shows.
type QuoteSnapshot struct {
	Symbol        string
	Timestamp     string
	Open          decimal.Decimal
	PreviousClose decimal.Decimal // the latest bar's own close, see DESIGN.md
}

// Intraday is one successful provider response.
type Intraday struct {
	Snapshot QuoteSnapshot
	TimeZone string
	Bars     []Bar // provider order, newest first for Alpha Vantage
}

// ChartPoint is one (timestamp, price) pair fed to the chart.
type ChartPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}
