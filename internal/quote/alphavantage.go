package quote

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"StockPulse/internal/model"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
)

// DefaultAlphaVantageURL is the Alpha Vantage query endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

// Keys that Alpha Vantage uses to report a problem instead of data.
var providerErrorKeys = []string{"Information", "Error Message", "Note"}

// AlphaVantageFetcher implements Fetcher using the TIME_SERIES_INTRADAY endpoint.
type AlphaVantageFetcher struct {
	BaseURL  string
	APIKey   string
	Interval string
	Timeout  time.Duration // zero means no timeout
	Client   *fasthttp.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, interval, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	if interval == "" {
		interval = "1min"
	}
	client := &fasthttp.Client{Name: "StockPulse/1.0"}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil && u.Host != "" {
			addr := u.Host
			if u.User != nil {
				addr = u.User.String() + "@" + u.Host
			}
			client.Dial = fasthttpproxy.FasthttpHTTPDialer(addr)
		}
	}
	return &AlphaVantageFetcher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Interval: interval,
		Timeout:  timeout,
		Client:   client,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// FetchIntraday issues one GET and validates the body. No retries.
func (f *AlphaVantageFetcher) FetchIntraday(ctx context.Context, symbol string) (*model.Intraday, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.BaseURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	queryArgs := req.URI().QueryArgs()
	queryArgs.Set("function", "TIME_SERIES_INTRADAY")
	queryArgs.Set("symbol", symbol)
	queryArgs.Set("interval", f.Interval)
	queryArgs.Set("apikey", f.APIKey)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = f.Client.DoDeadline(req, resp, deadline)
	} else if f.Timeout > 0 {
		err = f.Client.DoTimeout(req, resp, f.Timeout)
	} else {
		err = f.Client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	if sc := resp.StatusCode(); sc != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrNetworkFailure, sc, string(resp.Body()))
	}

	return ParseIntraday(resp.Body(), symbol, f.Interval)
}

// ParseIntraday validates an Alpha Vantage intraday body and extracts the
// series and its latest bar. Checks run in order and the first failure wins:
// provider-reported errors, missing containers, missing latest bar.
func ParseIntraday(body []byte, symbol, interval string) (*model.Intraday, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)

	for _, key := range providerErrorKeys {
		if v := root.Get(gjson.Escape(key)); v.Exists() && v.String() != "" {
			return nil, fmt.Errorf("%w: %s", ErrProviderError, v.String())
		}
	}

	seriesKey := "Time Series (" + interval + ")"
	meta := root.Get(gjson.Escape("Meta Data"))
	series := root.Get(gjson.Escape(seriesKey))
	if !meta.IsObject() || !series.IsObject() {
		return nil, fmt.Errorf("%w: missing %q or %q", ErrMalformedResponse, "Meta Data", seriesKey)
	}

	lastRefreshed := meta.Get(gjson.Escape("3. Last Refreshed")).String()
	latest := series.Get(gjson.Escape(lastRefreshed))
	if lastRefreshed == "" || !latest.IsObject() {
		return nil, fmt.Errorf("%w: no bar for %q", ErrMissingLatestBar, lastRefreshed)
	}

	latestBar, err := parseBar(lastRefreshed, latest)
	if err != nil {
		return nil, err
	}

	// ForEach walks keys in document order, which for Alpha Vantage is newest
	// first. Only the latest bar must parse; a bad older bar is left off the chart.
	bars := make([]model.Bar, 0, 100)
	series.ForEach(func(key, value gjson.Result) bool {
		ts := key.String()
		if ts == lastRefreshed {
			bars = append(bars, latestBar)
			return true
		}
		bar, err := parseBar(ts, value)
		if err != nil {
			log.Printf("[WARN] %s: skipping bar: %v", symbol, err)
			return true
		}
		bars = append(bars, bar)
		return true
	})

	if s := meta.Get(gjson.Escape("2. Symbol")).String(); s != "" {
		symbol = s
	}

	return &model.Intraday{
		Snapshot: model.QuoteSnapshot{
			Symbol:        symbol,
			Timestamp:     lastRefreshed,
			Open:          latestBar.Open,
			PreviousClose: latestBar.Close,
		},
		TimeZone: meta.Get(gjson.Escape("6. Time Zone")).String(),
		Bars:     bars,
	}, nil
}

func parseBar(ts string, v gjson.Result) (model.Bar, error) {
	if !v.IsObject() {
		return model.Bar{}, fmt.Errorf("%w: bar %s is not an object", ErrMalformedResponse, ts)
	}
	open, err := decimal.NewFromString(v.Get(gjson.Escape("1. open")).String())
	if err != nil {
		return model.Bar{}, fmt.Errorf("%w: bar %s open: %v", ErrMalformedResponse, ts, err)
	}
	closePrice, err := decimal.NewFromString(v.Get(gjson.Escape("4. close")).String())
	if err != nil {
		return model.Bar{}, fmt.Errorf("%w: bar %s close: %v", ErrMalformedResponse, ts, err)
	}
	// high, low and volume are informational only
	high, _ := decimal.NewFromString(v.Get(gjson.Escape("2. high")).String())
	low, _ := decimal.NewFromString(v.Get(gjson.Escape("3. low")).String())
	return model.Bar{
		Timestamp: ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    v.Get(gjson.Escape("5. volume")).Int(),
	}, nil
}
