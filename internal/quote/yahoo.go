package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"StockPulse/internal/model"

	"github.com/shopspring/decimal"
)

const (
	yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"
	barTimeLayout = "2006-01-02 15:04:05"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API with 1m bars.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. A zero timeout
// leaves the request unbounded.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooChartURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func (f *YahooFetcher) FetchIntraday(ctx context.Context, symbol string) (*model.Intraday, error) {
	u := fmt.Sprintf("%s%s?interval=1m&range=1d", f.BaseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %v", ErrNetworkFailure, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: yahoo status %d", ErrNetworkFailure, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: yahoo decode: %v", ErrMalformedResponse, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderError, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no result", ErrMalformedResponse)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	loc, err := time.LoadLocation(result.Meta.ExchangeTimezoneName)
	if err != nil {
		loc = time.UTC
	}

	// Yahoo is chronological; Intraday.Bars is newest first.
	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i := len(result.Timestamp) - 1; i >= 0; i-- {
		o, c := at(quote.Open, i), at(quote.Close, i)
		if o == 0 && c == 0 {
			continue // null bar
		}
		bars = append(bars, model.Bar{
			Timestamp: time.Unix(result.Timestamp[i], 0).In(loc).Format(barTimeLayout),
			Open:      decimal.NewFromFloat(o),
			High:      decimal.NewFromFloat(at(quote.High, i)),
			Low:       decimal.NewFromFloat(at(quote.Low, i)),
			Close:     decimal.NewFromFloat(c),
			Volume:    int64(at(quote.Volume, i)),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no bars", ErrMissingLatestBar)
	}

	if result.Meta.Symbol != "" {
		symbol = result.Meta.Symbol
	}
	latest := bars[0]
	return &model.Intraday{
		Snapshot: model.QuoteSnapshot{
			Symbol:        symbol,
			Timestamp:     latest.Timestamp,
			Open:          latest.Open,
			PreviousClose: latest.Close,
		},
		TimeZone: loc.String(),
		Bars:     bars,
	}, nil
}
