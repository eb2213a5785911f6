package quote

import (
	"context"
	"errors"

	"StockPulse/internal/model"
)

// Fetcher defines the interface for fetching intraday quotes.
type Fetcher interface {
	FetchIntraday(ctx context.Context, symbol string) (*model.Intraday, error)
	Name() string
}

// Failure classes of a refresh tick. Every one of them abandons the tick.
var (
	ErrProviderError     = errors.New("provider error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrMissingLatestBar  = errors.New("missing latest bar")
	ErrNetworkFailure    = errors.New("network failure")
)

// Kind returns a short label for err, suitable for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderError):
		return "provider"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrMissingLatestBar):
		return "missing_latest_bar"
	case errors.Is(err, ErrNetworkFailure):
		return "network"
	default:
		return "unknown"
	}
}
