package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"StockPulse/internal/model"
)

// DefaultURL is where the local prediction service listens.
const DefaultURL = "http://localhost:5000/predict"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=prediction_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the prediction service.
type Client struct {
	// url is the predict endpoint.
	url string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// Option is a configuration option for the prediction client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a prediction client for url. An empty url means DefaultURL.
func NewClient(url string, options ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// ServiceError is a non-200 answer from the prediction service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("prediction service: status %d: %s", e.StatusCode, e.Message)
}

type predictRequest struct {
	StockSymbol string `json:"stock_symbol"`
}

type predictError struct {
	Error string `json:"error"`
}

// Predict asks the service for the next predicted price of symbol.
func (c *Client) Predict(ctx context.Context, symbol string) (*model.Prediction, error) {
	body, err := json.Marshal(predictRequest{StockSymbol: symbol})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var perr predictError
		if err := json.Unmarshal(raw, &perr); err != nil || perr.Error == "" {
			perr.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &ServiceError{StatusCode: resp.StatusCode, Message: perr.Error}
	}

	var p model.Prediction
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	if p.Symbol == "" {
		p.Symbol = symbol
	}
	return &p, nil
}
