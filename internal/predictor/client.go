// Package predictor talks to the external prediction service and turns its
// responses into validated signal records.
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
)

const (
	// DefaultBaseURL is where the prediction service listens by default.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout covers a cold prediction, which trains a model per request.
	DefaultTimeout = 2 * time.Minute

	maxBodyBytes  = 8 << 20
	maxErrorBytes = 512
)

// validSymbol matches tickers like AAPL, BRK.B, TATAGOLD.NS, BTC-USD, ^GSPC, GC=F
var validSymbol = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// Fetcher fetches a single symbol's signal.
type Fetcher interface {
	Fetch(ctx context.Context, symbol core.Symbol) (*core.SignalRecord, error)
}

// Config holds client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP client of the prediction service
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a prediction service client
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// NewWithHTTPClient creates a client around an existing http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  hc,
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch requests one prediction. Every failure is a *core.FetchError; the
// client never retries.
func (c *Client) Fetch(ctx context.Context, symbol core.Symbol) (*core.SignalRecord, error) {
	symbol = core.NormalizeSymbol(string(symbol))
	if !validSymbol.MatchString(string(symbol)) {
		return nil, core.NewFetchError(symbol, core.ErrInvalidSymbol,
			fmt.Errorf("invalid symbol format: %q", symbol))
	}

	endpoint := fmt.Sprintf("%s/api/predict/%s", c.baseURL, url.PathEscape(string(symbol)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, core.NewFetchError(symbol, core.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.NewFetchError(symbol, core.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, core.NewFetchError(symbol, core.ErrUpstream,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, core.NewFetchError(symbol, core.ErrTransport, fmt.Errorf("reading body: %w", err))
	}

	record, err := Decode(body)
	if err != nil {
		return nil, core.NewFetchError(symbol, core.ErrShape, err)
	}
	if record.Symbol != symbol {
		return nil, core.NewFetchError(symbol, core.ErrShape,
			fmt.Errorf("response is for %s", record.Symbol))
	}

	return record, nil
}

// Health is the prediction service's health report
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	CacheSize int    `json:"cache_size"`
}

// Health queries the service's health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, core.WrapError(core.ErrTransport, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrUpstream, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var h Health
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&h); err != nil {
		return nil, core.WrapError(core.ErrShape, fmt.Errorf("decoding response: %w", err))
	}
	return &h, nil
}
