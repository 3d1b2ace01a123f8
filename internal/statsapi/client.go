package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptoStats/internal/model"
)

// DefaultBaseURL is the production stats API.
const DefaultBaseURL = "https://assignmentbackend-production-d8da.up.railway.app/api"

const maxBodyBytes = 1 << 20

// Config holds client settings.
type Config struct {
	BaseURL string
	// Timeout bounds a single request. Zero leaves it to the transport.
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client talks to the remote stats API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https: %s", base)
	}

	return &Client{
		baseURL:      strings.TrimRight(base, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetStats fetches price, market cap and 24h change for coin.
func (c *Client) GetStats(ctx context.Context, coin string) (model.Stats, error) {
	var stats model.Stats
	err := c.getJSON(ctx, EndpointStats, coin, &stats)
	return stats, err
}

// GetDeviation fetches the price standard deviation for coin.
func (c *Client) GetDeviation(ctx context.Context, coin string) (model.DeviationResponse, error) {
	var resp model.DeviationResponse
	err := c.getJSON(ctx, EndpointDeviation, coin, &resp)
	return resp, err
}

func (c *Client) getJSON(ctx context.Context, endpoint Endpoint, coin string, out interface{}) error {
	return withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		err := c.doGet(ctx, endpoint, coin, out)
		if err != nil {
			c.logger.Debug("stats api request failed",
				zap.String("endpoint", string(endpoint)),
				zap.String("coin", coin),
				zap.Error(err),
			)
		}
		return err
	})
}

func (c *Client) doGet(ctx context.Context, endpoint Endpoint, coin string, out interface{}) error {
	reqURL := fmt.Sprintf("%s/%s?coin=%s", c.baseURL, endpoint, url.QueryEscape(coin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Reason: ReasonTransport, Coin: coin, Err: fmt.Errorf("build request [%s]: %w", coin, err)}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("stats api request", zap.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Reason: ReasonTransport, Coin: coin, Err: fmt.Errorf("HTTP request failed [%s]: %w", coin, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("stats api non-success status",
			zap.String("endpoint", string(endpoint)),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return statusError(endpoint, coin, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return &FetchError{Endpoint: endpoint, Reason: ReasonDecode, Coin: coin, Status: resp.StatusCode, Err: fmt.Errorf("JSON parse error [%s]: %w", coin, err)}
	}

	return nil
}
