// Package grants implements the Simpler.Grants.gov search client and the
// normalization of its response shapes into the internal opportunity record.
package grants

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

const (
	defaultBaseURL = "https://api.simpler.grants.gov"
	searchPath     = "/v1/opportunities/search"
	defaultTimeout = 20 * time.Second

	upstreamName = "grants"
)

// Config is the read-only configuration of a Client. It is copied at
// construction and never mutated afterwards, so one Client is safe for
// concurrent use.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Retry   upstream.Policy
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = upstream.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Search performs one POST /v1/opportunities/search with bounded retry and
// returns the raw typed response. The request is sanitized before transmit
// (query clamped, default sort injected); failures come back classified per
// the upstream taxonomy.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*APIResponse, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, &upstream.AuthError{
			Upstream: upstreamName,
			Reason:   "grants api key is not configured",
		}
	}

	body, err := json.Marshal(req.prepare())
	if err != nil {
		return nil, &upstream.ClientError{Upstream: upstreamName, Err: fmt.Errorf("marshal search payload: %w", err)}
	}

	var raw []byte
	err = upstream.Do(ctx, c.cfg.Retry, func() error {
		var postErr error
		raw, postErr = c.post(ctx, body)
		return postErr
	})
	if err != nil {
		return nil, err
	}

	var resp APIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// The round-trip itself succeeded; a broken shape is not retried.
		return nil, &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   fmt.Sprintf("decode search response: %v", err),
			Raw:      upstream.Snippet(string(raw)),
		}
	}

	c.logger.Debug("grants search response",
		zap.Int("items", len(resp.Data)),
		zap.Int("total_records", resp.PaginationInfo.TotalRecords),
	)

	return &resp, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, &upstream.ClientError{Upstream: upstreamName, Err: err}
	}

	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("grants search request",
		zap.String("url", req.URL.String()),
		zap.Int("payload_bytes", len(body)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.NewUpstreamError(upstreamName, 0, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstream.NewUpstreamError(upstreamName, resp.StatusCode, err.Error())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, upstream.NewUpstreamError(upstreamName, resp.StatusCode, string(data))
	}

	return data, nil
}
