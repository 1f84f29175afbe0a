// Package jobs implements the Adzuna job-search client and the normalization
// of its results into the internal job record.
package jobs

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

	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

const (
	defaultBaseURL = "https://api.adzuna.com/v1"
	defaultTimeout = 20 * time.Second

	upstreamName = "jobs"
)

// Config is the read-only configuration of a Client, copied at construction.
// Adzuna authenticates with an app id/key pair passed as query parameters.
type Config struct {
	AppID   string
	AppKey  string
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

// Search performs one GET /api/jobs/{country}/search/{page} with bounded
// retry and returns the raw typed response.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*APIResponse, error) {
	if strings.TrimSpace(c.cfg.AppID) == "" || strings.TrimSpace(c.cfg.AppKey) == "" {
		return nil, &upstream.AuthError{
			Upstream: upstreamName,
			Reason:   "adzuna app id or app key is not configured",
		}
	}

	req = req.withDefaults()

	q := buildParams(&req)
	q.Set("app_id", c.cfg.AppID)
	q.Set("app_key", c.cfg.AppKey)

	searchURL := fmt.Sprintf("%s/api/jobs/%s/search/%d", c.cfg.BaseURL, req.Country, req.Page)

	var raw []byte
	err := upstream.Do(ctx, c.cfg.Retry, func() error {
		var getErr error
		raw, getErr = c.get(ctx, searchURL, q)
		return getErr
	})
	if err != nil {
		return nil, err
	}

	var resp APIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   fmt.Sprintf("decode search response: %v", err),
			Raw:      upstream.Snippet(string(raw)),
		}
	}

	c.logger.Debug("jobs search response",
		zap.Int("results", len(resp.Results)),
		zap.Int("count", resp.Count),
	)

	return &resp, nil
}

func (c *Client) get(ctx context.Context, searchURL string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, &upstream.ClientError{Upstream: upstreamName, Err: err}
	}

	// Credentials live in the query string; log parameter names only.
	params := make([]string, 0, len(q))
	for key := range q {
		params = append(params, key)
	}

	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("jobs search request",
		zap.String("url", req.URL.Path),
		zap.Strings("params", params),
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

	// Adzuna uses 410 for rejected credentials and 400 for bad parameters;
	// neither can succeed on retry.
	switch {
	case resp.StatusCode == http.StatusGone:
		return nil, &upstream.AuthError{
			Upstream: upstreamName,
			Reason:   fmt.Sprintf("upstream rejected credentials: %s", upstream.Snippet(string(data))),
		}
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   "upstream rejected request parameters",
			Raw:      upstream.Snippet(string(data)),
		}
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, upstream.NewUpstreamError(upstreamName, resp.StatusCode, string(data))
	}

	return data, nil
}
