// Package llm wraps the OpenRouter chat-completions API behind a small
// client, and builds search requests for the data upstreams out of
// unstructured profile text. The model path is preferred; a deterministic
// keyword fallback takes over when it does not cooperate.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openai/gpt-oss-120b"
	defaultTimeout = 60 * time.Second

	upstreamName = "llm"

	// OpenRouter attribution headers.
	appReferer = "https://scholarsense.app"
	appTitle   = "ScholarSense"
)

// Config is the read-only configuration of a Client, copied at construction.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Retry   upstream.Policy
}

// completionAPI is the slice of the OpenAI-compatible SDK the client needs.
// Tests substitute a fake.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api    completionAPI
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &upstream.AuthError{
			Upstream: upstreamName,
			Reason:   "llm api key is not configured",
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = upstream.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	apiConfig.BaseURL = cfg.BaseURL
	apiConfig.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &attributionTransport{next: http.DefaultTransport},
	}

	return &Client{
		api:    openai.NewClientWithConfig(apiConfig),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// attributionTransport adds the OpenRouter attribution headers to every
// request.
type attributionTransport struct {
	next http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", appReferer)
	req.Header.Set("X-Title", appTitle)

	return t.next.RoundTrip(req)
}

// Request describes one completion. The client only ever reads the first
// choice's message content out of the response.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// Complete issues one chat completion with bounded retry and returns the
// generated text. Failures come back classified per the upstream taxonomy.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.createCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   "completion response has no choices",
		}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   "completion content is empty",
		}
	}

	return content, nil
}

// Ping issues a minimal one-token completion and reports its latency.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	resp, err := c.createCompletion(ctx, Request{Prompt: "ping", MaxTokens: 1})
	if err != nil {
		return 0, err
	}

	if len(resp.Choices) == 0 {
		return 0, &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   "completion response has no choices",
		}
	}

	return time.Since(start), nil
}

func (c *Client) createCompletion(ctx context.Context, req Request) (openai.ChatCompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	apiReq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	c.logger.Debug("llm completion request",
		zap.String("model", c.cfg.Model),
		zap.Float64("temperature", float64(req.Temperature)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Bool("json_mode", req.JSONMode),
	)

	var resp openai.ChatCompletionResponse
	err := upstream.Do(ctx, c.cfg.Retry, func() error {
		var callErr error
		resp, callErr = c.api.CreateChatCompletion(ctx, apiReq)
		if callErr != nil {
			return classify(callErr)
		}
		return nil
	})
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	return resp, nil
}

// classify maps an SDK error into the shared taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &upstream.AuthError{
				Upstream: upstreamName,
				Reason:   upstream.Snippet(apiErr.Message),
			}
		default:
			return upstream.NewUpstreamError(upstreamName, apiErr.HTTPStatusCode, apiErr.Message)
		}
	}

	// Timeouts and connection failures land here.
	return upstream.NewUpstreamError(upstreamName, 0, err.Error())
}
