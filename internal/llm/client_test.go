package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

type fakeAPI struct {
	fn    func(req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	calls int
	last  openai.ChatCompletionRequest
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	return f.fn(req)
}

func completionText(s string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s}},
		},
	}
}

func newTestClient(api completionAPI) *Client {
	return &Client{
		api:    api,
		cfg:    Config{Model: "test-model", Retry: upstream.Policy{Attempts: 3}},
		logger: zap.NewNop(),
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, nil)

	var authErr *upstream.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "llm", authErr.Upstream)
}

func TestCompleteReturnsTrimmedContent(t *testing.T) {
	api := &fakeAPI{fn: func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return completionText("  hello  "), nil
	}}

	got, err := newTestClient(api).Complete(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	api := &fakeAPI{fn: func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return completionText("ok"), nil
	}}

	_, err := newTestClient(api).Complete(context.Background(), Request{
		System:      "you are terse",
		Prompt:      "hi",
		Temperature: 0.5,
		MaxTokens:   100,
		JSONMode:    true,
	})
	require.NoError(t, err)

	require.Len(t, api.last.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, api.last.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, api.last.Messages[1].Role)
	assert.Equal(t, "test-model", api.last.Model)
	assert.Equal(t, float32(0.5), api.last.Temperature)
	assert.Equal(t, 100, api.last.MaxTokens)
	require.NotNil(t, api.last.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, api.last.ResponseFormat.Type)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	api := &fakeAPI{}
	api.fn = func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		if api.calls < 3 {
			return openai.ChatCompletionResponse{}, &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "overloaded"}
		}
		return completionText("recovered"), nil
	}

	got, err := newTestClient(api).Complete(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 3, api.calls)
}

func TestCompleteAuthRejectionNotRetried(t *testing.T) {
	api := &fakeAPI{fn: func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}
	}}

	_, err := newTestClient(api).Complete(context.Background(), Request{Prompt: "hi"})

	var authErr *upstream.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, authErr.Reason, "bad key")
	assert.Equal(t, 1, api.calls)
}

func TestCompleteEmptyChoices(t *testing.T) {
	api := &fakeAPI{fn: func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, nil
	}}

	_, err := newTestClient(api).Complete(context.Background(), Request{Prompt: "hi"})

	var validationErr *upstream.ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestCompleteEmptyContent(t *testing.T) {
	api := &fakeAPI{fn: func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return completionText("   "), nil
	}}

	_, err := newTestClient(api).Complete(context.Background(), Request{Prompt: "hi"})

	var validationErr *upstream.ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestCompleteConnectionFailure(t *testing.T) {
	api := &fakeAPI{fn: func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, errors.New("dial tcp: connection refused")
	}}

	_, err := newTestClient(api).Complete(context.Background(), Request{Prompt: "hi"})

	var upstreamErr *upstream.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Zero(t, upstreamErr.StatusCode)
	assert.Equal(t, 3, api.calls, "transport failures are retried")
}

func TestPing(t *testing.T) {
	api := &fakeAPI{fn: func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return completionText("pong"), nil
	}}

	latency, err := newTestClient(api).Ping(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, latency, time.Duration(0))
	assert.Equal(t, 1, api.last.MaxTokens)
}

func TestExtractJSONStripsFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(` {"a":1} `))
}
