package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

func fastRetry() upstream.Policy {
	return upstream.Policy{Attempts: 3}
}

func TestSearchMissingCredentialsSkipsNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	defer server.Close()

	client := New(Config{AppID: "id", BaseURL: server.URL, Retry: fastRetry()}, nil)

	_, err := client.Search(context.Background(), SearchRequest{})

	var authErr *upstream.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Zero(t, calls)
}

func TestSearchBuildsPathAndQuery(t *testing.T) {
	var (
		gotPath  string
		gotQuery url.Values
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	defer server.Close()

	client := New(Config{AppID: "my-id", AppKey: "my-key", BaseURL: server.URL, Retry: fastRetry()}, nil)

	_, err := client.Search(context.Background(), SearchRequest{
		Country:  "GB",
		Page:     2,
		What:     "data science intern",
		FullTime: boolPtr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/jobs/gb/search/2", gotPath)
	assert.Equal(t, "my-id", gotQuery.Get("app_id"))
	assert.Equal(t, "my-key", gotQuery.Get("app_key"))
	assert.Equal(t, "data science intern", gotQuery.Get("what"))
	assert.Equal(t, "1", gotQuery.Get("full_time"))
	assert.Equal(t, "10", gotQuery.Get("results_per_page"))
}

func TestSearchGoneMeansAuthError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "authorisation failed", http.StatusGone)
	}))
	defer server.Close()

	client := New(Config{AppID: "id", AppKey: "key", BaseURL: server.URL, Retry: fastRetry()}, nil)

	_, err := client.Search(context.Background(), SearchRequest{})

	var authErr *upstream.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, authErr.Reason, "authorisation failed")
	assert.Equal(t, 1, calls, "credential rejections are not retried")
}

func TestSearchBadRequestMeansValidationError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "unknown parameter", http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(Config{AppID: "id", AppKey: "key", BaseURL: server.URL, Retry: fastRetry()}, nil)

	_, err := client.Search(context.Background(), SearchRequest{})

	var validationErr *upstream.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Raw, "unknown parameter")
	assert.Equal(t, 1, calls)
}

func TestSearchRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 2 {
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"count":1,"results":[{"id":"1","title":"Intern"}]}`))
	}))
	defer server.Close()

	client := New(Config{AppID: "id", AppKey: "key", BaseURL: server.URL, Retry: fastRetry()}, nil)

	resp, err := client.Search(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, resp.Count)
}

func TestSearchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := New(Config{AppID: "id", AppKey: "key", BaseURL: server.URL, Retry: fastRetry()}, nil)

	_, err := client.Search(context.Background(), SearchRequest{})

	var validationErr *upstream.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Raw, "not json")
}
