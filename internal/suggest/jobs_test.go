package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarsense/opportunity-finder/internal/jobs"
	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

type stubJobsBuilder struct {
	query    string
	keywords []string
}

func (b *stubJobsBuilder) BuildJobsQuery(context.Context, string) (string, []string) {
	return b.query, b.keywords
}

type stubJobsClient struct {
	resp   *jobs.APIResponse
	err    error
	gotReq jobs.SearchRequest
}

func (c *stubJobsClient) Search(_ context.Context, req jobs.SearchRequest) (*jobs.APIResponse, error) {
	c.gotReq = req
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}

func jobsResponse(items ...string) *jobs.APIResponse {
	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw = append(raw, json.RawMessage(item))
	}
	return &jobs.APIResponse{Count: len(items), Results: raw}
}

func TestJobSuggest(t *testing.T) {
	builder := &stubJobsBuilder{query: "software intern", keywords: []string{"software", "intern"}}
	client := &stubJobsClient{resp: jobsResponse(
		`{"id": "1", "title": "Software Intern"}`,
	)}

	result, err := NewJobSuggester(builder, client, nil).Suggest(context.Background(), "prof-2", "CS student", 5, " GB ")
	require.NoError(t, err)

	assert.Equal(t, "prof-2", result.ProfileID)
	assert.Equal(t, []string{"software", "intern"}, result.QueryKeywords)
	assert.Equal(t, 1, result.TotalRecords)
	require.Len(t, result.Items, 1)

	assert.Equal(t, "software intern", client.gotReq.What)
	assert.Equal(t, "GB", client.gotReq.Country)
	assert.Equal(t, 1, client.gotReq.Page)
	assert.Equal(t, 5, client.gotReq.ResultsPerPage)
}

func TestJobSuggestClampsLimit(t *testing.T) {
	builder := &stubJobsBuilder{}
	client := &stubJobsClient{resp: jobsResponse()}
	suggester := NewJobSuggester(builder, client, nil)

	_, err := suggester.Suggest(context.Background(), "p", "text", -1, "")
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, client.gotReq.ResultsPerPage)

	_, err = suggester.Suggest(context.Background(), "p", "text", 200, "")
	require.NoError(t, err)
	assert.Equal(t, maxLimit, client.gotReq.ResultsPerPage)
}

func TestJobSuggestPropagatesClientError(t *testing.T) {
	builder := &stubJobsBuilder{}
	client := &stubJobsClient{err: upstream.NewUpstreamError("jobs", 502, "bad gateway")}

	_, err := NewJobSuggester(builder, client, nil).Suggest(context.Background(), "p", "text", 5, "")

	var upstreamErr *upstream.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, 502, upstreamErr.StatusCode)
}

func TestJobSearchPassthrough(t *testing.T) {
	client := &stubJobsClient{resp: jobsResponse(
		`{"id": "1", "title": "Analyst"}`,
		`{"title": "missing id"}`,
	)}

	page, err := NewJobSuggester(nil, client, nil).Search(context.Background(), jobs.SearchRequest{What: "analyst"})
	require.NoError(t, err)

	assert.Equal(t, 2, page.TotalRecords)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.ResultsPerPage)
	require.Len(t, page.Items, 1, "malformed results shrink the page only")
}
