package suggest

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarsense/opportunity-finder/internal/jobs"
)

// JobsResult is the suggestion payload for the jobs upstream.
type JobsResult struct {
	ProfileID     string     `json:"profile_id"`
	QueryKeywords []string   `json:"query_keywords"`
	TotalRecords  int        `json:"total_records"`
	Items         []jobs.Job `json:"items"`
}

// JobsPage is the paged result of an explicit jobs search.
type JobsPage struct {
	TotalRecords   int        `json:"total_records"`
	Page           int        `json:"page"`
	ResultsPerPage int        `json:"results_per_page"`
	Items          []jobs.Job `json:"items"`
}

type jobsQueryBuilder interface {
	BuildJobsQuery(ctx context.Context, profileText string) (string, []string)
}

type jobsSearcher interface {
	Search(ctx context.Context, req jobs.SearchRequest) (*jobs.APIResponse, error)
}

// JobSuggester drives the jobs read paths.
type JobSuggester struct {
	builder jobsQueryBuilder
	client  jobsSearcher
	logger  *zap.Logger
}

func NewJobSuggester(builder jobsQueryBuilder, client jobsSearcher, logger *zap.Logger) *JobSuggester {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &JobSuggester{builder: builder, client: client, logger: logger}
}

// Suggest synthesizes a free-text query from the profile text and searches
// the jobs upstream with it.
func (s *JobSuggester) Suggest(ctx context.Context, profileID, profileText string, limit int, country string) (*JobsResult, error) {
	limit = clampLimit(limit)

	logger := s.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("profile_id", profileID),
	)

	query, keywords := s.builder.BuildJobsQuery(ctx, profileText)

	logger.Debug("dispatching jobs suggestion search",
		zap.String("query", query),
		zap.String("country", country),
		zap.Int("limit", limit),
	)

	resp, err := s.client.Search(ctx, jobs.SearchRequest{
		Country:        strings.TrimSpace(country),
		Page:           1,
		ResultsPerPage: limit,
		What:           query,
	})
	if err != nil {
		return nil, err
	}

	items := jobs.Normalize(resp, logger)

	logger.Info("job suggestions assembled",
		zap.Int("items", len(items)),
		zap.Int("total_records", resp.Count),
	)

	return &JobsResult{
		ProfileID:     profileID,
		QueryKeywords: keywords,
		TotalRecords:  totalRecords(resp.Count, len(items)),
		Items:         items,
	}, nil
}

// Search is the explicit-search passthrough for caller-supplied requests.
func (s *JobSuggester) Search(ctx context.Context, req jobs.SearchRequest) (*JobsPage, error) {
	resp, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.ResultsPerPage
	if perPage < 1 {
		perPage = 10
	}

	return &JobsPage{
		TotalRecords:   totalRecords(resp.Count, len(resp.Results)),
		Page:           page,
		ResultsPerPage: perPage,
		Items:          jobs.Normalize(resp, s.logger),
	}, nil
}
