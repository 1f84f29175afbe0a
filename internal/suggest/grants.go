// Package suggest sequences builder, client and normalizer for the two read
// paths: profile-driven suggestions and explicit search. It holds no state
// across requests; client errors propagate classified and untouched.
package suggest

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarsense/opportunity-finder/internal/grants"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// GrantsResult is the suggestion payload for the grants upstream, echoing the
// keywords and filters that produced it.
type GrantsResult struct {
	ProfileID      string               `json:"profile_id"`
	QueryKeywords  []string             `json:"query_keywords"`
	AppliedFilters map[string]any       `json:"applied_filters"`
	TotalRecords   int                  `json:"total_records"`
	Items          []grants.Opportunity `json:"items"`
}

// GrantsPage is the paged result of an explicit grants search.
type GrantsPage struct {
	TotalRecords int                  `json:"total_records"`
	PageOffset   int                  `json:"page_offset"`
	PageSize     int                  `json:"page_size"`
	Items        []grants.Opportunity `json:"items"`
}

type grantsRequestBuilder interface {
	BuildGrantsRequest(ctx context.Context, profileText string, limit int) (grants.SearchRequest, []string)
}

type grantsSearcher interface {
	Search(ctx context.Context, req grants.SearchRequest) (*grants.APIResponse, error)
}

// GrantSuggester drives the grants read paths. Both dependencies are injected
// once at construction; the suggester itself is stateless.
type GrantSuggester struct {
	builder grantsRequestBuilder
	client  grantsSearcher
	logger  *zap.Logger
}

func NewGrantSuggester(builder grantsRequestBuilder, client grantsSearcher, logger *zap.Logger) *GrantSuggester {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GrantSuggester{builder: builder, client: client, logger: logger}
}

// Suggest builds a search request from the profile text, dispatches it and
// assembles the suggestion result. Building cannot fail; dispatch errors
// propagate classified; item-level normalization failures only shrink the
// page.
func (s *GrantSuggester) Suggest(ctx context.Context, profileID, profileText string, limit int) (*GrantsResult, error) {
	limit = clampLimit(limit)

	logger := s.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("profile_id", profileID),
	)

	req, keywords := s.builder.BuildGrantsRequest(ctx, profileText, limit)

	logger.Debug("dispatching grants suggestion search",
		zap.Strings("keywords", keywords),
		zap.Int("limit", limit),
	)

	resp, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	items := grants.Normalize(resp, logger)

	logger.Info("grants suggestions assembled",
		zap.Int("items", len(items)),
		zap.Int("total_records", resp.PaginationInfo.TotalRecords),
	)

	return &GrantsResult{
		ProfileID:      profileID,
		QueryKeywords:  keywords,
		AppliedFilters: filtersMap(req.Filters),
		TotalRecords:   totalRecords(resp.PaginationInfo.TotalRecords, len(items)),
		Items:          items,
	}, nil
}

// Search is the explicit-search passthrough: the caller supplies the full
// request and gets a normalized page back.
func (s *GrantSuggester) Search(ctx context.Context, req grants.SearchRequest) (*GrantsPage, error) {
	resp, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	return &GrantsPage{
		TotalRecords: resp.PaginationInfo.TotalRecords,
		PageOffset:   resp.PaginationInfo.PageOffset,
		PageSize:     resp.PaginationInfo.PageSize,
		Items:        grants.Normalize(resp, s.logger),
	}, nil
}

// filtersMap echoes the dispatched filters back as a generic mapping for
// caller transparency.
func filtersMap(f *grants.Filters) map[string]any {
	out := map[string]any{}
	if f == nil {
		return out
	}

	data, err := json.Marshal(f)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}

	return out
}

func totalRecords(reported, normalized int) int {
	if reported > 0 {
		return reported
	}

	return normalized
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}

	return limit
}
