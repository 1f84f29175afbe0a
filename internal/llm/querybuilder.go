package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/scholarsense/opportunity-finder/internal/grants"
	"github.com/scholarsense/opportunity-finder/internal/utils"
)

//go:embed prompts/grants_payload.md
var grantsPayloadPrompt string

//go:embed prompts/jobs_query.md
var jobsQueryPrompt string

const (
	payloadTemperature = 0.5
	payloadMaxTokens   = 1000
	queryMaxTokens     = 50

	defaultSuggestionLimit = 10
	maxKeywordMetadata     = 6

	rawLogLimit = 200
)

// completer is the completion surface the builder needs; tests substitute a
// stub.
type completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// QueryBuilder turns unstructured profile text into upstream search requests.
// The primary path asks the model for a full structured payload; any failure
// on that path degrades to the deterministic keyword extractor, so building a
// request never fails.
type QueryBuilder struct {
	llm    completer
	logger *zap.Logger
}

func NewQueryBuilder(llm completer, logger *zap.Logger) *QueryBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QueryBuilder{llm: llm, logger: logger}
}

// BuildGrantsRequest produces a grants search request plus the keyword
// metadata echoed back to callers. It cannot fail: when the model path
// produces no valid payload the deterministic fallback takes over.
func (b *QueryBuilder) BuildGrantsRequest(ctx context.Context, profileText string, limit int) (grants.SearchRequest, []string) {
	if limit < 1 {
		limit = defaultSuggestionLimit
	}

	req, keywords, err := b.grantsRequestFromModel(ctx, profileText, limit)
	if err == nil {
		return req, keywords
	}

	b.logger.Warn("llm grants payload unusable, using keyword fallback", zap.Error(err))

	return b.fallbackGrantsRequest(profileText, limit)
}

func (b *QueryBuilder) grantsRequestFromModel(ctx context.Context, profileText string, limit int) (grants.SearchRequest, []string, error) {
	prompt := fmt.Sprintf(
		"CANDIDATE PROFILE:\n%s\n\nConstruct the search request JSON for this profile. Set pagination.page_size to %d.",
		profileText, limit,
	)

	raw, err := b.llm.Complete(ctx, Request{
		System:      grantsPayloadPrompt,
		Prompt:      prompt,
		Temperature: payloadTemperature,
		MaxTokens:   payloadMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return grants.SearchRequest{}, nil, err
	}

	var req grants.SearchRequest
	if err := json.Unmarshal([]byte(extractJSON(raw)), &req); err != nil {
		b.logger.Debug("rejected model payload", zap.String("raw", utils.TruncateForLog(raw, rawLogLimit)))
		return grants.SearchRequest{}, nil, fmt.Errorf("parse generated payload: %w", err)
	}

	if err := validateGeneratedRequest(&req); err != nil {
		b.logger.Debug("rejected model payload", zap.String("raw", utils.TruncateForLog(raw, rawLogLimit)))
		return grants.SearchRequest{}, nil, err
	}

	return req, queryKeywords(req.Query), nil
}

// validateGeneratedRequest enforces the schema the prompt demands. Anything
// off-shape sends the caller to the fallback path instead of upstream.
func validateGeneratedRequest(req *grants.SearchRequest) error {
	if q := strings.TrimSpace(req.Query); q != "" && utf8.RuneCountInString(q) > grants.MaxQueryLen {
		return fmt.Errorf("generated query length %d exceeds %d", utf8.RuneCountInString(q), grants.MaxQueryLen)
	}
	if req.Pagination.PageOffset < 1 {
		return fmt.Errorf("generated page_offset %d is invalid", req.Pagination.PageOffset)
	}
	if req.Pagination.PageSize < 1 || req.Pagination.PageSize > 100 {
		return fmt.Errorf("generated page_size %d is invalid", req.Pagination.PageSize)
	}
	if len(req.Pagination.SortOrder) == 0 {
		return fmt.Errorf("generated payload has empty sort_order")
	}

	return nil
}

// fallbackGrantsRequest builds the deterministic request: profile keywords as
// the free-text query plus opinionated filters for the student audience.
func (b *QueryBuilder) fallbackGrantsRequest(profileText string, limit int) (grants.SearchRequest, []string) {
	keywords := Keywords(profileText)

	req := grants.SearchRequest{
		Query: strings.Join(keywords, " "),
		Filters: &grants.Filters{
			OpportunityStatus: &grants.OneOf{Values: []string{"posted", "forecasted"}},
			FundingInstrument: &grants.OneOf{Values: []string{"grant"}},
			ApplicantType: &grants.OneOf{Values: []string{
				"individuals",
				"public_and_state_institutions_of_higher_education",
			}},
		},
		Pagination: grants.Pagination{
			PageOffset: 1,
			PageSize:   limit,
			SortOrder:  grants.DefaultSortOrder(),
		},
	}

	return req, keywords
}

// BuildJobsQuery produces the short free-text query the jobs upstream takes,
// plus keyword metadata. Like the grants path it cannot fail.
func (b *QueryBuilder) BuildJobsQuery(ctx context.Context, profileText string) (string, []string) {
	prompt := fmt.Sprintf("Profile:\n%s\n\nGenerate a relevant job search query for this profile:", profileText)

	raw, err := b.llm.Complete(ctx, Request{
		System:      jobsQueryPrompt,
		Prompt:      prompt,
		Temperature: payloadTemperature,
		MaxTokens:   queryMaxTokens,
	})
	if err == nil {
		query := strings.Trim(strings.TrimSpace(raw), `"'`)
		if query != "" && utf8.RuneCountInString(query) <= grants.MaxQueryLen {
			return query, queryKeywords(query)
		}
		err = fmt.Errorf("generated query is empty or oversized: %q", query)
	}

	b.logger.Warn("llm jobs query unusable, using keyword fallback", zap.Error(err))

	keywords := Keywords(profileText)

	return strings.Join(keywords, " "), keywords
}

// queryKeywords splits a query into the keyword metadata echoed to callers.
func queryKeywords(query string) []string {
	fields := strings.Fields(query)
	if len(fields) > maxKeywordMetadata {
		fields = fields[:maxKeywordMetadata]
	}

	return fields
}
