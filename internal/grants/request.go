package grants

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Query bounds enforced by the Simpler.Grants API. Queries below the minimum
// are stripped from the outgoing payload instead of being sent and rejected;
// queries above the maximum are truncated.
const (
	MinQueryLen = 5
	MaxQueryLen = 100

	defaultPageSize = 10
	maxPageSize     = 100
)

const (
	SortAscending  = "ascending"
	SortDescending = "descending"

	defaultSortField = "post_date"
)

// SortOption is one (field, direction) entry of a sort order.
type SortOption struct {
	OrderBy       string `json:"order_by"`
	SortDirection string `json:"sort_direction"`
}

// Pagination carries offset-based paging plus the sort order the upstream
// requires to be non-empty.
type Pagination struct {
	PageOffset int          `json:"page_offset"`
	PageSize   int          `json:"page_size"`
	SortOrder  []SortOption `json:"sort_order"`
}

// OneOf is the enum filter shape: {"one_of": ["posted", "forecasted"]}.
type OneOf struct {
	Values []string `json:"one_of"`
}

// BoolOneOf is the boolean variant: {"one_of": [true]}.
type BoolOneOf struct {
	Values []bool `json:"one_of"`
}

// DateRange is {"start_date": "2024-01-01", "end_date": "2024-12-31"}; either
// bound may be omitted.
type DateRange struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// NumberRange is {"min": 10000, "max": 50000}; either bound may be omitted.
type NumberRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Filters mirrors the documented Simpler.Grants filter object. Filter keys the
// upstream grows later land in Extra and survive a marshal round-trip instead
// of being rejected.
type Filters struct {
	OpportunityStatus *OneOf       `json:"opportunity_status,omitempty"`
	FundingInstrument *OneOf       `json:"funding_instrument,omitempty"`
	ApplicantType     *OneOf       `json:"applicant_type,omitempty"`
	Agency            *OneOf       `json:"agency,omitempty"`
	FundingCategory   *OneOf       `json:"funding_category,omitempty"`
	PostDate          *DateRange   `json:"post_date,omitempty"`
	CloseDate         *DateRange   `json:"close_date,omitempty"`
	AwardFloor        *NumberRange `json:"award_floor,omitempty"`
	AwardCeiling      *NumberRange `json:"award_ceiling,omitempty"`
	IsCostSharing     *BoolOneOf   `json:"is_cost_sharing,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownFilterKeys = []string{
	"opportunity_status",
	"funding_instrument",
	"applicant_type",
	"agency",
	"funding_category",
	"post_date",
	"close_date",
	"award_floor",
	"award_ceiling",
	"is_cost_sharing",
}

func (f Filters) MarshalJSON() ([]byte, error) {
	type plain Filters

	known, err := json.Marshal(plain(f))
	if err != nil {
		return nil, err
	}

	if len(f.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}

	// Typed fields win on key collisions.
	for key, value := range f.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}

	return json.Marshal(merged)
}

func (f *Filters) UnmarshalJSON(data []byte) error {
	type plain Filters

	var typed plain
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}

	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, key := range knownFilterKeys {
		delete(raw, key)
	}

	*f = Filters(typed)
	if len(raw) > 0 {
		f.Extra = raw
	}

	return nil
}

// SearchRequest is the body of POST /v1/opportunities/search. An empty Query
// means "no free-text query".
type SearchRequest struct {
	Query      string     `json:"query,omitempty"`
	Filters    *Filters   `json:"filters,omitempty"`
	Pagination Pagination `json:"pagination"`
}

// DefaultSortOrder returns the sort entry injected when a caller omits one.
func DefaultSortOrder() []SortOption {
	return []SortOption{{OrderBy: defaultSortField, SortDirection: SortDescending}}
}

// prepare returns a copy safe to transmit: the query is clamped to the API
// bounds and pagination gets usable defaults, including the mandatory
// non-empty sort order.
func (r SearchRequest) prepare() SearchRequest {
	query := strings.TrimSpace(r.Query)
	switch {
	case utf8.RuneCountInString(query) < MinQueryLen:
		// Too short to narrow results; treat as absent rather than letting
		// the upstream reject the whole request.
		query = ""
	case utf8.RuneCountInString(query) > MaxQueryLen:
		query = string([]rune(query)[:MaxQueryLen])
	}
	r.Query = query

	if r.Pagination.PageOffset < 1 {
		r.Pagination.PageOffset = 1
	}
	if r.Pagination.PageSize < 1 {
		r.Pagination.PageSize = defaultPageSize
	}
	if r.Pagination.PageSize > maxPageSize {
		r.Pagination.PageSize = maxPageSize
	}
	if len(r.Pagination.SortOrder) == 0 {
		r.Pagination.SortOrder = DefaultSortOrder()
	}

	return r
}
