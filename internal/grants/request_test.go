package grants

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareStripsShortQuery(t *testing.T) {
	req := SearchRequest{Query: "  ml  "}

	prepared := req.prepare()
	assert.Empty(t, prepared.Query, "queries under the minimum length are dropped, not sent")
}

func TestPrepareKeepsBoundaryQuery(t *testing.T) {
	prepared := SearchRequest{Query: "abcde"}.prepare()
	assert.Equal(t, "abcde", prepared.Query)
}

func TestPrepareTruncatesLongQuery(t *testing.T) {
	long := strings.Repeat("a", MaxQueryLen+20)

	prepared := SearchRequest{Query: long}.prepare()
	assert.Len(t, []rune(prepared.Query), MaxQueryLen)
}

func TestPreparePaginationDefaults(t *testing.T) {
	prepared := SearchRequest{}.prepare()

	assert.Equal(t, 1, prepared.Pagination.PageOffset)
	assert.Equal(t, defaultPageSize, prepared.Pagination.PageSize)
	require.Len(t, prepared.Pagination.SortOrder, 1)
	assert.Equal(t, "post_date", prepared.Pagination.SortOrder[0].OrderBy)
	assert.Equal(t, SortDescending, prepared.Pagination.SortOrder[0].SortDirection)
}

func TestPrepareClampsPageSize(t *testing.T) {
	prepared := SearchRequest{
		Pagination: Pagination{PageOffset: 2, PageSize: 500, SortOrder: DefaultSortOrder()},
	}.prepare()

	assert.Equal(t, 2, prepared.Pagination.PageOffset)
	assert.Equal(t, maxPageSize, prepared.Pagination.PageSize)
}

func TestPrepareKeepsCallerSortOrder(t *testing.T) {
	prepared := SearchRequest{
		Pagination: Pagination{
			SortOrder: []SortOption{{OrderBy: "close_date", SortDirection: SortAscending}},
		},
	}.prepare()

	require.Len(t, prepared.Pagination.SortOrder, 1)
	assert.Equal(t, "close_date", prepared.Pagination.SortOrder[0].OrderBy)
}

func TestSearchRequestOmitsEmptyQuery(t *testing.T) {
	data, err := json.Marshal(SearchRequest{}.prepare())
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"query"`)
	assert.Contains(t, string(data), `"sort_order"`)
}

func TestFiltersPreserveUnknownKeys(t *testing.T) {
	payload := []byte(`{
		"opportunity_status": {"one_of": ["posted"]},
		"brand_new_filter": {"one_of": ["x"]}
	}`)

	var f Filters
	require.NoError(t, json.Unmarshal(payload, &f))

	require.NotNil(t, f.OpportunityStatus)
	assert.Equal(t, []string{"posted"}, f.OpportunityStatus.Values)
	require.Contains(t, f.Extra, "brand_new_filter")

	out, err := json.Marshal(f)
	require.NoError(t, err)

	var round map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Contains(t, round, "opportunity_status")
	assert.Contains(t, round, "brand_new_filter")
}

func TestFiltersTypedFieldWinsCollision(t *testing.T) {
	f := Filters{
		OpportunityStatus: &OneOf{Values: []string{"posted"}},
		Extra: map[string]json.RawMessage{
			"opportunity_status": json.RawMessage(`{"one_of":["forecasted"]}`),
		},
	}

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"posted"`)
	assert.NotContains(t, string(out), `"forecasted"`)
}
