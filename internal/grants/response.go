package grants

import (
	"encoding/json"
	"fmt"
)

// APIResponse is the raw Simpler.Grants search response. Items are kept as
// raw JSON so one malformed opportunity cannot fail the whole page; the
// normalizer decodes them one by one.
type APIResponse struct {
	Message        string            `json:"message"`
	Data           []json.RawMessage `json:"data"`
	PaginationInfo PaginationInfo    `json:"pagination_info"`
}

type PaginationInfo struct {
	PageOffset   int `json:"page_offset"`
	PageSize     int `json:"page_size"`
	TotalPages   int `json:"total_pages"`
	TotalRecords int `json:"total_records"`
}

// flexString accepts either a JSON string or a number; the upstream has been
// seen returning opportunity ids both ways.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = flexString(num.String())

	return nil
}
