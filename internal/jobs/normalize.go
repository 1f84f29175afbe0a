package jobs

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// APIResponse is the raw Adzuna search response. Results stay raw so a single
// malformed job cannot fail the page.
type APIResponse struct {
	Count   int               `json:"count"`
	Mean    float64           `json:"mean,omitempty"`
	Results []json.RawMessage `json:"results"`
}

// Job is the internal record a raw Adzuna result normalizes into, with the
// nested company/location/category objects flattened to display values.
type Job struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
	SalaryMin    *float64 `json:"salary_min,omitempty"`
	SalaryMax    *float64 `json:"salary_max,omitempty"`
	Description  string   `json:"description,omitempty"`
	URL          string   `json:"url,omitempty"`
	Created      string   `json:"created,omitempty"`
	Category     string   `json:"category,omitempty"`
	ContractTime string   `json:"contract_time,omitempty"`
	ContractType string   `json:"contract_type,omitempty"`
}

type apiJob struct {
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Created     string     `json:"created"`
	RedirectURL string     `json:"redirect_url"`

	Location *struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Category *struct {
		Tag   string `json:"tag"`
		Label string `json:"label"`
	} `json:"category"`
	Company *struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`

	SalaryMin    *float64 `json:"salary_min"`
	SalaryMax    *float64 `json:"salary_max"`
	ContractTime string   `json:"contract_time"`
	ContractType string   `json:"contract_type"`
}

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

// Normalize maps the raw results of resp into Job records, preserving
// upstream ordering and skipping items that miss required fields.
func Normalize(resp *APIResponse, logger *zap.Logger) []Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	items := make([]Job, 0, len(resp.Results))
	for i, raw := range resp.Results {
		job, err := normalizeItem(raw)
		if err != nil {
			logger.Warn("skipping malformed job result",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		items = append(items, job)
	}

	return items
}

func normalizeItem(raw json.RawMessage) (Job, error) {
	var item apiJob
	if err := json.Unmarshal(raw, &item); err != nil {
		return Job{}, err
	}

	if item.ID == "" {
		return Job{}, errors.New("missing id")
	}
	if item.Title == "" {
		return Job{}, errors.New("missing title")
	}

	job := Job{
		ID:           string(item.ID),
		Title:        item.Title,
		SalaryMin:    item.SalaryMin,
		SalaryMax:    item.SalaryMax,
		Description:  item.Description,
		URL:          item.RedirectURL,
		Created:      item.Created,
		ContractTime: item.ContractTime,
		ContractType: item.ContractType,
	}

	if item.Company != nil {
		job.Company = item.Company.DisplayName
	}
	if item.Location != nil {
		job.Location = item.Location.DisplayName
	}
	if item.Category != nil {
		job.Category = item.Category.Label
	}

	return job, nil
}
