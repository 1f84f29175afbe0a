package grants

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

// Opportunity is the internal record a raw upstream opportunity normalizes
// into, with the summary-nested fields flattened.
type Opportunity struct {
	ID                 string   `json:"opportunity_id"`
	Number             string   `json:"opportunity_number"`
	Title              string   `json:"title"`
	AgencyName         string   `json:"agency_name"`
	AgencyCode         string   `json:"agency_code,omitempty"`
	PostDate           string   `json:"post_date,omitempty"`
	CloseDate          string   `json:"close_date,omitempty"`
	Status             string   `json:"opportunity_status"`
	FundingInstruments []string `json:"funding_instruments,omitempty"`
	FundingCategories  []string `json:"funding_categories,omitempty"`
	AwardFloor         *float64 `json:"award_floor,omitempty"`
	AwardCeiling       *float64 `json:"award_ceiling,omitempty"`
	IsCostSharing      *bool    `json:"is_cost_sharing,omitempty"`
}

// apiOpportunity accepts both raw shapes the upstream produces: the search
// shape nests dates and award fields under "summary", the suggestions shape
// carries them at the top level.
type apiOpportunity struct {
	OpportunityID     flexString `json:"opportunity_id"`
	OpportunityNumber flexString `json:"opportunity_number"`
	OpportunityTitle  string     `json:"opportunity_title"`
	AgencyCode        string     `json:"agency_code"`
	AgencyName        string     `json:"agency_name"`
	OpportunityStatus string     `json:"opportunity_status"`

	PostDate           string   `json:"post_date"`
	CloseDate          string   `json:"close_date"`
	FundingInstruments []string `json:"funding_instruments"`
	FundingCategories  []string `json:"funding_categories"`
	AwardFloor         *float64 `json:"award_floor"`
	AwardCeiling       *float64 `json:"award_ceiling"`
	IsCostSharing      *bool    `json:"is_cost_sharing"`

	Summary *opportunitySummary `json:"summary"`
}

type opportunitySummary struct {
	PostDate           string   `json:"post_date"`
	CloseDate          string   `json:"close_date"`
	FundingInstruments []string `json:"funding_instruments"`
	FundingCategories  []string `json:"funding_categories"`
	AwardFloor         *float64 `json:"award_floor"`
	AwardCeiling       *float64 `json:"award_ceiling"`
	IsCostSharing      *bool    `json:"is_cost_sharing"`
}

// Normalize maps the raw items of resp into Opportunity records, preserving
// upstream ordering. Items that fail to decode or miss required identifiers
// are logged and skipped; the rest of the page is unaffected.
func Normalize(resp *APIResponse, logger *zap.Logger) []Opportunity {
	if logger == nil {
		logger = zap.NewNop()
	}

	items := make([]Opportunity, 0, len(resp.Data))
	for i, raw := range resp.Data {
		opp, err := normalizeItem(raw)
		if err != nil {
			logger.Warn("skipping malformed grant opportunity",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		items = append(items, opp)
	}

	return items
}

func normalizeItem(raw json.RawMessage) (Opportunity, error) {
	var item apiOpportunity
	if err := json.Unmarshal(raw, &item); err != nil {
		return Opportunity{}, err
	}

	if item.OpportunityID == "" {
		return Opportunity{}, errors.New("missing opportunity_id")
	}
	if item.OpportunityTitle == "" {
		return Opportunity{}, errors.New("missing opportunity_title")
	}

	if item.Summary != nil {
		return fromSummaryShape(item), nil
	}

	return fromFlatShape(item), nil
}

// fromSummaryShape maps the search raw shape, where dates and award fields
// live inside the nested summary object.
func fromSummaryShape(item apiOpportunity) Opportunity {
	s := item.Summary

	return Opportunity{
		ID:                 string(item.OpportunityID),
		Number:             string(item.OpportunityNumber),
		Title:              item.OpportunityTitle,
		AgencyName:         item.AgencyName,
		AgencyCode:         item.AgencyCode,
		PostDate:           s.PostDate,
		CloseDate:          s.CloseDate,
		Status:             item.OpportunityStatus,
		FundingInstruments: s.FundingInstruments,
		FundingCategories:  s.FundingCategories,
		AwardFloor:         s.AwardFloor,
		AwardCeiling:       s.AwardCeiling,
		IsCostSharing:      s.IsCostSharing,
	}
}

// fromFlatShape maps the suggestions raw shape, where everything sits at the
// top level.
func fromFlatShape(item apiOpportunity) Opportunity {
	return Opportunity{
		ID:                 string(item.OpportunityID),
		Number:             string(item.OpportunityNumber),
		Title:              item.OpportunityTitle,
		AgencyName:         item.AgencyName,
		AgencyCode:         item.AgencyCode,
		PostDate:           item.PostDate,
		CloseDate:          item.CloseDate,
		Status:             item.OpportunityStatus,
		FundingInstruments: item.FundingInstruments,
		FundingCategories:  item.FundingCategories,
		AwardFloor:         item.AwardFloor,
		AwardCeiling:       item.AwardCeiling,
		IsCostSharing:      item.IsCostSharing,
	}
}
