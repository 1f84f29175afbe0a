package jobs

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

const (
	defaultCountry        = "us"
	defaultPage           = 1
	defaultResultsPerPage = 10
	maxResultsPerPage     = 50
)

// SearchRequest describes one Adzuna search. Country and Page become path
// segments; everything else is query parameters. The adzuna tag names the
// wire parameter; "-" keeps a field out of the query string.
type SearchRequest struct {
	Country        string `json:"country,omitempty" adzuna:"-"`
	Page           int    `json:"page,omitempty" adzuna:"-"`
	ResultsPerPage int    `json:"results_per_page,omitempty" adzuna:"results_per_page"`

	What     string `json:"what,omitempty" adzuna:"what"`
	Where    string `json:"where,omitempty" adzuna:"where"`
	Distance int    `json:"distance,omitempty" adzuna:"distance"`
	Category string `json:"category,omitempty" adzuna:"category"`

	SalaryMin int `json:"salary_min,omitempty" adzuna:"salary_min"`
	SalaryMax int `json:"salary_max,omitempty" adzuna:"salary_max"`

	FullTime  *bool `json:"full_time,omitempty" adzuna:"full_time"`
	PartTime  *bool `json:"part_time,omitempty" adzuna:"part_time"`
	Contract  *bool `json:"contract,omitempty" adzuna:"contract"`
	Permanent *bool `json:"permanent,omitempty" adzuna:"permanent"`

	MaxDaysOld int    `json:"max_days_old,omitempty" adzuna:"max_days_old"`
	SortBy     string `json:"sort_by,omitempty" adzuna:"sort_by"`
	SortDir    string `json:"sort_dir,omitempty" adzuna:"sort_dir"`
}

// withDefaults returns a copy with country, page and page size usable.
func (r SearchRequest) withDefaults() SearchRequest {
	if strings.TrimSpace(r.Country) == "" {
		r.Country = defaultCountry
	}
	r.Country = strings.ToLower(strings.TrimSpace(r.Country))

	if r.Page < 1 {
		r.Page = defaultPage
	}
	if r.ResultsPerPage < 1 {
		r.ResultsPerPage = defaultResultsPerPage
	}
	if r.ResultsPerPage > maxResultsPerPage {
		r.ResultsPerPage = maxResultsPerPage
	}

	return r
}

// buildParams walks the request fields and emits the query parameters named
// by the adzuna tag. Boolean flags travel as "1"/"0"; zero strings and ints
// are omitted.
func buildParams(params *SearchRequest) url.Values {
	q := url.Values{}

	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		key := field.Tag.Get("adzuna")
		if key == "" || key == "-" {
			continue
		}

		value := reflect.ValueOf(params).Elem().FieldByIndex(field.Index)
		switch field.Type.Kind() {
		case reflect.Pointer:
			if value.IsNil() {
				continue
			}
			if value.Elem().Bool() {
				q.Set(key, "1")
			} else {
				q.Set(key, "0")
			}
		case reflect.Int:
			if value.Int() != 0 {
				q.Set(key, strconv.FormatInt(value.Int(), 10))
			}
		default:
			if s := strings.TrimSpace(value.String()); s != "" {
				q.Set(key, s)
			}
		}
	}

	return q
}
