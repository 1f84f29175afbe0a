package llm

import (
	"context"
	"encoding/json"
	"fmt"

	_ "embed"

	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

//go:embed prompts/profile_extract.md
var profileExtractPrompt string

// Profile is the structured record extracted from free-form resume text.
// Every field is optional; the extractor only reports what it finds.
type Profile struct {
	FullName           string          `json:"full_name,omitempty"`
	Email              string          `json:"email,omitempty"`
	PhoneNumber        string          `json:"phone_number,omitempty"`
	LinkedinURL        string          `json:"linkedin_url,omitempty"`
	GithubURL          string          `json:"github_url,omitempty"`
	PersonalWebsiteURL string          `json:"personal_website_url,omitempty"`
	Summary            string          `json:"summary,omitempty"`
	Skills             []string        `json:"skills,omitempty"`
	Education          []Education     `json:"education,omitempty"`
	Experience         []Experience    `json:"experience,omitempty"`
	Projects           []Project       `json:"projects,omitempty"`
	Languages          []Language      `json:"languages,omitempty"`
	Certifications     []Certification `json:"certifications,omitempty"`
	Awards             []Award         `json:"awards,omitempty"`
}

type Education struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

type Experience struct {
	Company          string   `json:"company,omitempty"`
	Position         string   `json:"position,omitempty"`
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

type Project struct {
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

type Language struct {
	Language    string `json:"language,omitempty"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Certification struct {
	Name                string `json:"name,omitempty"`
	IssuingOrganization string `json:"issuing_organization,omitempty"`
	DateIssued          string `json:"date_issued,omitempty"`
}

type Award struct {
	Name                string `json:"name,omitempty"`
	IssuingOrganization string `json:"issuing_organization,omitempty"`
	DateAwarded         string `json:"date_awarded,omitempty"`
}

// ExtractProfile derives a structured profile from resume text. Callers run
// this as a best-effort side-channel after an upload: a failure here must
// never fail the upload itself.
func (c *Client) ExtractProfile(ctx context.Context, resumeText string) (*Profile, error) {
	prompt := fmt.Sprintf("Please extract the profile information from the following text:\n\n%s", resumeText)

	raw, err := c.Complete(ctx, Request{
		System:      profileExtractPrompt,
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   3000,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal([]byte(extractJSON(raw)), &profile); err != nil {
		return nil, &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   fmt.Sprintf("parse extracted profile: %v", err),
			Raw:      upstream.Snippet(raw),
		}
	}

	return &profile, nil
}
