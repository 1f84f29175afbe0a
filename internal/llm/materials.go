package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/scholarsense/opportunity-finder/internal/upstream"
)

//go:embed prompts/fit_analysis.md
var fitAnalysisPrompt string

//go:embed prompts/email.md
var emailPrompt string

//go:embed prompts/subject_line.md
var subjectLinePrompt string

//go:embed prompts/sop_paragraph.md
var sopParagraphPrompt string

//go:embed prompts/fit_bullets.md
var fitBulletsPrompt string

// FitAnalysis is the structured result of comparing a profile against an
// opportunity.
type FitAnalysis struct {
	FitScore              *int          `json:"fit_score"`
	Analysis              FitBreakdown  `json:"fit_analysis"`
	ExtractedRequirements []Requirement `json:"extracted_requirements,omitempty"`
}

type FitBreakdown struct {
	OverallFit      int      `json:"overall_fit"`
	Strengths       []string `json:"strengths,omitempty"`
	Gaps            []string `json:"gaps,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

type Requirement struct {
	RequirementText string `json:"requirement_text"`
	RequirementType string `json:"requirement_type"`
	IsMandatory     bool   `json:"is_mandatory"`
}

const fitAnalysisUserTemplate = `Analyze the fit between this candidate profile and opportunity.

CANDIDATE PROFILE:
{{PROFILE}}

OPPORTUNITY:
{{OPPORTUNITY}}

Provide detailed analysis in JSON format as specified.`

// AnalyzeFit scores how well the profile matches the opportunity and lists
// strengths, gaps and extracted requirements.
func (c *Client) AnalyzeFit(ctx context.Context, profileText, opportunityText string) (*FitAnalysis, error) {
	prompt := renderTemplate(fitAnalysisUserTemplate, map[string]string{
		"PROFILE":     profileText,
		"OPPORTUNITY": opportunityText,
	})

	raw, err := c.Complete(ctx, Request{
		System:      fitAnalysisPrompt,
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var analysis FitAnalysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &analysis); err != nil {
		return nil, &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   fmt.Sprintf("parse fit analysis: %v", err),
			Raw:      upstream.Snippet(raw),
		}
	}

	if analysis.FitScore == nil {
		return nil, &upstream.ValidationError{
			Upstream: upstreamName,
			Reason:   "fit analysis is missing fit_score",
			Raw:      upstream.Snippet(raw),
		}
	}

	return &analysis, nil
}

const emailUserTemplate = `Write a cold email for this opportunity based on the candidate's profile.

CANDIDATE PROFILE:
{{PROFILE}}

OPPORTUNITY:
{{OPPORTUNITY}}

FIT ANALYSIS:
{{FIT_ANALYSIS}}

Write a compelling cold email that:
1. Opens with a strong hook
2. Highlights 2-3 most relevant qualifications
3. Shows genuine interest and cultural fit
4. Includes a clear call to action
5. Maintains professional tone

Do not include subject line. Just the email body.`

// GenerateEmail writes a cold-email body for the opportunity.
func (c *Client) GenerateEmail(ctx context.Context, profileText, opportunityText string, fit *FitAnalysis) (string, error) {
	prompt := renderTemplate(emailUserTemplate, map[string]string{
		"PROFILE":      profileText,
		"OPPORTUNITY":  opportunityText,
		"FIT_ANALYSIS": fitAnalysisJSON(fit),
	})

	return c.Complete(ctx, Request{
		System:      emailPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   500,
	})
}

const subjectLineUserTemplate = `Create a compelling subject line for a cold email application.

CANDIDATE PROFILE:
{{PROFILE}}

OPPORTUNITY:
{{OPPORTUNITY}}

Write ONE subject line (max 80 characters) that:
- Mentions the position/opportunity
- Includes candidate name or key qualification
- Creates interest without being clickbait

Just return the subject line text, nothing else.`

// GenerateSubjectLine writes an email subject line for the opportunity.
func (c *Client) GenerateSubjectLine(ctx context.Context, profileText, opportunityText string) (string, error) {
	prompt := renderTemplate(subjectLineUserTemplate, map[string]string{
		"PROFILE":     profileText,
		"OPPORTUNITY": opportunityText,
	})

	return c.Complete(ctx, Request{
		System:      subjectLinePrompt,
		Prompt:      prompt,
		Temperature: 0.8,
		MaxTokens:   100,
	})
}

const sopParagraphUserTemplate = `Write a strong Statement of Purpose paragraph for this opportunity.

CANDIDATE PROFILE:
{{PROFILE}}

OPPORTUNITY:
{{OPPORTUNITY}}

FIT ANALYSIS:
{{FIT_ANALYSIS}}

Write ONE well-structured paragraph (150-200 words) that:
1. Connects candidate's experience to opportunity
2. Demonstrates specific knowledge/interest in the organization
3. Highlights unique value proposition
4. Shows alignment with goals

Return only the paragraph text.`

// GenerateSOPParagraph writes a statement-of-purpose paragraph.
func (c *Client) GenerateSOPParagraph(ctx context.Context, profileText, opportunityText string, fit *FitAnalysis) (string, error) {
	prompt := renderTemplate(sopParagraphUserTemplate, map[string]string{
		"PROFILE":      profileText,
		"OPPORTUNITY":  opportunityText,
		"FIT_ANALYSIS": fitAnalysisJSON(fit),
	})

	return c.Complete(ctx, Request{
		System:      sopParagraphPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   400,
	})
}

const fitBulletsUserTemplate = `Create bullet points highlighting the candidate's fit for this opportunity.

CANDIDATE PROFILE:
{{PROFILE}}

OPPORTUNITY:
{{OPPORTUNITY}}

FIT ANALYSIS:
{{FIT_ANALYSIS}}

Write 4-5 bullet points that:
- Start with strong action verbs
- Include specific achievements and impacts
- Directly address key requirements
- Are concise and scannable`

// GenerateFitBullets writes application bullet points.
func (c *Client) GenerateFitBullets(ctx context.Context, profileText, opportunityText string, fit *FitAnalysis) (string, error) {
	prompt := renderTemplate(fitBulletsUserTemplate, map[string]string{
		"PROFILE":      profileText,
		"OPPORTUNITY":  opportunityText,
		"FIT_ANALYSIS": fitAnalysisJSON(fit),
	})

	return c.Complete(ctx, Request{
		System:      fitBulletsPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   500,
	})
}

func renderTemplate(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}

	return out
}

func fitAnalysisJSON(fit *FitAnalysis) string {
	if fit == nil {
		return "not available"
	}

	data, err := json.MarshalIndent(fit, "", "  ")
	if err != nil {
		return "not available"
	}

	return string(data)
}
