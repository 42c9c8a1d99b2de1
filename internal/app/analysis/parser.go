package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PabloGalante/mindlens/internal/domain"
)

// FallbackRecommendation is the only recommendation of a synthesized result.
const FallbackRecommendation = "Consider speaking with a mental health professional if you have concerns"

var (
	DefaultSentiment  = domain.Sentiment{Positive: 50, Negative: 25, Neutral: 25}
	DefaultIndicators = domain.MentalHealthIndicators{Anxiety: 30, Depression: 20, Stress: 40, Wellbeing: 60}
)

type OutcomeKind int

const (
	WellFormed OutcomeKind = iota
	Fallback
)

func (k OutcomeKind) String() string {
	if k == WellFormed {
		return "well_formed"
	}
	return "fallback"
}

// Outcome is the result of ingesting one model response. Both kinds carry a
// usable Result; Reason explains a Fallback.
type Outcome struct {
	Kind   OutcomeKind
	Result domain.AnalysisResult
	Reason string
}

// modelResult mirrors domain.AnalysisResult with pointers where presence
// matters for validation.
type modelResult struct {
	Summary                *string                        `json:"summary"`
	OverallStatus          domain.OverallStatus           `json:"overallStatus"`
	NeedsSupport           *bool                          `json:"needsSupport"`
	Sentiment              *domain.Sentiment              `json:"sentiment"`
	MentalHealthIndicators *domain.MentalHealthIndicators `json:"mentalHealthIndicators"`
	Posts                  []domain.PostAnalysis          `json:"posts"`
	Recommendations        []string                       `json:"recommendations"`
	CrisisResources        *domain.CrisisResources        `json:"crisisResources"`
}

// Parse turns raw model text into an AnalysisResult with one post per input.
// It never fails.
func Parse(raw string, inputs []domain.PostInput) domain.AnalysisResult {
	return ParseOutcome(raw, inputs).Result
}

// ParseOutcome is Parse, also reporting which branch produced the result.
func ParseOutcome(raw string, inputs []domain.PostInput) Outcome {
	span, ok := jsonSpan(raw)
	if !ok {
		return fallback(raw, inputs, "no json object found")
	}

	var mr modelResult
	if err := json.Unmarshal([]byte(span), &mr); err != nil {
		return fallback(raw, inputs, fmt.Sprintf("invalid json: %v", err))
	}
	if mr.Summary == nil || strings.TrimSpace(*mr.Summary) == "" {
		return fallback(raw, inputs, "missing summary")
	}

	res := domain.AnalysisResult{
		Summary:         *mr.Summary,
		OverallStatus:   mr.OverallStatus,
		NeedsSupport:    mr.NeedsSupport,
		Sentiment:       DefaultSentiment,
		Posts:           alignPosts(mr.Posts, inputs),
		Recommendations: mr.Recommendations,
		CrisisResources: mr.CrisisResources,
	}
	if mr.Sentiment != nil {
		res.Sentiment = *mr.Sentiment
	}
	res.MentalHealthIndicators = DefaultIndicators
	if mr.MentalHealthIndicators != nil {
		res.MentalHealthIndicators = *mr.MentalHealthIndicators
	}
	if res.Recommendations == nil {
		res.Recommendations = []string{}
	}

	return Outcome{Kind: WellFormed, Result: res}
}

// jsonSpan returns the text from the first '{' to the last '}'.
func jsonSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// alignPosts returns exactly one post per input, in input order.
func alignPosts(posts []domain.PostAnalysis, inputs []domain.PostInput) []domain.PostAnalysis {
	out := make([]domain.PostAnalysis, len(inputs))
	for i, in := range inputs {
		if i >= len(posts) {
			out[i] = neutralPost(in)
			continue
		}
		p := posts[i]
		p.URL = in.URL
		if p.Caption == "" {
			p.Caption = captionOrPlaceholder(in.Caption)
		}
		if p.Sentiment == "" {
			p.Sentiment = domain.SentimentNeutral
		}
		if p.Concerns == nil {
			p.Concerns = []string{}
		}
		out[i] = p
	}
	return out
}

func fallback(raw string, inputs []domain.PostInput, reason string) Outcome {
	posts := make([]domain.PostAnalysis, len(inputs))
	for i, in := range inputs {
		posts[i] = neutralPost(in)
	}
	return Outcome{
		Kind: Fallback,
		Result: domain.AnalysisResult{
			Summary:                raw,
			Sentiment:              DefaultSentiment,
			MentalHealthIndicators: DefaultIndicators,
			Posts:                  posts,
			Recommendations:        []string{FallbackRecommendation},
		},
		Reason: reason,
	}
}

func neutralPost(in domain.PostInput) domain.PostAnalysis {
	return domain.PostAnalysis{
		URL:       in.URL,
		Caption:   captionOrPlaceholder(in.Caption),
		Sentiment: domain.SentimentNeutral,
		Concerns:  []string{},
	}
}

func captionOrPlaceholder(c string) string {
	if strings.TrimSpace(c) == "" {
		return domain.PlaceholderCaption
	}
	return c
}
