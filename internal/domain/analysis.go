package domain

import "slices"

// Sentiment holds relative weights. They are not required to sum to 100.
type Sentiment struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// MentalHealthIndicators are four independent 0-100 scores. Values outside
// the range are kept as the model produced them.
type MentalHealthIndicators struct {
	Anxiety    float64 `json:"anxiety"`
	Depression float64 `json:"depression"`
	Stress     float64 `json:"stress"`
	Wellbeing  float64 `json:"wellbeing"`
}

// PostAnalysis is the breakdown for one analyzed URL.
type PostAnalysis struct {
	URL            string         `json:"url"`
	Caption        string         `json:"caption"`
	Status         OverallStatus  `json:"status,omitempty"`
	Sentiment      SentimentLabel `json:"sentiment"`
	Concerns       []string       `json:"concerns"`
	SupportMessage string         `json:"supportMessage,omitempty"`
}

type CrisisResource struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
}

type CrisisResources struct {
	Show      bool             `json:"show"`
	Message   string           `json:"message"`
	Resources []CrisisResource `json:"resources"`
}

// AnalysisResult is the structured outcome of one analysis. It is treated as
// immutable once produced; optional fields stay nil/empty when the model
// omitted them.
type AnalysisResult struct {
	Summary                string                 `json:"summary"`
	OverallStatus          OverallStatus          `json:"overallStatus,omitempty"`
	NeedsSupport           *bool                  `json:"needsSupport,omitempty"`
	Sentiment              Sentiment              `json:"sentiment"`
	MentalHealthIndicators MentalHealthIndicators `json:"mentalHealthIndicators"`
	Posts                  []PostAnalysis         `json:"posts"`
	Recommendations        []string               `json:"recommendations"`
	CrisisResources        *CrisisResources       `json:"crisisResources,omitempty"`
}

// PostInput pairs an input URL with the caption fetched for it.
type PostInput struct {
	URL     string
	Caption string
}

// Clone returns a deep copy. Nil slices and pointers stay nil.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	if r.NeedsSupport != nil {
		v := *r.NeedsSupport
		out.NeedsSupport = &v
	}
	if r.Posts != nil {
		out.Posts = make([]PostAnalysis, len(r.Posts))
		for i, p := range r.Posts {
			p.Concerns = slices.Clone(p.Concerns)
			out.Posts[i] = p
		}
	}
	out.Recommendations = slices.Clone(r.Recommendations)
	if r.CrisisResources != nil {
		cr := *r.CrisisResources
		cr.Resources = slices.Clone(cr.Resources)
		out.CrisisResources = &cr
	}
	return out
}
