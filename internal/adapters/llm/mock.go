package llm

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/PabloGalante/mindlens/internal/domain"
)

var promptURLLine = regexp.MustCompile(`(?m)^\d+\. (\S+)$`)

// MockClient answers every prompt with a fixed, healthy analysis covering the
// urls listed in the prompt. Useful for local development.
type MockClient struct{}

var _ domain.ModelClient = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(_ context.Context, prompt domain.Prompt) (domain.Generation, error) {
	needsSupport := false
	result := domain.AnalysisResult{
		Summary:                "The posts show a calm, mostly positive mood.",
		OverallStatus:          domain.StatusHealthy,
		NeedsSupport:           &needsSupport,
		Sentiment:              domain.Sentiment{Positive: 70, Negative: 10, Neutral: 20},
		MentalHealthIndicators: domain.MentalHealthIndicators{Anxiety: 15, Depression: 10, Stress: 20, Wellbeing: 80},
		Recommendations:        []string{"Keep doing the things that make you feel good."},
	}
	for _, match := range promptURLLine.FindAllStringSubmatch(prompt.User, -1) {
		result.Posts = append(result.Posts, domain.PostAnalysis{
			URL:            match[1],
			Status:         domain.StatusHealthy,
			Sentiment:      domain.SentimentPositive,
			Concerns:       []string{},
			SupportMessage: "You are doing great.",
		})
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return domain.Generation{}, err
	}
	return domain.Generation{OK: true, Text: "```json\n" + string(raw) + "\n```", StatusCode: 200}, nil
}
