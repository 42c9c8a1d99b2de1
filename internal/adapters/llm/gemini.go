package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/mindlens/internal/domain"
)

type GeminiConfig struct {
	// APIKey selects the Gemini API backend; empty means Vertex AI.
	APIKey    string
	ProjectID string
	Location  string
	ModelName string
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
}

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

var _ domain.ModelClient = (*GeminiClient)(nil)

// NewGeminiClient creates a ModelClient backed by Gemini, either through
// Vertex AI (project + location) or the Gemini API (api key).
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	modelName := cfg.ModelName
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	} else {
		if cfg.ProjectID == "" || cfg.Location == "" {
			return nil, fmt.Errorf("gcp project and location must be set for vertex ai")
		}
		cc.Project = cfg.ProjectID
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	}

	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate implements domain.ModelClient.
func (g *GeminiClient) Generate(ctx context.Context, prompt domain.Prompt) (domain.Generation, error) {
	temp := float32(0.4)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   int32(8192),
		ResponseMIMEType:  "application/json",
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt.User), cfg)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("gemini generate content: %w", err)
	}

	// empty text is reported as a successful but empty generation
	return domain.Generation{
		OK:   true,
		Text: res.Text(),
	}, nil
}
