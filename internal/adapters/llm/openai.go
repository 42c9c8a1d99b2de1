package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/PabloGalante/mindlens/internal/domain"
)

const (
	DefaultOpenAIBaseURL        = "https://api.openai.com/v1"
	DefaultOpenAIModel          = "gpt-4o-mini"
	DefaultOpenAIMaxRetries     = 2
	DefaultOpenAIRequestTimeout = 90 * time.Second
)

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	MaxRetries     int
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

func (c OpenAIConfig) withDefaults() OpenAIConfig {
	out := c
	if strings.TrimSpace(out.BaseURL) == "" {
		out.BaseURL = DefaultOpenAIBaseURL
	}
	if strings.TrimSpace(out.Model) == "" {
		out.Model = DefaultOpenAIModel
	}
	// negative disables retries
	switch {
	case out.MaxRetries < 0:
		out.MaxRetries = 0
	case out.MaxRetries == 0:
		out.MaxRetries = DefaultOpenAIMaxRetries
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = DefaultOpenAIRequestTimeout
	}
	if out.HTTPClient == nil {
		out.HTTPClient = &http.Client{Timeout: out.RequestTimeout}
	}
	return out
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client openaigo.Client
	model  string
}

var _ domain.ModelClient = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	client := openaigo.NewClient(
		option.WithBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")),
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.RequestTimeout),
	)

	return &OpenAIClient{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

// Generate implements domain.ModelClient.
func (c *OpenAIClient) Generate(ctx context.Context, prompt domain.Prompt) (domain.Generation, error) {
	var messages []openaigo.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openaigo.SystemMessage(prompt.System))
	}
	messages = append(messages, openaigo.UserMessage(prompt.User))

	resp, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		var apiErr *openaigo.Error
		if errors.As(err, &apiErr) {
			return domain.Generation{OK: false, StatusCode: apiErr.StatusCode}, nil
		}
		return domain.Generation{}, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.Generation{OK: true, StatusCode: http.StatusOK}, nil
	}
	return domain.Generation{
		OK:         true,
		Text:       resp.Choices[0].Message.Content,
		StatusCode: http.StatusOK,
	}, nil
}
