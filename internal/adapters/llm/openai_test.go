package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindlens/internal/adapters/llm"
	"github.com/PabloGalante/mindlens/internal/domain"
)

func TestOpenAIClientGenerate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"summary\":\"ok\"}"}}]
		}`)
	}))
	defer srv.Close()

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "test-model", MaxRetries: -1})
	require.NoError(t, err)

	gen, err := client.Generate(context.Background(), domain.Prompt{System: "sys", User: "user"})
	require.NoError(t, err)
	assert.True(t, gen.OK)
	assert.Equal(t, `{"summary":"ok"}`, gen.Text)
	assert.Equal(t, "test-model", gotBody["model"])
	assert.Len(t, gotBody["messages"], 2)
}

func TestOpenAIClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{BaseURL: srv.URL, APIKey: "k", MaxRetries: -1})
	require.NoError(t, err)

	gen, err := client.Generate(context.Background(), domain.Prompt{User: "user"})
	require.NoError(t, err)
	assert.False(t, gen.OK)
	assert.Equal(t, http.StatusBadRequest, gen.StatusCode)
}

func TestOpenAIClientRequiresKey(t *testing.T) {
	_, err := llm.NewOpenAIClient(llm.OpenAIConfig{})
	assert.Error(t, err)
}

func TestMockClientCoversPromptURLs(t *testing.T) {
	inputs := []domain.PostInput{{URL: "https://instagram.com/a", Caption: "x"}, {URL: "https://instagram.com/b", Caption: "y"}}
	p := llm.BuildPrompt(inputs, llm.DefaultProfiles()["wellbeing"])

	gen, err := llm.NewMockClient().Generate(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, gen.OK)
	assert.Contains(t, gen.Text, `"url":"https://instagram.com/a"`)
	assert.Contains(t, gen.Text, `"url":"https://instagram.com/b"`)
}
