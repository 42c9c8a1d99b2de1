package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindlens/internal/adapters/caption"
	httpadapter "github.com/PabloGalante/mindlens/internal/adapters/http"
	"github.com/PabloGalante/mindlens/internal/adapters/llm"
	"github.com/PabloGalante/mindlens/internal/adapters/storage/memory"
	"github.com/PabloGalante/mindlens/internal/app/analysis"
	"github.com/PabloGalante/mindlens/internal/app/chat"
	"github.com/PabloGalante/mindlens/internal/app/sessions"
	"github.com/PabloGalante/mindlens/internal/domain"
)

type emptyModel struct{}

func (emptyModel) Generate(context.Context, domain.Prompt) (domain.Generation, error) {
	return domain.Generation{OK: true}, nil
}

func newTestServer(t *testing.T, model domain.ModelClient) http.Handler {
	t.Helper()

	store := sessions.NewStore(memory.NewBlobStore())
	orch := analysis.NewOrchestrator(caption.PlaceholderExtractor{}, model, llm.DefaultProfiles()["wellbeing"])
	svc := chat.NewService(orch, store)

	return httpadapter.NewServer(svc)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, llm.NewMockClient())

	w := do(t, srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAnalyzeAndManageSessions(t *testing.T) {
	srv := newTestServer(t, llm.NewMockClient())

	w := do(t, srv, http.MethodPost, "/analyses", `{"urls":["https://instagram.com/alice"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[struct {
		Session domain.ChatSession `json:"session"`
	}](t, w)
	id := string(created.Session.ID)
	assert.Equal(t, "alice", created.Session.Title)
	require.Len(t, created.Session.Result.Posts, 1)
	assert.Equal(t, "https://instagram.com/alice", created.Session.Result.Posts[0].URL)

	w = do(t, srv, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Sessions         []domain.ChatSession `json:"sessions"`
		CurrentSessionID string               `json:"currentSessionId"`
	}](t, w)
	assert.Len(t, list.Sessions, 1)
	assert.Equal(t, id, list.CurrentSessionID)

	w = do(t, srv, http.MethodPatch, "/sessions/"+id, `{"title":"   "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[domain.ChatSession](t, w).Title)

	w = do(t, srv, http.MethodPatch, "/sessions/"+id, `{"title":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[domain.ChatSession](t, w).Title)

	w = do(t, srv, http.MethodPost, "/new-chat", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, srv, http.MethodGet, "/sessions/current", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodPost, "/sessions/"+id+"/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodGet, "/sessions/current", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, string(decode[domain.ChatSession](t, w).ID))

	w = do(t, srv, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, srv, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, http.MethodPost, "/sessions/"+id+"/select", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, http.MethodPatch, "/sessions/"+id, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeValidation(t *testing.T) {
	srv := newTestServer(t, llm.NewMockClient())

	tests := map[string]string{
		"bad json":    `{"urls":`,
		"no urls":     `{"urls":[]}`,
		"blank urls":  `{"urls":["  "]}`,
		"invalid url": `{"urls":["https://example.com/a"]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/analyses", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := do(t, srv, http.MethodGet, "/analyses", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAnalyzeEmptyModelResponse(t *testing.T) {
	srv := newTestServer(t, emptyModel{})

	w := do(t, srv, http.MethodPost, "/analyses", `{"urls":["https://instagram.com/alice"]}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "no response")

	w = do(t, srv, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[struct {
		Analyzing        bool   `json:"analyzing"`
		CurrentSessionID string `json:"currentSessionId"`
	}](t, w)
	assert.False(t, st.Analyzing)
	assert.Empty(t, st.CurrentSessionID)

	w = do(t, srv, http.MethodGet, "/sessions", "")
	assert.Contains(t, w.Body.String(), `"sessions":[]`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, llm.NewMockClient())

	w := do(t, srv, http.MethodOptions, "/analyses", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
