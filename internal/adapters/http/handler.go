package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/PabloGalante/mindlens/internal/app/chat"
	"github.com/PabloGalante/mindlens/internal/domain"
	"github.com/PabloGalante/mindlens/internal/observability"
)

const (
	maxBodyBytes = 1 << 20
	maxURLs      = 10
)

type Server struct {
	svc *chat.Service
}

func NewServer(svc *chat.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/status", s.handleStatus)

	// /analyses → run an analysis and create a session (POST)
	mux.HandleFunc("/analyses", s.handleAnalyses)

	// /new-chat → clear the current session pointer (POST)
	mux.HandleFunc("/new-chat", s.handleNewChat)

	// /sessions         → GET: list sessions
	// /sessions/current → GET: current session
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}        → GET, PATCH (rename), DELETE
	// /sessions/{id}/select → POST
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type analyzeRequest struct {
	URLs []string `json:"urls"`
}

type analyzeResponse struct {
	Session domain.ChatSession `json:"session"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type statusResponse struct {
	Analyzing        bool   `json:"analyzing"`
	CurrentSessionID string `json:"currentSessionId,omitempty"`
}

type listSessionsResponse struct {
	Sessions         []domain.ChatSession `json:"sessions"`
	CurrentSessionID string               `json:"currentSessionId,omitempty"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	resp := statusResponse{Analyzing: s.svc.IsAnalyzing()}
	if cur, ok := s.svc.CurrentSession(); ok {
		resp.CurrentSessionID = string(cur.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// /analyses
func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleAnalyze(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /new-chat
func (s *Server) handleNewChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.svc.NewChat(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		resp := listSessionsResponse{Sessions: s.svc.ListSessions(r.Context())}
		if cur, ok := s.svc.CurrentSession(); ok {
			resp.CurrentSessionID = string(cur.ID)
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}, /sessions/{id}/select or /sessions/current
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		if id == "current" {
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			s.handleGetCurrent(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, domain.SessionID(id))
		case http.MethodPatch:
			s.handleRenameSession(w, r, domain.SessionID(id))
		case http.MethodDelete:
			s.handleDeleteSession(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "select" {
		switch r.Method {
		case http.MethodPost:
			s.handleSelectSession(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	urls, err := domain.NormalizeURLs(req.URLs)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if len(urls) == 0 {
		badRequest(w, "urls is required")
		return
	}
	if len(urls) > maxURLs {
		badRequest(w, "too many urls")
		return
	}

	out, err := s.svc.Analyze(r.Context(), chat.AnalyzeInput{URLs: urls})
	if err != nil {
		s.analysisError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, analyzeResponse{Session: out.Session})
}

func (s *Server) analysisError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *domain.AnalysisError
	switch {
	case errors.Is(err, domain.ErrAnalysisInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &ae) && ae.Kind == domain.KindInvalidRequest:
		badRequest(w, ae.UserMessage())
	case errors.As(err, &ae):
		writeError(w, http.StatusBadGateway, ae.UserMessage())
	default:
		internalError(w, r, err)
	}
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	cur, ok := s.svc.CurrentSession()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	cs, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			notFound(w)
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req renameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if _, err := s.svc.GetSession(r.Context(), id); err != nil {
		notFound(w)
		return
	}

	// blank titles leave the session unchanged
	s.svc.RenameSession(r.Context(), id, req.Title)

	cs, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	s.svc.DeleteSession(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.svc.SelectSession(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			notFound(w)
			return
		}
		internalError(w, r, err)
		return
	}
	cs, _ := s.svc.CurrentSession()
	writeJSON(w, http.StatusOK, cs)
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "session not found")
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Errorw("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
