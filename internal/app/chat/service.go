package chat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/PabloGalante/mindlens/internal/app/sessions"
	"github.com/PabloGalante/mindlens/internal/domain"
	"github.com/PabloGalante/mindlens/internal/observability"
)

// Analyzer produces an AnalysisResult for a set of urls.
type Analyzer interface {
	Analyze(ctx context.Context, urls []string) (domain.AnalysisResult, error)
}

type Service struct {
	analyzer Analyzer
	sessions *sessions.Store

	analyzing atomic.Bool
}

func NewService(analyzer Analyzer, store *sessions.Store) *Service {
	return &Service{
		analyzer: analyzer,
		sessions: store,
	}
}

type AnalyzeInput struct {
	URLs []string
}

type AnalyzeOutput struct {
	Session domain.ChatSession
}

// Analyze runs one analysis and commits it as the new current session.
// Only one analysis may be in flight; a second call fails with
// domain.ErrAnalysisInFlight.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeOutput, error) {
	if !s.analyzing.CompareAndSwap(false, true) {
		return nil, domain.ErrAnalysisInFlight
	}
	defer s.analyzing.Store(false)

	log := observability.LoggerFromContext(ctx).With("url_count", len(in.URLs))
	log.Infow("analyze request")

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, in.URLs)
	if err != nil {
		log.Errorw("analysis failed", "error", err)
		return nil, err
	}

	session, err := s.sessions.Create(ctx, in.URLs, result)
	if err != nil {
		log.Errorw("failed to create session", "error", err)
		return nil, err
	}

	log.Infow("analyze completed",
		"session_id", session.ID,
		"elapsed_ms", time.Since(start).Milliseconds())

	return &AnalyzeOutput{Session: session}, nil
}

// IsAnalyzing reports whether an analysis is in flight.
func (s *Service) IsAnalyzing() bool {
	return s.analyzing.Load()
}

func (s *Service) ListSessions(ctx context.Context) []domain.ChatSession {
	list := s.sessions.List()
	observability.LoggerFromContext(ctx).Debugw("listed sessions", "count", len(list))
	return list
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (domain.ChatSession, error) {
	cs, err := s.sessions.Get(id)
	if err != nil {
		observability.LoggerFromContext(ctx).Infow("session lookup failed", "session_id", id, "error", err)
	}
	return cs, err
}

// CurrentSession returns the current session; false in the new-chat state.
func (s *Service) CurrentSession() (domain.ChatSession, bool) {
	return s.sessions.Current()
}

func (s *Service) SelectSession(ctx context.Context, id domain.SessionID) error {
	log := observability.LoggerFromContext(ctx).With("session_id", id)
	if err := s.sessions.Select(id); err != nil {
		log.Infow("select session failed", "error", err)
		return err
	}
	log.Infow("session selected")
	return nil
}

// RenameSession reports whether the title changed.
func (s *Service) RenameSession(ctx context.Context, id domain.SessionID, title string) bool {
	changed := s.sessions.Rename(ctx, id, title)
	observability.LoggerFromContext(ctx).Infow("rename session", "session_id", id, "changed", changed)
	return changed
}

// DeleteSession reports whether a session was removed.
func (s *Service) DeleteSession(ctx context.Context, id domain.SessionID) bool {
	removed := s.sessions.Remove(ctx, id)
	observability.LoggerFromContext(ctx).Infow("delete session", "session_id", id, "removed", removed)
	return removed
}

func (s *Service) NewChat(ctx context.Context) {
	s.sessions.NewChat()
	observability.LoggerFromContext(ctx).Infow("new chat")
}
