package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/mindlens/internal/domain"
	"github.com/PabloGalante/mindlens/internal/observability"
)

// Store owns the ordered session collection (newest first) and the current
// session pointer. The in-memory collection is authoritative; the blob is a
// write-through mirror read once by Load.
//
// Mutations are serialized: the in-memory update and the blob write happen
// under the same lock. A failed blob write is logged and the in-memory state
// is kept.
type Store struct {
	mu sync.Mutex

	blob domain.BlobStore
	key  string

	sessions  []domain.ChatSession
	currentID domain.SessionID

	now   func() time.Time
	newID func() (string, error)

	obsMu     sync.RWMutex
	observers []Observer
}

type Option func(*Store)

// WithKey overrides the blob key (default domain.SessionsBlobKey).
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the session id source.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

func NewStore(blob domain.BlobStore, opts ...Option) *Store {
	s := &Store{
		blob:  blob,
		key:   domain.SessionsBlobKey,
		now:   time.Now,
		newID: newSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newSessionID returns a time-ordered UUIDv7.
func newSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Load replaces the collection with the persisted one. An absent, unreadable
// or corrupt blob yields an empty collection. Duplicate ids and sessions
// whose post count differs from their url count are dropped.
func (s *Store) Load(ctx context.Context) {
	log := observability.LoggerFromContext(ctx).With("blob_key", s.key)

	loaded := s.readBlob(ctx)

	s.mu.Lock()
	s.sessions = loaded
	s.currentID = ""
	s.mu.Unlock()

	log.Infow("sessions loaded", "count", len(loaded))
	s.notify(Event{Kind: EventLoaded})
}

func (s *Store) readBlob(ctx context.Context) []domain.ChatSession {
	log := observability.LoggerFromContext(ctx).With("blob_key", s.key)

	raw, ok, err := s.blob.Get(ctx, s.key)
	if err != nil {
		log.Warnw("reading sessions blob failed, starting empty", "error", err)
		return []domain.ChatSession{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []domain.ChatSession{}
	}

	var stored []domain.ChatSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Warnw("sessions blob is corrupt, starting empty", "error", err)
		return []domain.ChatSession{}
	}

	out := make([]domain.ChatSession, 0, len(stored))
	seen := make(map[domain.SessionID]struct{}, len(stored))
	for _, cs := range stored {
		if cs.ID == "" {
			continue
		}
		if _, dup := seen[cs.ID]; dup {
			log.Warnw("dropping duplicate session id from blob", "session_id", cs.ID)
			continue
		}
		if len(cs.Result.Posts) != len(cs.URLs) {
			log.Warnw("dropping misaligned session from blob",
				"session_id", cs.ID,
				"url_count", len(cs.URLs),
				"post_count", len(cs.Result.Posts))
			continue
		}
		seen[cs.ID] = struct{}{}
		out = append(out, cs)
	}
	return out
}

// Save writes the whole collection to the blob.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.sessions)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}
	if err := s.blob.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("writing sessions blob: %w", err)
	}
	return nil
}

// persistLocked writes through and only logs failures.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.saveLocked(ctx); err != nil {
		observability.LoggerFromContext(ctx).Errorw("session persistence failed, keeping in-memory state",
			"blob_key", s.key,
			"error", err)
	}
}

// Create commits a completed analysis as a new current session.
func (s *Store) Create(ctx context.Context, urls []string, result domain.AnalysisResult) (domain.ChatSession, error) {
	if len(result.Posts) != len(urls) {
		return domain.ChatSession{}, fmt.Errorf("%w: %d posts for %d urls", domain.ErrMisalignedResult, len(result.Posts), len(urls))
	}

	s.mu.Lock()

	id, err := s.uniqueIDLocked()
	if err != nil {
		s.mu.Unlock()
		return domain.ChatSession{}, err
	}

	cs := domain.ChatSession{
		ID:        id,
		URLs:      slices.Clone(urls),
		Result:    result.Clone(),
		Timestamp: s.now().UnixMilli(),
		Title:     DefaultTitle(urls),
	}

	s.sessions = append([]domain.ChatSession{cs}, s.sessions...)
	s.currentID = id
	s.persistLocked(ctx)
	s.mu.Unlock()

	observability.LoggerFromContext(ctx).Infow("session created", "session_id", id, "title", cs.Title)
	s.notify(Event{Kind: EventCreated, SessionID: id, CurrentID: id})
	return cs.Clone(), nil
}

func (s *Store) uniqueIDLocked() (domain.SessionID, error) {
	for attempt := 0; attempt < 3; attempt++ {
		raw, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("generating session id: %w", err)
		}
		id := domain.SessionID(raw)
		if id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generating session id: no unique id after retries")
}

// Select makes id the current session. The pointer is not persisted.
func (s *Store) Select(id domain.SessionID) error {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	s.currentID = id
	s.mu.Unlock()

	s.notify(Event{Kind: EventSelected, SessionID: id, CurrentID: id})
	return nil
}

// Remove deletes a session. Unknown ids are a no-op. It reports whether a
// session was removed.
func (s *Store) Remove(ctx context.Context, id domain.SessionID) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.sessions = append(s.sessions[:idx:idx], s.sessions[idx+1:]...)
	if s.currentID == id {
		s.currentID = ""
	}
	current := s.currentID
	s.persistLocked(ctx)
	s.mu.Unlock()

	observability.LoggerFromContext(ctx).Infow("session removed", "session_id", id)
	s.notify(Event{Kind: EventRemoved, SessionID: id, CurrentID: current})
	return true
}

// Rename sets a new title. Blank titles and unknown ids are a no-op. It
// reports whether the title changed.
func (s *Store) Rename(ctx context.Context, id domain.SessionID, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.sessions[idx].Title = title
	current := s.currentID
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(Event{Kind: EventRenamed, SessionID: id, CurrentID: current})
	return true
}

// NewChat clears the current pointer without deleting anything.
func (s *Store) NewChat() {
	s.mu.Lock()
	s.currentID = ""
	s.mu.Unlock()

	s.notify(Event{Kind: EventNewChat})
}

// List returns copies of the sessions, newest first.
func (s *Store) List() []domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatSession, len(s.sessions))
	for i, cs := range s.sessions {
		out[i] = cs.Clone()
	}
	return out
}

func (s *Store) Get(id domain.SessionID) (domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.ChatSession{}, domain.ErrSessionNotFound
	}
	return s.sessions[idx].Clone(), nil
}

// Current returns the current session, if any.
func (s *Store) Current() (domain.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID == "" {
		return domain.ChatSession{}, false
	}
	idx := s.indexLocked(s.currentID)
	if idx < 0 {
		return domain.ChatSession{}, false
	}
	return s.sessions[idx].Clone(), true
}

func (s *Store) CurrentID() domain.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

func (s *Store) indexLocked(id domain.SessionID) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// DefaultTitle is the last path segment of a sole url, otherwise
// "<N> Profiles Analysis".
func DefaultTitle(urls []string) string {
	if len(urls) != 1 {
		return fmt.Sprintf("%d Profiles Analysis", len(urls))
	}

	raw := strings.TrimSpace(urls[0])
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return raw
	}
	return path
}
