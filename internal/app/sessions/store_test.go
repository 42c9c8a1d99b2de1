package sessions_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindlens/internal/adapters/storage/memory"
	"github.com/PabloGalante/mindlens/internal/app/sessions"
	"github.com/PabloGalante/mindlens/internal/domain"
)

func resultFor(urls ...string) domain.AnalysisResult {
	posts := make([]domain.PostAnalysis, len(urls))
	for i, u := range urls {
		posts[i] = domain.PostAnalysis{URL: u, Caption: "c", Sentiment: domain.SentimentNeutral, Concerns: []string{}}
	}
	return domain.AnalysisResult{Summary: "s", Posts: posts, Recommendations: []string{}}
}

func create(t *testing.T, s *sessions.Store, urls ...string) domain.ChatSession {
	t.Helper()
	cs, err := s.Create(context.Background(), urls, resultFor(urls...))
	require.NoError(t, err)
	return cs
}

// failingBlob is always empty and fails every write.
type failingBlob struct{}

func (failingBlob) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (failingBlob) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestCreateOrderingAndCurrent(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())

	first := create(t, s, "https://instagram.com/alice")
	second := create(t, s, "https://instagram.com/bob")

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, second.ID, s.CurrentID())

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "bob", cur.Title)
}

func TestCreateRejectsMisalignedResult(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())

	_, err := s.Create(context.Background(), []string{"a", "b"}, resultFor("a"))
	assert.ErrorIs(t, err, domain.ErrMisalignedResult)
	assert.Empty(t, s.List())
}

func TestSessionIDsAreUnique(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())

	const n = 200
	seen := make(map[domain.SessionID]struct{}, n)
	for i := 0; i < n; i++ {
		cs := create(t, s, "https://x.com/p/1")
		_, dup := seen[cs.ID]
		require.False(t, dup, "duplicate id %s", cs.ID)
		seen[cs.ID] = struct{}{}
	}
	assert.Len(t, s.List(), n)
}

func TestCreateRetriesCollidingIDs(t *testing.T) {
	ids := []string{"same", "same", "other"}
	var i int
	s := sessions.NewStore(memory.NewBlobStore(), sessions.WithIDGenerator(func() (string, error) {
		id := ids[i]
		i++
		return id, nil
	}))

	a := create(t, s, "https://x.com/p/1")
	b := create(t, s, "https://x.com/p/2")
	assert.Equal(t, domain.SessionID("same"), a.ID)
	assert.Equal(t, domain.SessionID("other"), b.ID)
}

func TestConcurrentCreates(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), []string{"https://x.com/p/1"}, resultFor("https://x.com/p/1"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list := s.List()
	assert.Len(t, list, 20)
	seen := map[domain.SessionID]bool{}
	for _, cs := range list {
		assert.False(t, seen[cs.ID])
		seen[cs.ID] = true
	}
}

func TestSelect(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())
	first := create(t, s, "https://instagram.com/a")
	create(t, s, "https://instagram.com/b")

	require.NoError(t, s.Select(first.ID))
	assert.Equal(t, first.ID, s.CurrentID())

	err := s.Select("missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, first.ID, s.CurrentID())
}

func TestRemoveCurrentPointer(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())
	other := create(t, s, "https://instagram.com/a")
	current := create(t, s, "https://instagram.com/b")

	assert.True(t, s.Remove(context.Background(), other.ID))
	assert.Equal(t, current.ID, s.CurrentID())

	assert.True(t, s.Remove(context.Background(), current.ID))
	assert.Empty(t, s.CurrentID())
	_, ok := s.Current()
	assert.False(t, ok)

	assert.False(t, s.Remove(context.Background(), current.ID))
	assert.Empty(t, s.List())
}

func TestRename(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())
	cs := create(t, s, "https://instagram.com/a")

	assert.False(t, s.Rename(context.Background(), cs.ID, "   "))
	got, err := s.Get(cs.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)

	assert.True(t, s.Rename(context.Background(), cs.ID, "  My friend  "))
	got, err = s.Get(cs.ID)
	require.NoError(t, err)
	assert.Equal(t, "My friend", got.Title)

	assert.False(t, s.Rename(context.Background(), "missing", "x"))
}

func TestNewChatKeepsSessions(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())
	create(t, s, "https://instagram.com/a")

	s.NewChat()
	assert.Empty(t, s.CurrentID())
	assert.Len(t, s.List(), 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	blob := memory.NewBlobStore()

	s := sessions.NewStore(blob, sessions.WithKey("test-key"))
	a := create(t, s, "https://instagram.com/a")
	b := create(t, s, "https://instagram.com/b", "https://instagram.com/c")
	require.True(t, s.Rename(ctx, a.ID, "renamed"))

	raw, ok, err := blob.Get(ctx, "test-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"title":"renamed"`)

	reloaded := sessions.NewStore(blob, sessions.WithKey("test-key"))
	reloaded.Load(ctx)

	list := reloaded.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, "2 Profiles Analysis", list[0].Title)
	assert.Equal(t, "renamed", list[1].Title)
	assert.Empty(t, reloaded.CurrentID(), "current pointer is not persisted")
}

func TestLoadCorruptOrAbsentBlob(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		s := sessions.NewStore(memory.NewBlobStore())
		s.Load(ctx)
		assert.Empty(t, s.List())
	})

	t.Run("corrupt", func(t *testing.T) {
		blob := memory.NewBlobStore()
		require.NoError(t, blob.Set(ctx, domain.SessionsBlobKey, "{not json"))
		s := sessions.NewStore(blob)
		s.Load(ctx)
		assert.Empty(t, s.List())
	})

	t.Run("duplicates dropped", func(t *testing.T) {
		blob := memory.NewBlobStore()
		raw, err := json.Marshal([]domain.ChatSession{
			{ID: "1", Title: "newest"},
			{ID: "1", Title: "older copy"},
			{ID: "2", Title: "other"},
		})
		require.NoError(t, err)
		require.NoError(t, blob.Set(ctx, domain.SessionsBlobKey, string(raw)))

		s := sessions.NewStore(blob)
		s.Load(ctx)
		list := s.List()
		require.Len(t, list, 2)
		assert.Equal(t, "newest", list[0].Title)
	})

	t.Run("misaligned dropped", func(t *testing.T) {
		blob := memory.NewBlobStore()
		raw, err := json.Marshal([]domain.ChatSession{
			{ID: "1", URLs: []string{"https://instagram.com/a"}, Result: resultFor("https://instagram.com/a")},
			{ID: "2", URLs: []string{"https://instagram.com/b", "https://instagram.com/c"}, Result: resultFor("https://instagram.com/b")},
		})
		require.NoError(t, err)
		require.NoError(t, blob.Set(ctx, domain.SessionsBlobKey, string(raw)))

		s := sessions.NewStore(blob)
		s.Load(ctx)
		list := s.List()
		require.Len(t, list, 1)
		assert.Equal(t, domain.SessionID("1"), list[0].ID)
	})
}

func TestSessionsDoNotShareMemoryWithCallers(t *testing.T) {
	ctx := context.Background()
	s := sessions.NewStore(memory.NewBlobStore())

	urls := []string{"https://instagram.com/a"}
	res := resultFor(urls...)
	res.Recommendations = []string{"rest"}
	res.Posts[0].Concerns = []string{"sleep"}
	res.CrisisResources = &domain.CrisisResources{
		Show:      true,
		Resources: []domain.CrisisResource{{Name: "line"}},
	}

	created, err := s.Create(ctx, urls, res)
	require.NoError(t, err)

	urls[0] = "changed"
	res.Posts[0].Caption = "changed"
	res.Posts[0].Concerns[0] = "changed"
	res.Recommendations[0] = "changed"
	res.CrisisResources.Resources[0].Name = "changed"

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	got.URLs[0] = "changed"
	got.Result.Recommendations[0] = "changed"
	got.Result.CrisisResources.Resources[0].Name = "changed"

	cur, ok := s.Current()
	require.True(t, ok)
	cur.Result.Posts[0].Caption = "changed"

	s.List()[0].Result.Posts[0].Concerns[0] = "changed"
	created.URLs[0] = "changed"

	stored, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://instagram.com/a"}, stored.URLs)
	assert.Equal(t, "c", stored.Result.Posts[0].Caption)
	assert.Equal(t, []string{"sleep"}, stored.Result.Posts[0].Concerns)
	assert.Equal(t, []string{"rest"}, stored.Result.Recommendations)
	assert.Equal(t, "line", stored.Result.CrisisResources.Resources[0].Name)
}

func TestCreateUsesClock(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	s := sessions.NewStore(memory.NewBlobStore(), sessions.WithClock(func() time.Time { return at }))

	cs := create(t, s, "https://instagram.com/a")
	assert.Equal(t, at.UnixMilli(), cs.Timestamp)
	assert.True(t, cs.CreatedAt().Equal(at))
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	s := sessions.NewStore(failingBlob{})

	cs := create(t, s, "https://instagram.com/a")
	assert.Equal(t, cs.ID, s.CurrentID())
	assert.True(t, s.Rename(context.Background(), cs.ID, "still works"))
	assert.Error(t, s.Save(context.Background()))
	assert.Len(t, s.List(), 1)
}

func TestObserversSeeEveryMutation(t *testing.T) {
	s := sessions.NewStore(memory.NewBlobStore())

	var kinds []sessions.EventKind
	s.Subscribe(func(ev sessions.Event) { kinds = append(kinds, ev.Kind) })

	cs := create(t, s, "https://instagram.com/a")
	require.NoError(t, s.Select(cs.ID))
	s.Rename(context.Background(), cs.ID, "x")
	s.NewChat()
	s.Remove(context.Background(), cs.ID)

	assert.Equal(t, []sessions.EventKind{
		sessions.EventCreated,
		sessions.EventSelected,
		sessions.EventRenamed,
		sessions.EventNewChat,
		sessions.EventRemoved,
	}, kinds)
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "alice", sessions.DefaultTitle([]string{"https://instagram.com/alice/"}))
	assert.Equal(t, "1", sessions.DefaultTitle([]string{"https://x.com/p/1"}))
	assert.Equal(t, "https://instagram.com", sessions.DefaultTitle([]string{"https://instagram.com"}))
	assert.Equal(t, "3 Profiles Analysis", sessions.DefaultTitle([]string{"a", "b", "c"}))
}
