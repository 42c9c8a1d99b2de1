package sessions

import "github.com/PabloGalante/mindlens/internal/domain"

type EventKind string

const (
	EventLoaded   EventKind = "loaded"
	EventCreated  EventKind = "created"
	EventSelected EventKind = "selected"
	EventRemoved  EventKind = "removed"
	EventRenamed  EventKind = "renamed"
	EventNewChat  EventKind = "new_chat"
)

// Event describes a state change. CurrentID is the pointer after the change.
type Event struct {
	Kind      EventKind
	SessionID domain.SessionID
	CurrentID domain.SessionID
}

// Observer is called after every state change, outside the store lock.
type Observer func(Event)

// Subscribe registers fn for all future events.
func (s *Store) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store) notify(ev Event) {
	s.obsMu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(ev)
	}
}
