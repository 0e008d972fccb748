package internal

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// SessionsKey is the slot holding the serialized session collection
const SessionsKey = "chatpane.sessions"

// SessionStore owns the ordered session collection and the active-session
// pointer. Every mutation is written through to the slot before returning.
// Callers only ever receive copies.
type SessionStore struct {
	mu       sync.Mutex
	slot     Slot
	sessions []Session
	activeID string

	now   func() time.Time
	newID func() string
}

// NewSessionStore creates a store persisting to slot. Call LoadAll to
// rehydrate previously saved sessions.
func NewSessionStore(slot Slot) *SessionStore {
	return &SessionStore{
		slot:  slot,
		now:   time.Now,
		newID: newSessionID,
	}
}

// newSessionID returns a UUIDv7, which embeds the creation time in
// milliseconds and sorts by it.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// LoadAll replaces the in-memory collection with the persisted one. A missing
// slot yields an empty collection; so does a malformed one, with a warning.
func (s *SessionStore) LoadAll() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.activeID = ""

	data, ok, err := s.slot.Read(SessionsKey)
	if err != nil {
		LogWarn("Failed to read sessions: %v", err)
		return []Session{}
	}
	if !ok {
		return []Session{}
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		LogWarn("Ignoring malformed session data: %v", &ParseError{Source: "slot", Key: SessionsKey, Err: err})
		return []Session{}
	}

	s.sessions = sessions
	LogDebug("Loaded %d session(s)", len(sessions))
	return s.snapshotLocked()
}

// SaveAll writes the current collection, or clears the slot when it is empty
func (s *SessionStore) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(s.sessions)
}

func (s *SessionStore) writeLocked(sessions []Session) error {
	if len(sessions) == 0 {
		return s.slot.Delete(SessionsKey)
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return &StorageError{Key: SessionsKey, Op: "write", Err: err}
	}
	return s.slot.Write(SessionsKey, data)
}

// commitLocked writes sessions and only then installs them along with
// activeID. When the write fails the store keeps its previous state.
func (s *SessionStore) commitLocked(sessions []Session, activeID string) error {
	if err := s.writeLocked(sessions); err != nil {
		return err
	}
	s.sessions = sessions
	s.activeID = activeID
	return nil
}

// Sessions returns a copy of the collection in creation order
func (s *SessionStore) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() []Session {
	out := make([]Session, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = session.Clone()
	}
	return out
}

func (s *SessionStore) indexLocked(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the session with the given id
func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i].Clone(), true
}

// CreateSession appends a new session and makes it active
func (s *SessionStore) CreateSession(title string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := Session{
		ID:        s.newID(),
		Title:     TruncateTitle(title),
		Messages:  []Message{},
		Timestamp: s.now(),
	}
	next := append(slices.Clone(s.sessions), session)
	if err := s.commitLocked(next, session.ID); err != nil {
		return Session{}, err
	}
	LogDebug("Created session %s (%q)", session.ID, session.Title)
	return session.Clone(), nil
}

// DeleteSession removes a session. If it was active, no session is active
// afterwards.
func (s *SessionStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	next := slices.Delete(slices.Clone(s.sessions), i, i+1)
	activeID := s.activeID
	if activeID == id {
		activeID = ""
	}
	return s.commitLocked(next, activeID)
}

// RenameSession changes a session title using the same truncation as creation
func (s *SessionStore) RenameSession(id, title string) error {
	title = TruncateTitle(title)
	if title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	next := slices.Clone(s.sessions)
	next[i].Title = title
	return s.commitLocked(next, s.activeID)
}

// Update applies fn to the stored session and persists the result. If fn
// returns an error nothing is changed.
func (s *SessionStore) Update(id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Session{}, ErrSessionNotFound
	}

	updated := s.sessions[i].Clone()
	if err := fn(&updated); err != nil {
		return Session{}, err
	}
	next := slices.Clone(s.sessions)
	next[i] = updated
	if err := s.commitLocked(next, s.activeID); err != nil {
		return Session{}, err
	}
	return updated.Clone(), nil
}

// Active returns the active session, if any
func (s *SessionStore) Active() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return Session{}, false
	}
	i := s.indexLocked(s.activeID)
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i].Clone(), true
}

// ActiveID returns the active session id, or ""
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SetActive selects the session that receives the next prompt
func (s *SessionStore) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return ErrSessionNotFound
	}
	s.activeID = id
	return nil
}

// ClearActive deselects the active session; the next prompt starts a new one
func (s *SessionStore) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

// Groups returns the sidebar grouping of the collection at now
func (s *SessionStore) Groups(now time.Time) SidebarGroups {
	return GroupSessions(s.Sessions(), now)
}

// Find resolves a session by exact id, a unique id prefix or suffix (at least
// four characters, see ShortID), or fuzzy title match. The best match is
// returned.
func (s *SessionStore) Find(query string) (Session, bool) {
	sessions := s.Sessions()
	if query == "" {
		return Session{}, false
	}

	for _, session := range sessions {
		if session.ID == query {
			return session, true
		}
	}

	if len(query) >= 4 {
		var partial []Session
		for _, session := range sessions {
			if strings.HasPrefix(session.ID, query) || strings.HasSuffix(session.ID, query) {
				partial = append(partial, session)
			}
		}
		if len(partial) == 1 {
			return partial[0], true
		}
	}

	titles := make([]string, len(sessions))
	for i, session := range sessions {
		titles[i] = session.Title
	}
	matches := fuzzy.Find(query, titles)
	if len(matches) == 0 {
		return Session{}, false
	}
	return sessions[matches[0].Index], true
}
