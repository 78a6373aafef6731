// Package conversation keeps the in-memory ordered log of turns for the
// active session. Nothing here is persisted across sessions; durable
// persistence happens through the memory gateway on explicit save.
package conversation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Turn is one question/answer exchange. Immutable after append except
// for the Saved flag, which flips false to true exactly once.
type Turn struct {
	ID          string    `json:"id"`
	PersonaCode string    `json:"persona"`
	Question    string    `json:"question"`
	Response    string    `json:"response"`
	Failed      bool      `json:"failed"`
	Saved       bool      `json:"saved"`
	Timestamp   time.Time `json:"timestamp"`
}

// Store is the session-scoped turn log.
type Store struct {
	mu      sync.Mutex
	turns   []Turn
	entropy *rand.Rand
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Append assigns the turn an ID and timestamp and adds it to the log,
// returning the stored copy.
func (s *Store) Append(t Turn) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t.ID = ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
	t.Timestamp = now
	t.Saved = false
	s.turns = append(s.turns, t)
	return t
}

// Clear empties the log.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// ListMostRecentFirst returns a copy of the log, newest turn first.
func (s *Store) ListMostRecentFirst() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, 0, len(s.turns))
	for i := len(s.turns) - 1; i >= 0; i-- {
		out = append(out, s.turns[i])
	}
	return out
}

// Get returns the turn with the given ID.
func (s *Store) Get(id string) (Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.turns {
		if t.ID == id {
			return t, true
		}
	}
	return Turn{}, false
}

// MarkSaved flips the Saved flag of the targeted turn. Reports whether
// the turn exists.
func (s *Store) MarkSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.turns {
		if s.turns[i].ID == id {
			s.turns[i].Saved = true
			return true
		}
	}
	return false
}

// Len returns the number of turns in the log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
