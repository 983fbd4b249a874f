// Package session maps conversation keys to their most recent candidate list.
//
// Each conversation holds at most one live candidate list; a new search
// replaces the previous list unconditionally. Every replacement bumps a
// per-session generation counter, and selection tokens carry the generation
// they were issued against, so a button pressed after a newer search resolves
// to [shared.ErrStaleSelection] instead of silently hitting the wrong track.
//
// The store is the only state shared across conversations. A single mutex
// serializes access: a Put for key K happens-before any Resolve for K issued
// after it returns. Total sessions held in memory are bounded with a
// least-recently-used policy.
package session

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/shared"
)

// DefaultCapacity bounds the number of conversations tracked at once.
const DefaultCapacity = 1024

// Key identifies one conversation. The store treats it as opaque; the chat
// transport decides how to build it (chat ID plus user ID for tunebot).
type Key string

// Selection is a parsed selection token: the candidate's position within the
// list of the given generation.
type Selection struct {
	Generation uint64
	Index      int
}

type entry struct {
	key        Key
	generation uint64
	candidates []models.Candidate
	elem       *list.Element
}

// Store holds the live candidate list for each conversation.
type Store struct {
	mu       sync.Mutex
	capacity int
	nextGen  uint64
	entries  map[Key]*entry
	order    *list.List // front = most recently used
}

// NewStore creates a Store bounded to at most capacity conversations.
// A non-positive capacity selects [DefaultCapacity].
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		entries:  make(map[Key]*entry),
		order:    list.New(),
	}
}

// Put replaces the candidate list for key and returns the generation the new
// list's selection tokens must carry. Any previously issued tokens for this
// key become stale. The least recently used conversation is evicted when the
// store is full.
func (s *Store) Put(key Key, candidates []models.Candidate) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextGen++

	if e, ok := s.entries[key]; ok {
		e.generation = s.nextGen
		e.candidates = candidates
		s.order.MoveToFront(e.elem)
		return e.generation
	}

	if len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	e := &entry{key: key, generation: s.nextGen, candidates: candidates}
	e.elem = s.order.PushFront(e)
	s.entries[key] = e
	return e.generation
}

// Resolve returns the candidate a selection token refers to.
//
// Errors distinguish the three failure modes: [shared.ErrNoActiveSearch]
// when the conversation has no live list (never searched, or evicted),
// [shared.ErrStaleSelection] when the token was issued against a replaced
// list, and [shared.ErrTokenOutOfRange] for a negative or too-large index.
func (s *Store) Resolve(key Key, sel Selection) (models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return models.Candidate{}, fmt.Errorf("%w: key %q", shared.ErrNoActiveSearch, key)
	}

	if sel.Generation != e.generation {
		return models.Candidate{}, fmt.Errorf("%w: generation %d superseded by %d", shared.ErrStaleSelection, sel.Generation, e.generation)
	}

	if sel.Index < 0 || sel.Index >= len(e.candidates) {
		return models.Candidate{}, fmt.Errorf("%w: index %d, list length %d", shared.ErrTokenOutOfRange, sel.Index, len(e.candidates))
	}

	s.order.MoveToFront(e.elem)
	return e.candidates[sel.Index], nil
}

// Len reports how many conversations currently hold a candidate list.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictOldest drops the least recently used conversation. Caller holds mu.
func (s *Store) evictOldest() {
	back := s.order.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	s.order.Remove(back)
	delete(s.entries, e.key)
}
