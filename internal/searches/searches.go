// Package searches maintains the bounded, deduplicated, most-recent-first
// list of past weather queries.
package searches

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/i474232898/weather-lookup/internal/store"
)

// StorageKey is where the serialized list lives in the backend. A
// service-worker style collaborator can request the same list through the
// List accessor.
const StorageKey = "recent_searches"

// Store holds recent searches in memory and mirrors them to the storage
// backend.
type Store struct {
	mu      sync.Mutex
	backend store.Backend
	limit   int
	items   []string
}

// New creates a Store capped at limit entries, seeding it from whatever
// the backend already holds.
func New(backend store.Backend, limit int) *Store {
	if limit <= 0 {
		limit = 1
	}
	s := &Store{
		backend: backend,
		limit:   limit,
	}
	s.items = s.load()
	return s
}

func (s *Store) load() []string {
	raw, err := s.backend.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("WARN: failed to load recent searches: %v", err)
		}
		return nil
	}

	var list []string
	if err := store.DecodeJSON(raw, &list); err != nil {
		// Foreign value under our key; treat it as a single legacy entry.
		if raw != "" {
			list = []string{raw}
		}
	}
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	return list
}

// Add records a successful search. The newest casing wins: any
// case-insensitive duplicate is removed before the city is prepended, and
// the list is truncated to the limit. A quota failure on persist evicts
// the oldest entry and retries exactly once; if the retry also fails the
// unevicted list stays in memory.
func (s *Store) Add(city string) {
	city = strings.TrimSpace(city)
	if city == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.items)+1)
	next = append(next, city)
	for _, existing := range s.items {
		if !strings.EqualFold(existing, city) {
			next = append(next, existing)
		}
	}
	if len(next) > s.limit {
		next = next[:s.limit]
	}

	err := s.persist(next)
	if err == nil {
		s.items = next
		return
	}

	if errors.Is(err, store.ErrQuotaExceeded) && len(next) > 1 {
		evicted := next[:len(next)-1]
		if retryErr := s.persist(evicted); retryErr == nil {
			s.items = evicted
			return
		} else {
			log.Printf("ERROR: recent searches still over quota after eviction: %v", retryErr)
		}
	} else {
		log.Printf("ERROR: failed to persist recent searches: %v", err)
	}
	s.items = next
}

// List returns a copy of the recent searches, most recent first. It is
// synchronous so the message-channel collaborator can call it directly.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Clear empties the list and removes it from the backend.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.backend.Delete(StorageKey); err != nil {
		log.Printf("WARN: failed to clear recent searches: %v", err)
	}
}

func (s *Store) persist(list []string) error {
	encoded, err := store.EncodeJSON(list)
	if err != nil {
		return err
	}
	return s.backend.Set(StorageKey, encoded)
}
