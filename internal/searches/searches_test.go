package searches

import (
	"testing"

	"github.com/i474232898/weather-lookup/internal/store"
)

// flakyBackend wraps a memory backend and fails a configurable number of
// Set calls with a quota error.
type flakyBackend struct {
	*store.MemoryBackend
	failures int
}

func (f *flakyBackend) Set(key, value string) error {
	if f.failures > 0 {
		f.failures--
		return store.ErrQuotaExceeded
	}
	return f.MemoryBackend.Set(key, value)
}

func newTestStore(t *testing.T, limit int) (*Store, store.Backend) {
	t.Helper()
	backend := store.NewMemoryBackend(0)
	return New(backend, limit), backend
}

func TestAddDeduplicatesCaseInsensitively(t *testing.T) {
	s, _ := newTestStore(t, 5)

	s.Add("Paris")
	s.Add("paris")

	list := s.List()
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %v", list)
	}
	if list[0] != "paris" {
		t.Errorf("most recent casing must win, got %q", list[0])
	}
}

func TestAddOrdersMostRecentFirst(t *testing.T) {
	s, _ := newTestStore(t, 5)

	s.Add("Lisbon")
	s.Add("Porto")
	s.Add("Lisbon")

	list := s.List()
	if len(list) != 2 || list[0] != "Lisbon" || list[1] != "Porto" {
		t.Fatalf("expected [Lisbon Porto], got %v", list)
	}
}

func TestAddTruncatesAtLimit(t *testing.T) {
	s, _ := newTestStore(t, 3)

	for _, city := range []string{"Lisbon", "Porto", "Braga", "Faro", "Évora"} {
		s.Add(city)
	}

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("expected limit of 3, got %v", list)
	}
	if list[0] != "Évora" || list[2] != "Braga" {
		t.Errorf("expected newest first and oldest dropped, got %v", list)
	}
}

func TestAddIgnoresBlank(t *testing.T) {
	s, _ := newTestStore(t, 5)
	s.Add("   ")
	if list := s.List(); len(list) != 0 {
		t.Fatalf("blank city must not be recorded, got %v", list)
	}
}

func TestAddQuotaEvictsOldestAndRetries(t *testing.T) {
	backend := &flakyBackend{MemoryBackend: store.NewMemoryBackend(0), failures: 0}
	s := New(backend, 3)

	s.Add("Lisbon")
	s.Add("Porto")
	s.Add("Braga")

	// Next persist hits the quota once; the retry (minus the oldest
	// entry) must succeed.
	backend.failures = 1
	s.Add("Faro")

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected evicted list of 2, got %v", list)
	}
	if list[0] != "Faro" || list[1] != "Braga" {
		t.Errorf("expected [Faro Braga], got %v", list)
	}

	var persisted []string
	raw, err := backend.Get(StorageKey)
	if err != nil {
		t.Fatalf("expected persisted list, got %v", err)
	}
	if err := store.DecodeJSON(raw, &persisted); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(persisted) != 2 || persisted[0] != "Faro" {
		t.Errorf("persisted list mismatch: %v", persisted)
	}
}

func TestAddQuotaRetryFailureKeepsListInMemory(t *testing.T) {
	backend := &flakyBackend{MemoryBackend: store.NewMemoryBackend(0), failures: 0}
	s := New(backend, 3)

	s.Add("Lisbon")
	s.Add("Porto")

	// Both the initial persist and the eviction retry fail; no panic, and
	// the in-memory list keeps the unevicted entries.
	backend.failures = 2
	s.Add("Braga")

	list := s.List()
	if len(list) != 3 || list[0] != "Braga" {
		t.Fatalf("expected unevicted in-memory list, got %v", list)
	}
}

func TestNewSeedsFromBackend(t *testing.T) {
	backend := store.NewMemoryBackend(0)
	encoded, err := store.EncodeJSON([]string{"Lisbon", "Porto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := backend.Set(StorageKey, encoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := New(backend, 5)
	list := s.List()
	if len(list) != 2 || list[0] != "Lisbon" {
		t.Fatalf("expected seeded list, got %v", list)
	}
}

func TestNewToleratesLegacyRawValue(t *testing.T) {
	backend := store.NewMemoryBackend(0)
	if err := backend.Set(StorageKey, "Lisbon"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := New(backend, 5)
	list := s.List()
	if len(list) != 1 || list[0] != "Lisbon" {
		t.Fatalf("expected legacy value as single entry, got %v", list)
	}
}

func TestClear(t *testing.T) {
	s, backend := newTestStore(t, 5)
	s.Add("Lisbon")
	s.Clear()

	if list := s.List(); len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
	if _, err := backend.Get(StorageKey); err == nil {
		t.Error("expected key removed from backend")
	}
}
