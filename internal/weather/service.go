package weather

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fetcher abstracts the upstream weather source (including its mock
// fallback behavior).
type Fetcher interface {
	Fetch(ctx context.Context, city string) (RawResponse, error)
}

// SearchRecorder receives successfully looked-up city names.
type SearchRecorder interface {
	Add(city string)
}

// LookupResult is the retained outcome of the most recent successful
// lookup. Days are always Celsius; rendering projects them into the
// caller's unit.
type LookupResult struct {
	City      string
	Days      []DisplayDay
	FetchedAt time.Time
}

// Service runs the lookup pipeline: validate, fetch with fallback,
// normalize, record the search. It retains the last successful result so
// a unit-preference change can re-render without a new upstream call.
type Service struct {
	fetcher  Fetcher
	recorder SearchRecorder

	mu   sync.RWMutex
	last *LookupResult
}

// NewService creates a Service. recorder may be nil.
func NewService(fetcher Fetcher, recorder SearchRecorder) *Service {
	return &Service{
		fetcher:  fetcher,
		recorder: recorder,
	}
}

// Lookup validates the city, fetches weather data and normalizes it.
// Validation errors and unrecognizable payloads are returned to the
// caller; fetch failures never are, the fetcher absorbs them into mock
// data. An unrecognizable payload also clears any retained result.
func (s *Service) Lookup(ctx context.Context, city string) (*LookupResult, error) {
	if err := ValidateCity(city); err != nil {
		return nil, err
	}
	city = trimmedCity(city)

	reqID := uuid.NewString()
	log.Printf("INFO: lookup %s started for %q", reqID, city)

	raw, err := s.fetcher.Fetch(ctx, city)
	if err != nil {
		return nil, err
	}

	days, err := Normalize(raw)
	if err != nil {
		// A new error replaces whatever weather was displayed before.
		s.Clear()
		log.Printf("WARN: lookup %s for %q: %v", reqID, city, err)
		return nil, err
	}

	result := &LookupResult{
		City:      city,
		Days:      days,
		FetchedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.Add(city)
	}

	log.Printf("INFO: lookup %s completed for %q with %d day(s)", reqID, city, len(days))
	return result, nil
}

// Last returns the retained result of the most recent successful lookup,
// or nil if there is none.
func (s *Service) Last() *LookupResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Clear discards the retained result.
func (s *Service) Clear() {
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}
