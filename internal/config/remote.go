package config

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/i474232898/weather-lookup/internal/store"
)

// DefaultSearchLimit applies when the remote configuration endpoint is
// unreachable or does not carry a usable limit.
const DefaultSearchLimit = 5

// limitKey caches the resolved limit in the storage backend so it is not
// re-fetched on every use.
const limitKey = "recent_search_limit"

// ResolveSearchLimit returns the recent-search limit: the cached value if
// one exists, otherwise the remote configuration endpoint's
// RECENT_SEARCH_LIMIT, otherwise the default. A freshly fetched value is
// cached in the backend.
func ResolveSearchLimit(client *http.Client, configURL string, backend store.Backend) int {
	if raw, err := backend.Get(limitKey); err == nil {
		var n int
		if err := store.DecodeJSON(raw, &n); err == nil && n > 0 {
			return n
		}
	}
	return RefreshSearchLimit(client, configURL, backend)
}

// RefreshSearchLimit fetches the limit from the remote endpoint and
// overwrites the cached value. Used at startup on a cache miss and
// periodically by the maintenance scheduler.
func RefreshSearchLimit(client *http.Client, configURL string, backend store.Backend) int {
	n := fetchSearchLimit(client, configURL)

	encoded, err := store.EncodeJSON(n)
	if err == nil {
		if err := backend.Set(limitKey, encoded); err != nil {
			log.Printf("WARN: failed to cache recent-search limit: %v", err)
		}
	}
	return n
}

func fetchSearchLimit(client *http.Client, configURL string) int {
	resp, err := client.Get(configURL)
	if err != nil {
		log.Printf("INFO: remote config unreachable (%v); using default search limit %d", err, DefaultSearchLimit)
		return DefaultSearchLimit
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("INFO: remote config returned status %d; using default search limit %d", resp.StatusCode, DefaultSearchLimit)
		return DefaultSearchLimit
	}

	var payload struct {
		RecentSearchLimit any `json:"RECENT_SEARCH_LIMIT"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("INFO: remote config unparsable (%v); using default search limit %d", err, DefaultSearchLimit)
		return DefaultSearchLimit
	}

	if n, ok := limitValue(payload.RecentSearchLimit); ok {
		return n
	}
	log.Printf("INFO: remote config has no usable RECENT_SEARCH_LIMIT; using default %d", DefaultSearchLimit)
	return DefaultSearchLimit
}

// limitValue accepts a JSON number or numeric string; anything else, and
// non-positive values, fall back to the default.
func limitValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if n := int(t); n > 0 {
			return n, true
		}
	case string:
		if n, err := strconv.Atoi(t); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
