package store

import (
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned when a write would push the backend
	// past its configured byte budget.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Backend is a flat string-keyed key-value store. One backend is selected
// per process via Select and serves every read and write afterwards.
type Backend interface {
	Name() string
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// EncodeJSON serializes a structured value for storage.
func EncodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeJSON deserializes a stored value. Legacy and foreign values were
// written as bare strings rather than JSON; when decoding into a *string
// fails, the raw value is returned as-is instead of an error.
func DecodeJSON(raw string, out any) error {
	err := json.Unmarshal([]byte(raw), out)
	if err == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = raw
		return nil
	}
	return err
}

// quotaFor reports whether writing value under key would exceed the byte
// budget, given the backend's current per-key sizes.
func quotaFor(sizes map[string]int, key, value string, quota int) bool {
	if quota <= 0 {
		return false
	}
	total := len(value)
	for k, n := range sizes {
		if k == key {
			continue
		}
		total += n
	}
	return total > quota
}
