package weather

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyCity is returned when the submitted city name is blank.
	ErrEmptyCity = errors.New("city name cannot be empty")

	// ErrInvalidCityFormat is returned when the city name fails the
	// allowed-character or length check.
	ErrInvalidCityFormat = errors.New("invalid city name format")
)

// cityPattern allows Unicode letters, combining marks, whitespace,
// apostrophes, periods and hyphens; 2 to 50 characters.
var cityPattern = regexp.MustCompile(`^[\p{L}\p{M}\s'.-]{2,50}$`)

// ValidateCity checks a submitted city name. An empty (or all-whitespace)
// name and a malformed name are distinct errors so callers can show
// different messages.
func ValidateCity(city string) error {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return ErrEmptyCity
	}
	if !cityPattern.MatchString(trimmed) {
		return ErrInvalidCityFormat
	}
	return nil
}

// trimmedCity canonicalizes a validated city name for fetching, storage
// and display.
func trimmedCity(city string) string {
	return strings.TrimSpace(city)
}
