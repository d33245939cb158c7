// Package prefs persists user display preferences.
package prefs

import (
	"log"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// unitKey stores the unit preference as a raw string, unlike the other
// keys, which hold JSON.
const unitKey = "unit_preference"

// Units reads and writes the temperature unit preference. The stored
// weather data stays Celsius; the preference only affects rendering.
type Units struct {
	backend store.Backend
}

func NewUnits(backend store.Backend) *Units {
	return &Units{backend: backend}
}

// Get returns the stored preference, defaulting to Celsius when the key
// is absent or holds an unknown value.
func (u *Units) Get() weather.Unit {
	raw, err := u.backend.Get(unitKey)
	if err != nil {
		return weather.UnitCelsius
	}
	unit, ok := weather.ParseUnit(raw)
	if !ok {
		return weather.UnitCelsius
	}
	return unit
}

// Set stores the preference.
func (u *Units) Set(unit weather.Unit) error {
	if err := u.backend.Set(unitKey, string(unit)); err != nil {
		log.Printf("WARN: failed to persist unit preference: %v", err)
		return err
	}
	return nil
}
