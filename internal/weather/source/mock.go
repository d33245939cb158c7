package source

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// mockConditions is the fixed label set the mock path picks from.
var mockConditions = []string{"Sunny", "Cloudy", "Rainy", "Partly Cloudy"}

const mockPressureHPa = 1013

// MockResponse synthesizes a plausible flat reading for the given city,
// used when the primary source is unavailable. Values come from
// crypto/rand rather than a predictable generator.
func MockResponse(city string) weather.RawResponse {
	temp := randFloat(15, 35)

	payload := map[string]any{
		"city":           city,
		"temperature":    round1(temp),
		"minTemperature": round1(temp - randFloat(1, 5)),
		"maxTemperature": round1(temp + randFloat(1, 5)),
		"humidity":       round1(randFloat(50, 90)),
		"pressure":       mockPressureHPa,
		"condition":      mockConditions[randIndex(len(mockConditions))],
		"date":           time.Now().Format("2006-01-02"),
		"forecast":       []any{},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		// map of plain values; cannot fail in practice
		panic(fmt.Sprintf("mock payload marshal: %v", err))
	}

	raw, err := weather.DecodeResponse(body)
	if err != nil {
		panic(fmt.Sprintf("mock payload decode: %v", err))
	}
	return raw
}

// randFloat returns a random value in [min, max) from crypto/rand.
func randFloat(min, max float64) float64 {
	return min + randUnit()*(max-min)
}

// randIndex returns a random index in [0, n).
func randIndex(n int) int {
	i := int(randUnit() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// randUnit returns a random value in [0, 1).
func randUnit() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	const mask = 1<<53 - 1
	return float64(binary.BigEndian.Uint64(buf[:])&mask) / float64(1<<53)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
