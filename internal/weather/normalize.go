package weather

import (
	"errors"
	"time"
)

// ErrUnrecognizedShape is returned when a payload matches neither the
// flat nor the forecast shape.
var ErrUnrecognizedShape = errors.New("weather data has no recognizable shape")

const (
	// maxDisplayDays caps how many distinct forecast days are rendered.
	maxDisplayDays = 4

	defaultHumidity    = 60
	defaultPressureHPa = 1013
	minMaxSpread       = 5

	dateLayout     = "2006-01-02"
	forecastLayout = "2006-01-02 15:04:05"
)

// Normalize converts a raw response into at most maxDisplayDays display
// records, one per distinct calendar date, in first-seen order.
func Normalize(raw RawResponse) ([]DisplayDay, error) {
	switch raw.Kind {
	case KindFlat:
		return []DisplayDay{normalizeFlat(raw.Flat)}, nil
	case KindForecast:
		return normalizeForecast(raw.List), nil
	default:
		return nil, ErrUnrecognizedShape
	}
}

// normalizeFlat produces a single day from a flat reading. Missing numeric
// fields get fixed defaults; min/max fall back to a spread around the
// current temperature.
func normalizeFlat(flat FlatReading) DisplayDay {
	ts := time.Now()
	if flat.Date != "" {
		if parsed, err := time.Parse(dateLayout, flat.Date); err == nil {
			ts = parsed
		}
	}

	temp := flat.Temperature.Value

	day := DisplayDay{
		Day:            ts.Weekday().String(),
		Date:           ts.Format(dateLayout),
		Temperature:    MetricOf(temp),
		MinTemperature: MetricOf(temp - minMaxSpread),
		MaxTemperature: MetricOf(temp + minMaxSpread),
		Humidity:       MetricOf(defaultHumidity),
		Pressure:       MetricOf(defaultPressureHPa),
		Condition:      flat.Condition,
	}
	if flat.MinTemperature.Set {
		day.MinTemperature = MetricOf(flat.MinTemperature.Value)
	}
	if flat.MaxTemperature.Set {
		day.MaxTemperature = MetricOf(flat.MaxTemperature.Value)
	}
	if flat.Humidity.Set {
		day.Humidity = MetricOf(flat.Humidity.Value)
	}
	if flat.Pressure.Set {
		day.Pressure = MetricOf(flat.Pressure.Value)
	}
	return day
}

// normalizeForecast walks the entries in order, keeping the first entry of
// each calendar date until maxDisplayDays distinct dates are emitted.
// Unlike the flat path, missing numerics stay absent and render as "N/A".
func normalizeForecast(entries []ForecastEntry) []DisplayDay {
	seen := make(map[string]bool)
	days := make([]DisplayDay, 0, maxDisplayDays)

	for _, entry := range entries {
		if entry.Main == nil {
			continue
		}

		ts := entryTime(entry.DtTxt)
		dateKey := ts.Format(dateLayout)
		if seen[dateKey] {
			continue
		}
		seen[dateKey] = true

		condition := "N/A"
		if len(entry.Weather) > 0 && entry.Weather[0].Main != "" {
			condition = entry.Weather[0].Main
		}

		days = append(days, DisplayDay{
			Day:            ts.Weekday().String(),
			Date:           dateKey,
			Temperature:    metricFrom(entry.Main.Temp),
			MinTemperature: metricFrom(entry.Main.TempMin),
			MaxTemperature: metricFrom(entry.Main.TempMax),
			Humidity:       metricFrom(entry.Main.Humidity),
			Pressure:       metricFrom(entry.Main.Pressure),
			Condition:      condition,
		})
		if len(days) == maxDisplayDays {
			break
		}
	}
	return days
}

// entryTime parses a forecast timestamp, falling back to its date portion
// alone and finally to the current time.
func entryTime(dtTxt string) time.Time {
	if ts, err := time.Parse(forecastLayout, dtTxt); err == nil {
		return ts
	}
	if len(dtTxt) >= len(dateLayout) {
		if ts, err := time.Parse(dateLayout, dtTxt[:len(dateLayout)]); err == nil {
			return ts
		}
	}
	return time.Now()
}

func metricFrom(f flexFloat) Metric {
	return Metric{Value: f.Value, Valid: f.Set}
}
