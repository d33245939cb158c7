package weather

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ResponseKind discriminates the shapes a weather source can return.
type ResponseKind int

const (
	KindUnrecognized ResponseKind = iota
	KindFlat
	KindForecast
)

// Unit is the temperature unit used when rendering display data.
type Unit string

const (
	UnitCelsius    Unit = "celsius"
	UnitFahrenheit Unit = "fahrenheit"
)

// ParseUnit validates a unit string coming from storage or the API.
func ParseUnit(s string) (Unit, bool) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case UnitCelsius:
		return UnitCelsius, true
	case UnitFahrenheit:
		return UnitFahrenheit, true
	}
	return UnitCelsius, false
}

// flexFloat decodes JSON numbers and numeric strings. Anything else,
// including NaN and infinities, leaves the value unset so defaults can
// apply instead of propagating garbage into the display.
type flexFloat struct {
	Value float64
	Set   bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if v, err := n.Float64(); err == nil {
			f.set(v)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			f.set(v)
		}
	}
	return nil
}

func (f *flexFloat) set(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	f.Value = v
	f.Set = true
}

// FlatReading is the single-day payload shape: top-level temperature plus
// optional extras.
type FlatReading struct {
	City           string    `json:"city"`
	Temperature    flexFloat `json:"temperature"`
	Condition      string    `json:"condition"`
	Humidity       flexFloat `json:"humidity"`
	MinTemperature flexFloat `json:"minTemperature"`
	MaxTemperature flexFloat `json:"maxTemperature"`
	Pressure       flexFloat `json:"pressure"`
	Date           string    `json:"date"`
}

// ForecastEntry is one timestamped record of the forecast payload shape.
type ForecastEntry struct {
	DtTxt string        `json:"dt_txt"`
	Main  *ForecastMain `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// ForecastMain holds the numeric block of a forecast entry.
type ForecastMain struct {
	Temp     flexFloat `json:"temp"`
	TempMin  flexFloat `json:"temp_min"`
	TempMax  flexFloat `json:"temp_max"`
	Humidity flexFloat `json:"humidity"`
	Pressure flexFloat `json:"pressure"`
}

// RawResponse is a tagged union over the two payload shapes a weather
// source can return. Exactly one variant is meaningful, selected by Kind.
type RawResponse struct {
	Kind ResponseKind
	Flat FlatReading
	List []ForecastEntry
}

// DecodeResponse parses an upstream body and discriminates its shape.
// A body that is not valid JSON is an error (the caller treats it as a
// fetch failure); valid JSON matching neither shape decodes to
// KindUnrecognized, which the normalizer rejects.
func DecodeResponse(body []byte) (RawResponse, error) {
	var probe struct {
		FlatReading
		Temperature *flexFloat       `json:"temperature"`
		List        *[]ForecastEntry `json:"list"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return RawResponse{}, err
	}

	switch {
	case probe.Temperature != nil && probe.Temperature.Set:
		flat := probe.FlatReading
		flat.Temperature = *probe.Temperature
		return RawResponse{Kind: KindFlat, Flat: flat}, nil
	case probe.List != nil:
		return RawResponse{Kind: KindForecast, List: *probe.List}, nil
	}
	return RawResponse{Kind: KindUnrecognized}, nil
}

// Metric is a display value that may be absent. Absent values render as
// "N/A" instead of a number.
type Metric struct {
	Value float64
	Valid bool
}

func MetricOf(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*m = MetricOf(v)
		return nil
	}
	*m = Metric{}
	return nil
}

// DisplayDay is the normalized per-day record used for rendering.
// Temperature values are always Celsius; unit conversion happens as a
// read-time projection via InUnit.
type DisplayDay struct {
	Day            string `json:"day"`
	Date           string `json:"date"`
	Temperature    Metric `json:"temperature"`
	MinTemperature Metric `json:"minTemperature"`
	MaxTemperature Metric `json:"maxTemperature"`
	Humidity       Metric `json:"humidityPercent"`
	Pressure       Metric `json:"pressureHpa"`
	Condition      string `json:"condition"`
}

// InUnit returns a copy of the day with temperature fields converted to
// the requested unit. The receiver is never mutated.
func (d DisplayDay) InUnit(u Unit) DisplayDay {
	if u != UnitFahrenheit {
		return d
	}
	out := d
	out.Temperature = convertMetric(d.Temperature)
	out.MinTemperature = convertMetric(d.MinTemperature)
	out.MaxTemperature = convertMetric(d.MaxTemperature)
	return out
}

func convertMetric(m Metric) Metric {
	if !m.Valid {
		return m
	}
	return MetricOf(ToFahrenheit(m.Value))
}
