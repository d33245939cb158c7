package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/prefs"
	"github.com/i474232898/weather-lookup/internal/searches"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

type stubFetcher struct {
	body string
}

func (s stubFetcher) Fetch(ctx context.Context, city string) (weather.RawResponse, error) {
	return weather.DecodeResponse([]byte(s.body))
}

func newTestApp(t *testing.T, body string) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	backend := store.NewMemoryBackend(0)
	recent := searches.New(backend, 5)
	units := prefs.NewUnits(backend)
	svc := weather.NewService(stubFetcher{body: body}, recent)

	RegisterRoutes(app, svc, recent, units)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
	}
	return resp, payload
}

func TestLookupReturnsCards(t *testing.T) {
	app := newTestApp(t, `{"temperature": 20, "condition": "Rain"}`)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/weather/Lisbon", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["city"] != "Lisbon" {
		t.Errorf("expected city Lisbon, got %v", payload["city"])
	}
	if payload["unit"] != "celsius" {
		t.Errorf("expected default celsius, got %v", payload["unit"])
	}

	days, ok := payload["days"].([]any)
	if !ok || len(days) != 1 {
		t.Fatalf("expected one day card, got %v", payload["days"])
	}
	day := days[0].(map[string]any)
	if day["temperature"] != float64(20) {
		t.Errorf("expected temperature 20, got %v", day["temperature"])
	}
}

func TestLookupRejectsMalformedCity(t *testing.T) {
	app := newTestApp(t, `{"temperature": 20}`)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/weather/x1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if payload["error"] != true {
		t.Errorf("expected error payload, got %v", payload)
	}
}

func TestLookupUnrecognizedShapeIsNotFound(t *testing.T) {
	app := newTestApp(t, `{"message": "nope"}`)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/weather/Atlantis", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if msg, _ := payload["message"].(string); msg != "city not found" {
		t.Errorf("expected city-not-found message, got %q", msg)
	}
}

func TestLookupRecordsRecentSearch(t *testing.T) {
	app := newTestApp(t, `{"temperature": 20}`)

	if resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather/Lisbon", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup failed")
	}

	_, payload := doRequest(t, app, http.MethodGet, "/api/v1/searches", "")
	recent, ok := payload["recentSearches"].([]any)
	if !ok || len(recent) != 1 || recent[0] != "Lisbon" {
		t.Fatalf("expected [Lisbon], got %v", payload["recentSearches"])
	}
}

func TestUnitToggleReRendersLastResult(t *testing.T) {
	app := newTestApp(t, `{"temperature": 0, "condition": "Clear"}`)

	if resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather/Lisbon", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup failed")
	}

	resp, payload := doRequest(t, app, http.MethodPut, "/api/v1/preferences/units", `{"unit": "fahrenheit"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["unit"] != "fahrenheit" {
		t.Errorf("expected fahrenheit, got %v", payload["unit"])
	}

	days := payload["days"].([]any)
	day := days[0].(map[string]any)
	if day["temperature"] != float64(32) {
		t.Errorf("expected 0C rendered as 32F, got %v", day["temperature"])
	}

	// The retained source data stays Celsius: toggling back restores it.
	_, payload = doRequest(t, app, http.MethodPut, "/api/v1/preferences/units", `{"unit": "celsius"}`)
	day = payload["days"].([]any)[0].(map[string]any)
	if day["temperature"] != float64(0) {
		t.Errorf("expected 0C after toggling back, got %v", day["temperature"])
	}
}

func TestUnitToggleRejectsUnknownUnit(t *testing.T) {
	app := newTestApp(t, `{"temperature": 0}`)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/v1/preferences/units", `{"unit": "kelvin"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestClearWeatherRemovesRetainedResult(t *testing.T) {
	app := newTestApp(t, `{"temperature": 20}`)

	if resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather/Lisbon", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup failed")
	}

	if resp, _ := doRequest(t, app, http.MethodDelete, "/api/v1/weather", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on clear, got %d", resp.StatusCode)
	}

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after clear, got %d", resp.StatusCode)
	}
}

func TestClearSearches(t *testing.T) {
	app := newTestApp(t, `{"temperature": 20}`)

	doRequest(t, app, http.MethodGet, "/api/v1/weather/Lisbon", "")
	if resp, _ := doRequest(t, app, http.MethodDelete, "/api/v1/searches", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	_, payload := doRequest(t, app, http.MethodGet, "/api/v1/searches", "")
	if recent, _ := payload["recentSearches"].([]any); len(recent) != 0 {
		t.Fatalf("expected empty history, got %v", recent)
	}
}

func TestForecastDaysRenderNA(t *testing.T) {
	app := newTestApp(t, `{"list": [
		{"dt_txt": "2024-03-04 00:00:00", "main": {"temp": 12}}
	]}`)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/weather/Lisbon", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	day := payload["days"].([]any)[0].(map[string]any)
	if day["humidityPercent"] != "N/A" {
		t.Errorf("expected N/A humidity, got %v", day["humidityPercent"])
	}
	if day["temperature"] != float64(12) {
		t.Errorf("expected temperature 12, got %v", day["temperature"])
	}
}
