package httpapi

import (
	"errors"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/prefs"
	"github.com/i474232898/weather-lookup/internal/searches"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *weather.Service, recent *searches.Store, units *prefs.Units) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/:city", func(c *fiber.Ctx) error {
		city, err := url.PathUnescape(c.Params("city"))
		if err != nil {
			city = c.Params("city")
		}

		result, err := svc.Lookup(c.Context(), city)
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(renderResult(result, units.Get()))
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		result := svc.Last()
		if result == nil {
			return fiber.NewError(fiber.StatusNotFound, "no weather result to display")
		}
		return c.JSON(renderResult(result, units.Get()))
	})

	v1.Delete("/weather", func(c *fiber.Ctx) error {
		svc.Clear()
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/searches", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"recentSearches": recent.List(),
		})
	})

	v1.Delete("/searches", func(c *fiber.Ctx) error {
		recent.Clear()
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/preferences/units", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"unit": units.Get(),
		})
	})

	v1.Put("/preferences/units", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		unit, _ := weather.ParseUnit(req.Unit)
		if err := units.Set(unit); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store unit preference")
		}

		// Re-render the retained result in the new unit; no upstream call.
		if result := svc.Last(); result != nil {
			return c.JSON(renderResult(result, unit))
		}
		return c.JSON(fiber.Map{"unit": unit})
	})
}

// unitRequest is the PUT /preferences/units body.
type unitRequest struct {
	Unit string `json:"unit" validate:"required,oneof=celsius fahrenheit"`
}

// lookupError maps pipeline errors onto HTTP statuses. Fetch failures
// never appear here; the fetcher absorbs them into mock data.
func lookupError(err error) error {
	switch {
	case errors.Is(err, weather.ErrEmptyCity), errors.Is(err, weather.ErrInvalidCityFormat):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrUnrecognizedShape):
		return fiber.NewError(fiber.StatusNotFound, "city not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// renderResult projects the Celsius-based result into the requested unit.
func renderResult(result *weather.LookupResult, unit weather.Unit) fiber.Map {
	days := make([]weather.DisplayDay, 0, len(result.Days))
	for _, d := range result.Days {
		days = append(days, d.InUnit(unit))
	}
	return fiber.Map{
		"city":      result.City,
		"unit":      unit,
		"fetchedAt": result.FetchedAt.Format(time.RFC3339),
		"days":      days,
	}
}
