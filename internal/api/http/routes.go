// Package httpapi exposes the dashboard state over HTTP: favorites, the
// per-city weather views, place search, and the display settings.
package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weatherdash/internal/conditions"
	"weatherdash/internal/dashboard"
	"weatherdash/internal/store"
	"weatherdash/internal/units"
	"weatherdash/internal/weather"
)

var validate = validator.New()

// PlaceSearcher is the geocoding slice of the weather client.
type PlaceSearcher interface {
	SearchPlaces(ctx context.Context, query string) ([]weather.PlaceMatch, error)
}

// API bundles the components the handlers read and mutate.
type API struct {
	Orchestrator *dashboard.Orchestrator
	Favorites    *store.FavoritesStore
	State        *dashboard.State
	Settings     *store.SettingsStore
	Places       PlaceSearcher
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, api API) {
	v1 := app.Group("/api/v1")

	v1.Get("/places/search", func(c *fiber.Ctx) error {
		matches, err := api.Places.SearchPlaces(c.UserContext(), c.Query("q"))
		if err != nil {
			return upstreamError(err)
		}
		if matches == nil {
			matches = []weather.PlaceMatch{}
		}
		return c.JSON(fiber.Map{"results": matches})
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(api.Favorites.List())
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		var req addFavoriteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		city := api.Orchestrator.AddCity(req.Name, req.Country, req.Latitude, req.Longitude)
		return c.Status(fiber.StatusCreated).JSON(city)
	})

	v1.Delete("/favorites/:id", func(c *fiber.Ctx) error {
		if !api.Orchestrator.RemoveCity(c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, "favorite not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		unit := api.Settings.TemperatureUnit()
		cities := api.Favorites.List()

		views := make([]cityView, 0, len(cities))
		for _, city := range cities {
			views = append(views, buildCityView(city, api.State.City(city.ID), unit))
		}
		return c.JSON(fiber.Map{
			"temperatureUnit": unit,
			"cities":          views,
		})
	})

	v1.Get("/dashboard/:cityID", func(c *fiber.Ctx) error {
		city, ok := api.Favorites.Get(c.Params("cityID"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "favorite not found")
		}

		unit := api.Settings.TemperatureUnit()
		return c.JSON(fiber.Map{
			"temperatureUnit": unit,
			"city":            buildCityView(city, api.State.City(city.ID), unit),
		})
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"temperatureUnit": api.Settings.TemperatureUnit()})
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := api.Settings.SetTemperatureUnit(units.TemperatureUnit(req.TemperatureUnit)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"temperatureUnit": api.Settings.TemperatureUnit()})
	})
}

// addFavoriteRequest is the body of POST /favorites.
type addFavoriteRequest struct {
	Name      string  `json:"name" validate:"required"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// settingsRequest is the body of PUT /settings.
type settingsRequest struct {
	TemperatureUnit string `json:"temperatureUnit" validate:"required,oneof=celsius fahrenheit"`
}

// snapshotView is a Snapshot with display-converted temperatures and a
// resolved icon URL.
type snapshotView struct {
	weather.Snapshot
	IconURL string `json:"iconUrl"`
}

// cityView is the per-city payload the presentation layer renders.
type cityView struct {
	City     weather.City            `json:"city"`
	Weather  *snapshotView           `json:"weather,omitempty"`
	Forecast *weather.ForecastBundle `json:"forecast,omitempty"`
	Loading  bool                    `json:"loading"`
	Error    string                  `json:"error,omitempty"`
}

// buildCityView converts temperatures into the preferred display unit.
// Stored data stays Celsius; only the response changes.
func buildCityView(city weather.City, cw dashboard.CityWeather, unit units.TemperatureUnit) cityView {
	view := cityView{
		City:    city,
		Loading: cw.Loading,
		Error:   cw.Err,
	}

	if cw.Current != nil {
		snap := *cw.Current
		snap.Temperature = units.ConvertTemperature(snap.Temperature, unit)
		snap.FeelsLike = units.ConvertTemperature(snap.FeelsLike, unit)
		view.Weather = &snapshotView{
			Snapshot: snap,
			IconURL:  conditions.IconURL(snap.Icon),
		}
	}

	if cw.Forecast != nil {
		bundle := *cw.Forecast
		bundle.Hourly = append([]weather.HourlyPoint(nil), bundle.Hourly...)
		bundle.Daily = append([]weather.DailyPoint(nil), bundle.Daily...)
		for i := range bundle.Hourly {
			bundle.Hourly[i].Temperature = units.ConvertTemperature(bundle.Hourly[i].Temperature, unit)
		}
		for i := range bundle.Daily {
			bundle.Daily[i].TempMax = units.ConvertTemperature(bundle.Daily[i].TempMax, unit)
			bundle.Daily[i].TempMin = units.ConvertTemperature(bundle.Daily[i].TempMin, unit)
		}
		view.Forecast = &bundle
	}

	return view
}

// upstreamError maps provider failures onto HTTP statuses.
func upstreamError(err error) error {
	var fe *weather.FetchError
	var me *weather.MalformedResponseError
	if errors.As(err, &fe) || errors.As(err, &me) {
		return fiber.NewError(fiber.StatusBadGateway, "weather provider unavailable")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to search places")
}
