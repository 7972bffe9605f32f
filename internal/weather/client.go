package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"weatherdash/internal/cache"
	"weatherdash/internal/conditions"
	"weatherdash/internal/logger"
	"weatherdash/internal/units"
)

const (
	defaultForecastBaseURL  = "https://api.open-meteo.com/v1/forecast"
	defaultGeocodingBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature," +
		"weather_code,pressure_msl,wind_speed_10m,wind_direction_10m,visibility"
	hourlyFields = "temperature_2m,relative_humidity_2m,weather_code," +
		"precipitation_probability,precipitation,wind_speed_10m"
	dailyFields = "weather_code,temperature_2m_max,temperature_2m_min," +
		"precipitation_sum,precipitation_probability_max,wind_speed_10m_max," +
		"relative_humidity_2m_mean"

	forecastDays    = 7
	maxHourlyPoints = 24
	maxDailyPoints  = 7
	maxPlaceMatches = 5
	minQueryLength  = 2
)

// Client fetches and normalizes weather data from Open-Meteo. Current and
// forecast responses are cached per coordinate pair; place search is not.
type Client struct {
	httpClient   *http.Client
	responses    *cache.Cache
	forecastURL  string
	geocodingURL string
	circuit      *gobreaker.CircuitBreaker
	log          logger.Logger
}

// Option adjusts a Client at construction time.
type Option func(*Client)

// WithBaseURLs overrides the provider endpoints. Tests point them at local
// fake servers.
func WithBaseURLs(forecast, geocoding string) Option {
	return func(c *Client) {
		c.forecastURL = forecast
		c.geocodingURL = geocoding
	}
}

// NewClient creates a Client sharing the given HTTP client and response cache.
func NewClient(httpClient *http.Client, responses *cache.Cache, log logger.Logger, opts ...Option) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	c := &Client{
		httpClient:   httpClient,
		responses:    responses,
		forecastURL:  defaultForecastBaseURL,
		geocodingURL: defaultGeocodingBaseURL,
		circuit:      cb,
		log:          log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(kind string, lat, lon float64) string {
	return fmt.Sprintf("%s_%f_%f", kind, lat, lon)
}

// doGet issues a GET through the circuit breaker. Any transport failure,
// breaker rejection, or non-2xx status comes back as a *FetchError.
func (c *Client) doGet(ctx context.Context, endpoint, rawURL string) (*http.Response, error) {
	c.log.Debugf("GET %s endpoint", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &FetchError{Endpoint: endpoint, Status: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, &FetchError{Endpoint: endpoint, Err: errors.New("unexpected circuit breaker result")}
	}
	return resp, nil
}

type openMeteoResponse struct {
	Current *struct {
		Time          int64    `json:"time"`
		Temperature   float64  `json:"temperature_2m"`
		Humidity      float64  `json:"relative_humidity_2m"`
		FeelsLike     float64  `json:"apparent_temperature"`
		WeatherCode   int      `json:"weather_code"`
		Pressure      float64  `json:"pressure_msl"`
		WindSpeed     float64  `json:"wind_speed_10m"`
		WindDirection float64  `json:"wind_direction_10m"`
		Visibility    *float64 `json:"visibility"`
	} `json:"current"`
	CurrentUnits struct {
		WindSpeed string `json:"wind_speed_10m"`
	} `json:"current_units"`
	Hourly *struct {
		Time              []int64   `json:"time"`
		Temperature       []float64 `json:"temperature_2m"`
		Humidity          []float64 `json:"relative_humidity_2m"`
		WeatherCode       []int     `json:"weather_code"`
		PrecipProbability []float64 `json:"precipitation_probability"`
		WindSpeed         []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
	Daily *struct {
		Time              []int64   `json:"time"`
		WeatherCode       []int     `json:"weather_code"`
		TempMax           []float64 `json:"temperature_2m_max"`
		TempMin           []float64 `json:"temperature_2m_min"`
		PrecipProbability []float64 `json:"precipitation_probability_max"`
		WindSpeedMax      []float64 `json:"wind_speed_10m_max"`
		HumidityMean      []float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

// CurrentConditions returns the normalized current weather at the given
// coordinates, serving from cache when a fresh entry exists.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64, cityID string) (Snapshot, error) {
	key := cacheKey("current", lat, lon)
	if v, ok := c.responses.Get(key); ok {
		snap := v.(Snapshot)
		snap.CityID = cityID
		return snap, nil
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current", currentFields)
	values.Set("timeformat", "unixtime")

	resp, err := c.doGet(ctx, "current", fmt.Sprintf("%s?%s", c.forecastURL, values.Encode()))
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, &MalformedResponseError{Endpoint: "current", Section: "body"}
	}
	cur := payload.Current
	if cur == nil {
		return Snapshot{}, &MalformedResponseError{Endpoint: "current", Section: "current"}
	}

	// The unit declaration is per-response and authoritative. An absent
	// declaration is assumed to be km/h, the provider default.
	wind := cur.WindSpeed
	if unit := payload.CurrentUnits.WindSpeed; unit == "km/h" || unit == "" {
		wind = units.KmhToMs(wind)
	}

	m := conditions.Lookup(cur.WeatherCode)

	snap := Snapshot{
		CityID:        cityID,
		Temperature:   cur.Temperature,
		FeelsLike:     cur.FeelsLike,
		Condition:     m.Label,
		Icon:          m.Icon,
		Humidity:      cur.Humidity,
		WindSpeed:     wind,
		WindDirection: cur.WindDirection,
		Pressure:      cur.Pressure,
		Visibility:    cur.Visibility,
		Timestamp:     time.Now().UTC(),
	}

	c.responses.Put(key, snap)
	return snap, nil
}

// Forecast returns the normalized 7-day forecast at the given coordinates,
// truncated to 24 hourly and 7 daily points in source order.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, cityID string) (ForecastBundle, error) {
	key := cacheKey("forecast", lat, lon)
	if v, ok := c.responses.Get(key); ok {
		bundle := v.(ForecastBundle)
		bundle.CityID = cityID
		return bundle, nil
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("hourly", hourlyFields)
	values.Set("daily", dailyFields)
	values.Set("timeformat", "unixtime")
	values.Set("forecast_days", fmt.Sprintf("%d", forecastDays))

	resp, err := c.doGet(ctx, "forecast", fmt.Sprintf("%s?%s", c.forecastURL, values.Encode()))
	if err != nil {
		return ForecastBundle{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ForecastBundle{}, &MalformedResponseError{Endpoint: "forecast", Section: "body"}
	}
	if payload.Hourly == nil {
		return ForecastBundle{}, &MalformedResponseError{Endpoint: "forecast", Section: "hourly"}
	}
	if payload.Daily == nil {
		return ForecastBundle{}, &MalformedResponseError{Endpoint: "forecast", Section: "daily"}
	}

	hourly := make([]HourlyPoint, 0, maxHourlyPoints)
	for i := range payload.Hourly.Time {
		if i >= maxHourlyPoints {
			break
		}
		m := conditions.Lookup(intAt(payload.Hourly.WeatherCode, i))
		hourly = append(hourly, HourlyPoint{
			Time:          time.Unix(payload.Hourly.Time[i], 0).UTC(),
			Temperature:   floatAt(payload.Hourly.Temperature, i),
			Condition:     m.Label,
			Icon:          m.Icon,
			Precipitation: floatAt(payload.Hourly.PrecipProbability, i),
			WindSpeed:     units.KmhToMs(floatAt(payload.Hourly.WindSpeed, i)),
			Humidity:      floatAt(payload.Hourly.Humidity, i),
		})
	}

	daily := make([]DailyPoint, 0, maxDailyPoints)
	for i := range payload.Daily.Time {
		if i >= maxDailyPoints {
			break
		}
		m := conditions.Lookup(intAt(payload.Daily.WeatherCode, i))
		daily = append(daily, DailyPoint{
			Date:          time.Unix(payload.Daily.Time[i], 0).UTC(),
			TempMax:       floatAt(payload.Daily.TempMax, i),
			TempMin:       floatAt(payload.Daily.TempMin, i),
			Condition:     m.Label,
			Icon:          m.Icon,
			Precipitation: floatAt(payload.Daily.PrecipProbability, i),
			Humidity:      floatAt(payload.Daily.HumidityMean, i),
			WindSpeed:     units.KmhToMs(floatAt(payload.Daily.WindSpeedMax, i)),
		})
	}

	bundle := ForecastBundle{
		CityID: cityID,
		Hourly: hourly,
		Daily:  daily,
	}

	c.responses.Put(key, bundle)
	return bundle, nil
}

// SearchPlaces looks up places by name, returning up to 5 matches in
// provider order. Queries shorter than 2 characters return no matches
// without a network call. Search results are free text and are not cached.
func (c *Client) SearchPlaces(ctx context.Context, query string) ([]PlaceMatch, error) {
	if len(query) < minQueryLength {
		return nil, nil
	}

	values := url.Values{}
	values.Set("name", query)
	values.Set("count", fmt.Sprintf("%d", maxPlaceMatches))

	resp, err := c.doGet(ctx, "geocoding", fmt.Sprintf("%s?%s", c.geocodingURL, values.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			Country     string  `json:"country"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &MalformedResponseError{Endpoint: "geocoding", Section: "body"}
	}

	matches := make([]PlaceMatch, 0, len(payload.Results))
	for _, r := range payload.Results {
		country := r.Country
		if country == "" {
			country = r.CountryCode
		}
		matches = append(matches, PlaceMatch{
			Name:      r.Name,
			Country:   country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return matches, nil
}

// floatAt reads vals[i], defaulting to zero when the provider omitted the
// series or returned fewer points than the time axis.
func floatAt(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func intAt(vals []int, i int) int {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
