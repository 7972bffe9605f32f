package weather

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/internal/cache"
	"weatherdash/internal/logger"
)

func newTestClient(forecastURL, geocodingURL string) *Client {
	return NewClient(
		&http.Client{Timeout: 5 * time.Second},
		cache.New(cache.DefaultTTL),
		logger.NewWithWriter("error", io.Discard),
		WithBaseURLs(forecastURL, geocodingURL),
	)
}

func jsonServer(t *testing.T, calls *atomic.Int64, payload interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode payload: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func currentPayload(windUnit string) map[string]interface{} {
	payload := map[string]interface{}{
		"current": map[string]interface{}{
			"time":                 1_700_000_000,
			"temperature_2m":       4.5,
			"relative_humidity_2m": 81,
			"apparent_temperature": 2.1,
			"weather_code":         61,
			"pressure_msl":         1013.2,
			"wind_speed_10m":       36.0,
			"wind_direction_10m":   270,
			"visibility":           24140.0,
		},
	}
	if windUnit != "" {
		payload["current_units"] = map[string]interface{}{"wind_speed_10m": windUnit}
	}
	return payload
}

func TestCurrentConditionsNormalizes(t *testing.T) {
	srv := jsonServer(t, nil, currentPayload("km/h"))
	c := newTestClient(srv.URL, srv.URL)

	snap, err := c.CurrentConditions(context.Background(), 52.52, 13.41, "city-1")
	require.NoError(t, err)

	assert.Equal(t, "city-1", snap.CityID)
	assert.Equal(t, 4.5, snap.Temperature)
	assert.Equal(t, 2.1, snap.FeelsLike)
	assert.Equal(t, "Rain", snap.Condition)
	assert.Equal(t, "10d", snap.Icon)
	assert.Equal(t, 81.0, snap.Humidity)
	assert.Equal(t, 10.0, snap.WindSpeed) // 36 km/h declared, converted
	assert.Equal(t, 270.0, snap.WindDirection)
	assert.Equal(t, 1013.2, snap.Pressure)
	require.NotNil(t, snap.Visibility)
	assert.Equal(t, 24140.0, *snap.Visibility)
	assert.WithinDuration(t, time.Now().UTC(), snap.Timestamp, 5*time.Second)
}

func TestCurrentConditionsWindUnitHandling(t *testing.T) {
	t.Run("declared m/s is kept", func(t *testing.T) {
		srv := jsonServer(t, nil, currentPayload("m/s"))
		c := newTestClient(srv.URL, srv.URL)

		snap, err := c.CurrentConditions(context.Background(), 1, 2, "c")
		require.NoError(t, err)
		assert.Equal(t, 36.0, snap.WindSpeed)
	})

	t.Run("absent declaration assumes km/h", func(t *testing.T) {
		srv := jsonServer(t, nil, currentPayload(""))
		c := newTestClient(srv.URL, srv.URL)

		snap, err := c.CurrentConditions(context.Background(), 1, 2, "c")
		require.NoError(t, err)
		assert.Equal(t, 10.0, snap.WindSpeed)
	})
}

func TestCurrentConditionsMissingSection(t *testing.T) {
	srv := jsonServer(t, nil, map[string]interface{}{"latitude": 52.52})
	c := newTestClient(srv.URL, srv.URL)

	_, err := c.CurrentConditions(context.Background(), 52.52, 13.41, "c")

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "current", malformed.Section)
}

func TestCurrentConditionsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(srv.URL, srv.URL)

	_, err := c.CurrentConditions(context.Background(), 1, 2, "c")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
}

func TestCurrentConditionsCacheHit(t *testing.T) {
	var calls atomic.Int64
	srv := jsonServer(t, &calls, currentPayload("km/h"))
	c := newTestClient(srv.URL, srv.URL)

	first, err := c.CurrentConditions(context.Background(), 1, 2, "old-id")
	require.NoError(t, err)

	second, err := c.CurrentConditions(context.Background(), 1, 2, "new-id")
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load(), "second call must be served from cache")
	assert.Equal(t, first.Temperature, second.Temperature)
	assert.Equal(t, "new-id", second.CityID, "cached payload is re-keyed to the caller's city")

	// Different coordinates are a different cache key.
	_, err = c.CurrentConditions(context.Background(), 3, 4, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func forecastPayload(hours, days int) map[string]interface{} {
	hourlyTime := make([]int64, hours)
	hourlyTemp := make([]float64, hours)
	hourlyHumidity := make([]float64, hours)
	hourlyCode := make([]int, hours)
	hourlyPrecip := make([]float64, hours)
	hourlyWind := make([]float64, hours)
	for i := 0; i < hours; i++ {
		hourlyTime[i] = 1_700_000_000 + int64(i)*3600
		hourlyTemp[i] = float64(i)
		hourlyHumidity[i] = 50
		hourlyCode[i] = 2
		hourlyPrecip[i] = float64(i % 100)
		hourlyWind[i] = 18
	}

	dailyTime := make([]int64, days)
	dailyCode := make([]int, days)
	dailyMax := make([]float64, days)
	dailyMin := make([]float64, days)
	dailyPrecip := make([]float64, days)
	dailyWind := make([]float64, days)
	dailyHumidity := make([]float64, days)
	for i := 0; i < days; i++ {
		dailyTime[i] = 1_700_000_000 + int64(i)*86400
		dailyCode[i] = 71
		dailyMax[i] = float64(10 + i)
		dailyMin[i] = float64(i)
		dailyPrecip[i] = 30
		dailyWind[i] = 36
		dailyHumidity[i] = 60
	}

	return map[string]interface{}{
		"hourly": map[string]interface{}{
			"time":                      hourlyTime,
			"temperature_2m":            hourlyTemp,
			"relative_humidity_2m":      hourlyHumidity,
			"weather_code":              hourlyCode,
			"precipitation_probability": hourlyPrecip,
			"wind_speed_10m":            hourlyWind,
		},
		"daily": map[string]interface{}{
			"time":                          dailyTime,
			"weather_code":                  dailyCode,
			"temperature_2m_max":            dailyMax,
			"temperature_2m_min":            dailyMin,
			"precipitation_probability_max": dailyPrecip,
			"wind_speed_10m_max":            dailyWind,
			"relative_humidity_2m_mean":     dailyHumidity,
		},
	}
}

func TestForecastTruncation(t *testing.T) {
	srv := jsonServer(t, nil, forecastPayload(48, 10))
	c := newTestClient(srv.URL, srv.URL)

	bundle, err := c.Forecast(context.Background(), 1, 2, "city-1")
	require.NoError(t, err)

	require.Len(t, bundle.Hourly, 24)
	require.Len(t, bundle.Daily, 7)

	// Source order is preserved.
	for i, p := range bundle.Hourly {
		assert.Equal(t, float64(i), p.Temperature)
	}
	for i, p := range bundle.Daily {
		assert.Equal(t, float64(10+i), p.TempMax)
	}

	// Each point's wind speed is converted km/h -> m/s and its weather
	// code is mapped independently.
	assert.Equal(t, 5.0, bundle.Hourly[0].WindSpeed)
	assert.Equal(t, "Partly cloudy", bundle.Hourly[0].Condition)
	assert.Equal(t, 10.0, bundle.Daily[0].WindSpeed)
	assert.Equal(t, "Snow", bundle.Daily[0].Condition)
	assert.Equal(t, "13d", bundle.Daily[0].Icon)
}

func TestForecastMissingFieldDefaults(t *testing.T) {
	payload := forecastPayload(6, 3)
	hourly := payload["hourly"].(map[string]interface{})
	delete(hourly, "precipitation_probability")

	srv := jsonServer(t, nil, payload)
	c := newTestClient(srv.URL, srv.URL)

	bundle, err := c.Forecast(context.Background(), 1, 2, "city-1")
	require.NoError(t, err)

	require.Len(t, bundle.Hourly, 6)
	for _, p := range bundle.Hourly {
		assert.Equal(t, 0.0, p.Precipitation)
	}
}

func TestForecastMissingSections(t *testing.T) {
	t.Run("missing daily", func(t *testing.T) {
		payload := forecastPayload(6, 3)
		delete(payload, "daily")

		srv := jsonServer(t, nil, payload)
		c := newTestClient(srv.URL, srv.URL)

		_, err := c.Forecast(context.Background(), 1, 2, "c")

		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "daily", malformed.Section)
	})

	t.Run("missing hourly", func(t *testing.T) {
		payload := forecastPayload(6, 3)
		delete(payload, "hourly")

		srv := jsonServer(t, nil, payload)
		c := newTestClient(srv.URL, srv.URL)

		_, err := c.Forecast(context.Background(), 1, 2, "c")

		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "hourly", malformed.Section)
	})
}

func TestForecastCacheHit(t *testing.T) {
	var calls atomic.Int64
	srv := jsonServer(t, &calls, forecastPayload(24, 7))
	c := newTestClient(srv.URL, srv.URL)

	_, err := c.Forecast(context.Background(), 1, 2, "c")
	require.NoError(t, err)
	_, err = c.Forecast(context.Background(), 1, 2, "c")
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load())
}

func TestSearchPlaces(t *testing.T) {
	var calls atomic.Int64
	srv := jsonServer(t, &calls, map[string]interface{}{
		"results": []map[string]interface{}{
			{"name": "Berlin", "latitude": 52.52, "longitude": 13.41, "country": "Germany"},
			{"name": "Bern", "latitude": 46.95, "longitude": 7.45, "country_code": "CH"},
			{"name": "Bergen", "latitude": 60.39, "longitude": 5.32},
		},
	})
	c := newTestClient(srv.URL, srv.URL)

	matches, err := c.SearchPlaces(context.Background(), "ber")
	require.NoError(t, err)

	require.Len(t, matches, 3)
	// Provider order is preserved; missing country falls back to the
	// country code, then to empty.
	assert.Equal(t, "Berlin", matches[0].Name)
	assert.Equal(t, "Germany", matches[0].Country)
	assert.Equal(t, "CH", matches[1].Country)
	assert.Equal(t, "", matches[2].Country)
	assert.Equal(t, 52.52, matches[0].Latitude)
}

func TestSearchPlacesShortQuery(t *testing.T) {
	var calls atomic.Int64
	srv := jsonServer(t, &calls, map[string]interface{}{})
	c := newTestClient(srv.URL, srv.URL)

	matches, err := c.SearchPlaces(context.Background(), "b")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, int64(0), calls.Load(), "short queries never hit the network")
}

func TestSearchPlacesNoResultsSection(t *testing.T) {
	srv := jsonServer(t, nil, map[string]interface{}{"generationtime_ms": 0.5})
	c := newTestClient(srv.URL, srv.URL)

	matches, err := c.SearchPlaces(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchPlacesFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(srv.URL, srv.URL)

	_, err := c.SearchPlaces(context.Background(), "berlin")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.Status)
}
