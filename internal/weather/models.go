package weather

import "time"

// City is a user-tracked location. The ID is generated once at creation and
// never changes; removal is the only mutation.
type City struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Snapshot is the normalized current-conditions record for one city.
// Temperatures are Celsius, wind speed m/s, pressure hPa. A snapshot is
// replaced wholesale on every successful refresh, never partially mutated.
type Snapshot struct {
	CityID        string    `json:"cityId"`
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	Condition     string    `json:"condition"`
	Icon          string    `json:"icon"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	Pressure      float64   `json:"pressure"`
	Visibility    *float64  `json:"visibility,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// HourlyPoint is one hour of forecast data. Precipitation is the
// precipitation probability in percent.
type HourlyPoint struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	Condition     string    `json:"condition"`
	Icon          string    `json:"icon"`
	Precipitation float64   `json:"precipitation"`
	WindSpeed     float64   `json:"windSpeed"`
	Humidity      float64   `json:"humidity"`
}

// DailyPoint is one day of forecast data.
type DailyPoint struct {
	Date          time.Time `json:"date"`
	TempMax       float64   `json:"tempMax"`
	TempMin       float64   `json:"tempMin"`
	Condition     string    `json:"condition"`
	Icon          string    `json:"icon"`
	Precipitation float64   `json:"precipitation"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"`
}

// ForecastBundle is the chronologically ordered hourly and daily forecast
// for one city, replaced as a unit on every refetch.
type ForecastBundle struct {
	CityID string        `json:"cityId"`
	Hourly []HourlyPoint `json:"hourly"`
	Daily  []DailyPoint  `json:"daily"`
}

// PlaceMatch is one geocoding search result, in provider order.
type PlaceMatch struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}
