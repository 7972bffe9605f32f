// Package units holds the pure unit conversions applied when normalizing
// provider data and when rendering temperatures for display.
package units

// TemperatureUnit is the display unit for temperatures. Stored weather data
// is always Celsius; conversion happens at presentation time only.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

// Valid reports whether u is a supported temperature unit.
func (u TemperatureUnit) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// CelsiusToFahrenheit converts a temperature in degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(t float64) float64 {
	return t*9/5 + 32
}

// ConvertTemperature converts a Celsius value into the requested display
// unit. Celsius is the identity.
func ConvertTemperature(t float64, unit TemperatureUnit) float64 {
	if unit == Fahrenheit {
		return CelsiusToFahrenheit(t)
	}
	return t
}

// KmhToMs converts a wind speed from km/h to m/s.
func KmhToMs(v float64) float64 {
	return v / 3.6
}
