// Package conditions maps WMO weather codes from the Open-Meteo vocabulary
// to human-readable condition labels and icon tokens.
package conditions

import "fmt"

// Mapping is the condition label and icon token for one weather code.
type Mapping struct {
	Label string `json:"condition"`
	Icon  string `json:"icon"`
}

// fallback is returned for any code outside the known table.
var fallback = Mapping{Label: "Unknown", Icon: "01d"}

// byCode covers the WMO codes Open-Meteo actually emits. Icon tokens follow
// the OpenWeatherMap day/night naming so existing icon sets keep working.
var byCode = map[int]Mapping{
	0:  {Label: "Clear", Icon: "01d"},
	1:  {Label: "Mainly clear", Icon: "01d"},
	2:  {Label: "Partly cloudy", Icon: "02d"},
	3:  {Label: "Overcast", Icon: "04d"},
	45: {Label: "Fog", Icon: "50d"},
	48: {Label: "Fog", Icon: "50d"},
	51: {Label: "Drizzle", Icon: "09d"},
	52: {Label: "Drizzle", Icon: "09d"},
	53: {Label: "Drizzle", Icon: "09d"},
	56: {Label: "Freezing drizzle", Icon: "09d"},
	57: {Label: "Freezing drizzle", Icon: "09d"},
	61: {Label: "Rain", Icon: "10d"},
	62: {Label: "Rain", Icon: "10d"},
	63: {Label: "Rain", Icon: "10d"},
	66: {Label: "Freezing rain", Icon: "10d"},
	67: {Label: "Freezing rain", Icon: "10d"},
	71: {Label: "Snow", Icon: "13d"},
	72: {Label: "Snow", Icon: "13d"},
	73: {Label: "Snow", Icon: "13d"},
	77: {Label: "Snow grains", Icon: "13d"},
	80: {Label: "Rain showers", Icon: "09d"},
	81: {Label: "Rain showers", Icon: "09d"},
	82: {Label: "Rain showers", Icon: "09d"},
	85: {Label: "Snow showers", Icon: "13d"},
	86: {Label: "Snow showers", Icon: "13d"},
	95: {Label: "Thunderstorm", Icon: "11d"},
	96: {Label: "Thunderstorm", Icon: "11d"},
	99: {Label: "Thunderstorm", Icon: "11d"},
}

// Lookup is total: every code yields a mapping, unknown codes the fallback.
func Lookup(code int) Mapping {
	if m, ok := byCode[code]; ok {
		return m
	}
	return fallback
}

const iconURLTemplate = "https://openweathermap.org/img/wn/%s@2x.png"

// IconURL renders an icon token into a fetchable image URL.
func IconURL(token string) string {
	return fmt.Sprintf(iconURLTemplate, token)
}
