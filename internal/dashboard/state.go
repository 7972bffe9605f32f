// Package dashboard keeps each favorite city's weather state fresh: it owns
// the transient per-city snapshot/forecast/loading/error maps and the
// recurring refresh timer that feeds them.
package dashboard

import (
	"sync"

	"weatherdash/internal/weather"
)

// CityWeather is the per-city view the presentation layer reads. Current and
// Forecast are nil until a fetch has succeeded at least once.
type CityWeather struct {
	Current  *weather.Snapshot
	Forecast *weather.ForecastBundle
	Loading  bool
	Err      string
}

// State holds transient per-city weather data keyed by city ID. It is not
// persisted; a restart begins empty.
type State struct {
	mu        sync.RWMutex
	current   map[string]weather.Snapshot
	forecasts map[string]weather.ForecastBundle
	loading   map[string]bool
	errs      map[string]string
}

// NewState creates an empty State.
func NewState() *State {
	return &State{
		current:   make(map[string]weather.Snapshot),
		forecasts: make(map[string]weather.ForecastBundle),
		loading:   make(map[string]bool),
		errs:      make(map[string]string),
	}
}

// SetLoading marks a fetch cycle as in flight for the city.
func (s *State) SetLoading(cityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[cityID] = true
}

// SetResult replaces the city's snapshot and forecast wholesale, clears its
// error, and ends the loading state.
func (s *State) SetResult(cityID string, snap weather.Snapshot, bundle weather.ForecastBundle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current[cityID] = snap
	s.forecasts[cityID] = bundle
	s.loading[cityID] = false
	delete(s.errs, cityID)
}

// SetError records a failed cycle. Previously fetched data stays visible;
// stale-but-present beats blank.
func (s *State) SetError(cityID, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errs[cityID] = msg
	s.loading[cityID] = false
}

// Drop removes every entry for the city. Called when a favorite is removed
// so no stale state survives the city's identity.
func (s *State) Drop(cityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.current, cityID)
	delete(s.forecasts, cityID)
	delete(s.loading, cityID)
	delete(s.errs, cityID)
}

// City returns a copy of the city's current view.
func (s *State) City(cityID string) CityWeather {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cw := CityWeather{
		Loading: s.loading[cityID],
		Err:     s.errs[cityID],
	}
	if snap, ok := s.current[cityID]; ok {
		cw.Current = &snap
	}
	if bundle, ok := s.forecasts[cityID]; ok {
		cw.Forecast = &bundle
	}
	return cw
}
