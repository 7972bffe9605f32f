package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/internal/weather"
)

func TestStateLifecycle(t *testing.T) {
	s := NewState()

	cw := s.City("c1")
	assert.Nil(t, cw.Current)
	assert.Nil(t, cw.Forecast)
	assert.False(t, cw.Loading)
	assert.Empty(t, cw.Err)

	s.SetLoading("c1")
	assert.True(t, s.City("c1").Loading)

	snap := weather.Snapshot{CityID: "c1", Temperature: 7}
	bundle := weather.ForecastBundle{CityID: "c1"}
	s.SetResult("c1", snap, bundle)

	cw = s.City("c1")
	require.NotNil(t, cw.Current)
	assert.Equal(t, 7.0, cw.Current.Temperature)
	require.NotNil(t, cw.Forecast)
	assert.False(t, cw.Loading)
	assert.Empty(t, cw.Err)
}

func TestStateErrorKeepsStaleData(t *testing.T) {
	s := NewState()
	s.SetResult("c1", weather.Snapshot{CityID: "c1", Temperature: 7}, weather.ForecastBundle{CityID: "c1"})

	s.SetLoading("c1")
	s.SetError("c1", "provider unavailable")

	cw := s.City("c1")
	require.NotNil(t, cw.Current, "a failed refresh never blanks existing data")
	assert.Equal(t, 7.0, cw.Current.Temperature)
	assert.Equal(t, "provider unavailable", cw.Err)
	assert.False(t, cw.Loading)
}

func TestStateResultClearsError(t *testing.T) {
	s := NewState()
	s.SetError("c1", "boom")

	s.SetResult("c1", weather.Snapshot{CityID: "c1"}, weather.ForecastBundle{CityID: "c1"})
	assert.Empty(t, s.City("c1").Err)
}

func TestStateDrop(t *testing.T) {
	s := NewState()
	s.SetResult("c1", weather.Snapshot{CityID: "c1"}, weather.ForecastBundle{CityID: "c1"})
	s.SetLoading("c1")
	s.SetError("c1", "boom")

	s.Drop("c1")

	cw := s.City("c1")
	assert.Nil(t, cw.Current)
	assert.Nil(t, cw.Forecast)
	assert.False(t, cw.Loading)
	assert.Empty(t, cw.Err)
}

func TestStateCityReturnsCopies(t *testing.T) {
	s := NewState()
	s.SetResult("c1", weather.Snapshot{CityID: "c1", Temperature: 7}, weather.ForecastBundle{CityID: "c1"})

	cw := s.City("c1")
	cw.Current.Temperature = 100

	assert.Equal(t, 7.0, s.City("c1").Current.Temperature)
}
