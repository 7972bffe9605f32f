package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"weatherdash/internal/logger"
	"weatherdash/internal/units"
)

const settingsFile = "settings.json"

// ErrInvalidUnit is returned when a caller asks for an unsupported
// temperature unit.
var ErrInvalidUnit = errors.New("unsupported temperature unit")

type storedSettings struct {
	TemperatureUnit units.TemperatureUnit `json:"temperatureUnit"`
}

// SettingsStore persists the single display preference: the temperature
// unit. The preference only affects presentation-time conversion, never the
// stored weather data.
type SettingsStore struct {
	mu   sync.RWMutex
	path string
	unit units.TemperatureUnit
	log  logger.Logger
}

// NewSettingsStore loads the settings file from dir, defaulting to Celsius.
func NewSettingsStore(dir string, log logger.Logger) *SettingsStore {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warnf("settings: cannot create data dir %s: %v", dir, err)
	}
	s := &SettingsStore{
		path: filepath.Join(dir, settingsFile),
		unit: units.Celsius,
		log:  log,
	}
	s.unit = s.load()
	return s
}

func (s *SettingsStore) load() units.TemperatureUnit {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warnf("settings: cannot read %s, using defaults: %v", s.path, err)
		}
		return units.Celsius
	}

	var stored storedSettings
	if err := json.Unmarshal(data, &stored); err != nil || !stored.TemperatureUnit.Valid() {
		s.log.Warnf("settings: %s is corrupt, using defaults", s.path)
		return units.Celsius
	}
	return stored.TemperatureUnit
}

// TemperatureUnit returns the current display unit.
func (s *SettingsStore) TemperatureUnit() units.TemperatureUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unit
}

// SetTemperatureUnit updates and persists the display unit.
func (s *SettingsStore) SetTemperatureUnit(unit units.TemperatureUnit) error {
	if !unit.Valid() {
		return ErrInvalidUnit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.unit = unit

	data, err := json.Marshal(storedSettings{TemperatureUnit: unit})
	if err != nil {
		s.log.Errorf("settings: marshal failed: %v", err)
		return nil
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Errorf("settings: write %s failed: %v", s.path, err)
	}
	return nil
}
