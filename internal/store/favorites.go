// Package store persists the user's favorites and display preferences as
// independent JSON files, read once at startup and rewritten on every
// mutation. Unreadable or absent files load as empty/default, never as an
// error.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"weatherdash/internal/logger"
	"weatherdash/internal/weather"
)

const favoritesFile = "favorites.json"

// FavoritesStore holds the ordered list of tracked cities. The newest
// addition comes first.
type FavoritesStore struct {
	mu     sync.RWMutex
	path   string
	cities []weather.City
	log    logger.Logger
}

// NewFavoritesStore loads the favorites file from dir, creating dir if
// needed.
func NewFavoritesStore(dir string, log logger.Logger) *FavoritesStore {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warnf("favorites: cannot create data dir %s: %v", dir, err)
	}
	s := &FavoritesStore{
		path: filepath.Join(dir, favoritesFile),
		log:  log,
	}
	s.cities = s.load()
	return s
}

func (s *FavoritesStore) load() []weather.City {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warnf("favorites: cannot read %s, starting empty: %v", s.path, err)
		}
		return nil
	}

	var cities []weather.City
	if err := json.Unmarshal(data, &cities); err != nil {
		s.log.Warnf("favorites: %s is corrupt, starting empty: %v", s.path, err)
		return nil
	}
	return cities
}

// List returns a copy of the tracked cities in display order.
func (s *FavoritesStore) List() []weather.City {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.City, len(s.cities))
	copy(out, s.cities)
	return out
}

// Get returns the city with the given ID.
func (s *FavoritesStore) Get(id string) (weather.City, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.cities {
		if c.ID == id {
			return c, true
		}
	}
	return weather.City{}, false
}

// Add creates a city with a fresh ID, prepends it, and persists the list.
func (s *FavoritesStore) Add(name, country string, lat, lon float64) weather.City {
	city := weather.City{
		ID:        uuid.NewString(),
		Name:      name,
		Country:   country,
		Latitude:  lat,
		Longitude: lon,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = append([]weather.City{city}, s.cities...)
	s.persistLocked()
	return city
}

// Remove drops the city with the given ID and persists the list. It reports
// whether the city was present.
func (s *FavoritesStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cities {
		if c.ID == id {
			s.cities = append(s.cities[:i], s.cities[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

func (s *FavoritesStore) persistLocked() {
	data, err := json.Marshal(s.cities)
	if err != nil {
		s.log.Errorf("favorites: marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Errorf("favorites: write %s failed: %v", s.path, err)
	}
}
