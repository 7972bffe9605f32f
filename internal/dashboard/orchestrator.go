package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/sync/errgroup"

	"weatherdash/internal/logger"
	"weatherdash/internal/store"
	"weatherdash/internal/weather"
)

// RefreshInterval is the fixed period between fetch cycles while at least
// one favorite exists.
const RefreshInterval = 60 * time.Second

// refreshTimeout bounds one full cycle across all favorites.
const refreshTimeout = 30 * time.Second

// WeatherSource is the slice of the weather client the orchestrator needs.
type WeatherSource interface {
	CurrentConditions(ctx context.Context, lat, lon float64, cityID string) (weather.Snapshot, error)
	Forecast(ctx context.Context, lat, lon float64, cityID string) (weather.ForecastBundle, error)
}

// Orchestrator keeps every favorite city's weather fresh. It triggers a full
// fetch cycle whenever the favorites list changes and once per
// RefreshInterval while the list is non-empty. Per-city failures are
// isolated: they set that city's error and leave its previous data intact.
type Orchestrator struct {
	source    WeatherSource
	favorites *store.FavoritesStore
	state     *State
	interval  time.Duration
	log       logger.Logger

	// autoRefresh gates the asynchronous cycle kicked on favorites changes.
	// Tests clear it and drive RefreshAll directly.
	autoRefresh bool

	mu    sync.Mutex
	sched *gocron.Scheduler
}

// NewOrchestrator creates an Orchestrator over the given source, favorites
// store, and state.
func NewOrchestrator(source WeatherSource, favorites *store.FavoritesStore, state *State, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		source:      source,
		favorites:   favorites,
		state:       state,
		interval:    RefreshInterval,
		log:         log,
		autoRefresh: true,
	}
}

// Start reconciles the timer with the persisted favorites and, when any
// exist, kicks the initial fetch cycle. Called once at boot.
func (o *Orchestrator) Start() {
	o.reconcile()
}

// Stop cancels the recurring timer. In-flight cycles are left to finish;
// their late writes target state that is no longer displayed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sched != nil {
		o.sched.Stop()
		o.sched = nil
	}
}

// AddCity adds a favorite and triggers a fetch cycle for the new list.
func (o *Orchestrator) AddCity(name, country string, lat, lon float64) weather.City {
	city := o.favorites.Add(name, country, lat, lon)
	o.log.Infof("favorite added: %s (%s)", city.Name, city.ID)
	o.reconcile()
	return city
}

// RemoveCity removes a favorite along with all of its transient weather
// state, and reports whether it existed.
func (o *Orchestrator) RemoveCity(id string) bool {
	if !o.favorites.Remove(id) {
		return false
	}
	o.state.Drop(id)
	o.log.Infof("favorite removed: %s", id)
	o.reconcile()
	return true
}

// reconcile re-aligns the recurring timer with the favorites list and kicks
// an immediate cycle whenever the list is non-empty.
func (o *Orchestrator) reconcile() {
	o.syncTimer()

	if o.autoRefresh && len(o.favorites.List()) > 0 {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			o.RefreshAll(ctx)
		}()
	}
}

// syncTimer runs one scheduler while favorites exist and none otherwise.
// An already-running scheduler is left alone: its job re-reads the list on
// every tick, so changes never require a second timer.
func (o *Orchestrator) syncTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.favorites.List()) == 0 {
		if o.sched != nil {
			o.sched.Stop()
			o.sched = nil
			o.log.Infof("refresh timer stopped: no favorites")
		}
		return
	}

	if o.sched != nil {
		return
	}

	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(int(o.interval.Seconds())).Seconds().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		o.RefreshAll(ctx)
	})
	if err != nil {
		o.log.Errorf("failed to schedule refresh job: %v", err)
		return
	}
	s.StartAsync()
	o.sched = s
	o.log.Infof("refresh timer started: every %s", o.interval)
}

// timerRunning reports whether the recurring refresh job is scheduled.
func (o *Orchestrator) timerRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sched != nil
}

// RefreshAll runs one fetch cycle for every favorite, in parallel. Cities
// are independent; one city's failure never delays or aborts another's.
func (o *Orchestrator) RefreshAll(ctx context.Context) {
	cities := o.favorites.List()
	if len(cities) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, city := range cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.RefreshCity(ctx, city)
		}()
	}
	wg.Wait()
}

// RefreshCity runs one fetch cycle for a single city: current conditions and
// forecast fetched concurrently and joined. Success replaces both records
// wholesale and clears the error; failure of either fetch records the error
// and leaves previously fetched data untouched.
func (o *Orchestrator) RefreshCity(ctx context.Context, city weather.City) {
	o.state.SetLoading(city.ID)

	var (
		snap   weather.Snapshot
		bundle weather.ForecastBundle
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = o.source.CurrentConditions(gctx, city.Latitude, city.Longitude, city.ID)
		return err
	})
	g.Go(func() error {
		var err error
		bundle, err = o.source.Forecast(gctx, city.Latitude, city.Longitude, city.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		o.log.Warnf("refresh failed for %s: %v", city.Name, err)
		o.state.SetError(city.ID, err.Error())
		return
	}

	o.state.SetResult(city.ID, snap, bundle)
}
