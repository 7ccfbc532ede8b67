package service

import (
	"context"
	"sync"

	"github.com/glebovdev/globalradio-cli/internal/station"
	"github.com/rs/zerolog/log"
)

const stationsFallbackError = "Failed to load radio stations"

// StationSource fetches the stations of one country.
type StationSource interface {
	GetStationsByCountry(ctx context.Context, code string, limit int) ([]station.Station, error)
}

// StationState is a snapshot of the station loader.
type StationState struct {
	Country  string
	Stations []station.Station
	Loading  bool
	Err      string
}

// StationLoader fetches the station list for the selected country.
//
// Every Load bumps a generation counter and a response is applied only when
// its generation is still the latest, so a slow response for a previously
// selected country can never overwrite the current one.
type StationLoader struct {
	source     StationSource
	limit      int
	mu         sync.RWMutex
	state      StationState
	generation uint64
	listeners  []func(StationState)
}

// NewStationLoader returns an idle loader that requests up to limit stations.
func NewStationLoader(source StationSource, limit int) *StationLoader {
	return &StationLoader{
		source: source,
		limit:  limit,
	}
}

// OnChange registers fn to be called with a snapshot after every state change.
func (l *StationLoader) OnChange(fn func(StationState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Load fetches stations for code and blocks until the fetch completes.
// An empty code resets the loader without a network call.
func (l *StationLoader) Load(ctx context.Context, code string) {
	gen := l.begin(code)
	l.notify()
	l.fetch(ctx, code, gen)
}

// begin claims a new generation for code and marks the loader as loading.
// Listeners are not notified.
func (l *StationLoader) begin(code string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation++
	if code == "" {
		l.state = StationState{}
		return l.generation
	}

	l.state.Country = code
	l.state.Loading = true
	l.state.Err = ""
	return l.generation
}

// fetch requests the stations of code and applies them if gen is still current.
func (l *StationLoader) fetch(ctx context.Context, code string, gen uint64) {
	if code == "" {
		return
	}

	stations, err := l.source.GetStationsByCountry(ctx, code, l.limit)

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		log.Debug().
			Str("country", code).
			Uint64("generation", gen).
			Msg("Discarding stale station list")
		return
	}
	if err != nil {
		// Never leave the previous country's stations on screen after a failure.
		l.state = StationState{Country: code, Err: errorText(err, stationsFallbackError)}
	} else {
		l.state = StationState{Country: code, Stations: stations}
	}
	l.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("country", code).Msg("Station list failed to load")
	} else {
		log.Debug().Str("country", code).Int("count", len(stations)).Msg("Station list loaded")
	}
	l.notify()
}

// State returns a copy of the current state.
func (l *StationLoader) State() StationState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot()
}

// StationCount returns the number of loaded stations.
func (l *StationLoader) StationCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.state.Stations)
}

// GetStation returns a copy of the station at the given index.
// Returns nil if the index is out of bounds.
func (l *StationLoader) GetStation(index int) *station.Station {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.state.Stations) {
		return nil
	}
	st := l.state.Stations[index]
	return &st
}

// FindIndexByID returns the index of the station with stationID, or -1.
func (l *StationLoader) FindIndexByID(stationID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i, st := range l.state.Stations {
		if st.ID == stationID {
			return i
		}
	}
	return -1
}

func (l *StationLoader) snapshot() StationState {
	s := l.state
	if s.Stations != nil {
		s.Stations = make([]station.Station, len(l.state.Stations))
		copy(s.Stations, l.state.Stations)
	}
	return s
}

func (l *StationLoader) notify() {
	l.mu.RLock()
	s := l.snapshot()
	listeners := make([]func(StationState), len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.RUnlock()

	for _, fn := range listeners {
		fn(s)
	}
}
