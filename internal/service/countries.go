// Package service holds the catalog state: country and station loaders and
// the user's selection.
package service

import (
	"context"
	"sync"

	"github.com/glebovdev/globalradio-cli/internal/station"
	"github.com/rs/zerolog/log"
)

const countriesFallbackError = "Failed to load countries"

// CountrySource fetches the country list.
type CountrySource interface {
	GetCountries(ctx context.Context) ([]station.Country, error)
}

// CountryState is a snapshot of the country loader.
type CountryState struct {
	Countries []station.Country
	Loading   bool
	Err       string
}

// CountryLoader fetches the country list and exposes loading/error/data state.
// A new load supersedes one still in flight.
type CountryLoader struct {
	source     CountrySource
	mu         sync.RWMutex
	state      CountryState
	generation uint64
	listeners  []func(CountryState)
}

// NewCountryLoader returns a loader in the Loading state; call Load to fetch.
func NewCountryLoader(source CountrySource) *CountryLoader {
	return &CountryLoader{
		source: source,
		state:  CountryState{Loading: true},
	}
}

// OnChange registers fn to be called with a snapshot after every state change.
// Callbacks run on the goroutine that caused the change.
func (l *CountryLoader) OnChange(fn func(CountryState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Load fetches the countries. It blocks until the fetch completes.
func (l *CountryLoader) Load(ctx context.Context) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.state.Loading = true
	l.state.Err = ""
	l.mu.Unlock()
	l.notify()

	countries, err := l.source.GetCountries(ctx)

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		log.Debug().Uint64("generation", gen).Msg("Discarding superseded country list")
		return
	}
	if err != nil {
		l.state = CountryState{Err: errorText(err, countriesFallbackError)}
	} else {
		l.state = CountryState{Countries: countries}
	}
	l.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("Country list failed to load")
	} else {
		log.Debug().Int("count", len(countries)).Msg("Country list loaded")
	}
	l.notify()
}

// Refetch runs the country fetch again.
func (l *CountryLoader) Refetch(ctx context.Context) {
	l.Load(ctx)
}

// State returns a copy of the current state.
func (l *CountryLoader) State() CountryState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot()
}

// FindByCode returns the loaded country with the given code, or nil.
func (l *CountryLoader) FindByCode(code string) *station.Country {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, c := range l.state.Countries {
		if equalCodes(c.Code, code) {
			return &c
		}
	}
	return nil
}

// GetCountry returns a copy of the country at index, or nil if out of bounds.
func (l *CountryLoader) GetCountry(index int) *station.Country {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.state.Countries) {
		return nil
	}
	c := l.state.Countries[index]
	return &c
}

func (l *CountryLoader) snapshot() CountryState {
	s := l.state
	if s.Countries != nil {
		s.Countries = make([]station.Country, len(l.state.Countries))
		copy(s.Countries, l.state.Countries)
	}
	return s
}

func (l *CountryLoader) notify() {
	l.mu.RLock()
	s := l.snapshot()
	listeners := make([]func(CountryState), len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.RUnlock()

	for _, fn := range listeners {
		fn(s)
	}
}

func errorText(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
