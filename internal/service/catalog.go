package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Catalog ties the loaders to the selection: changing the selected country
// reloads the station list for the new code.
type Catalog struct {
	Countries *CountryLoader
	Stations  *StationLoader
	Selection *Selection

	// mu orders reading the selected code with claiming a station generation.
	mu sync.Mutex
}

// Source is everything the catalog needs from the backend.
type Source interface {
	CountrySource
	StationSource
}

// NewCatalog builds the loaders around source. stationLimit is passed to every
// station request.
func NewCatalog(source Source, stationLimit int) *Catalog {
	return &Catalog{
		Countries: NewCountryLoader(source),
		Stations:  NewStationLoader(source, stationLimit),
		Selection: NewSelection(),
	}
}

// Start performs the one-time country load.
func (c *Catalog) Start(ctx context.Context) {
	c.Countries.Load(ctx)
}

// SelectCountry updates the selection and, when the country code changed,
// reloads the station list. It blocks until the reload finishes.
func (c *Catalog) SelectCountry(ctx context.Context, code string) {
	country := c.Countries.FindByCode(code)
	if code != "" && country == nil {
		log.Warn().Str("country", code).Msg("Unknown country code, ignoring selection")
		return
	}

	if change := c.Selection.SelectCountry(country); change.CodeChanged() {
		c.loadStations(ctx)
	}
}

// ReloadStations fetches the station list for the currently selected country.
func (c *Catalog) ReloadStations(ctx context.Context) {
	c.loadStations(ctx)
}

// loadStations loads whatever country is selected when the load starts, not
// the one that triggered it. The last load to start therefore always matches
// the final selection, however concurrent selections interleave.
func (c *Catalog) loadStations(ctx context.Context) {
	c.mu.Lock()
	code := c.Selection.CountryCode()
	gen := c.Stations.begin(code)
	c.mu.Unlock()

	log.Debug().Str("country", code).Uint64("generation", gen).Msg("Reloading stations")
	c.Stations.notify()
	c.Stations.fetch(ctx, code, gen)
}
