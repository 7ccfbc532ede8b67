package service

import (
	"strings"
	"sync"

	"github.com/glebovdev/globalradio-cli/internal/station"
)

// CountryChange describes a country selection. Previous is nil on the first
// selection.
type CountryChange struct {
	Previous *station.Country
	Current  *station.Country
}

// CodeChanged reports whether the selection moved to a different country code.
func (c CountryChange) CodeChanged() bool {
	return !equalCodes(codeOf(c.Previous), codeOf(c.Current))
}

// Selection holds the selected country and station. It performs no I/O.
type Selection struct {
	mu        sync.RWMutex
	country   *station.Country
	station   *station.Station
	listeners []func(CountryChange)
}

// NewSelection returns a selection with nothing selected.
func NewSelection() *Selection {
	return &Selection{}
}

// OnCountryChange registers fn to run after every SelectCountry call.
func (s *Selection) OnCountryChange(fn func(CountryChange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SelectCountry selects c (nil clears it) and always clears the selected
// station, even when c is the country already selected.
func (s *Selection) SelectCountry(c *station.Country) CountryChange {
	s.mu.Lock()
	change := CountryChange{Previous: s.country, Current: c}
	s.country = c
	s.station = nil
	listeners := make([]func(CountryChange), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
	return change
}

// SelectStation selects st. It does not check that st belongs to the
// selected country's list.
func (s *Selection) SelectStation(st *station.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.station = st
}

// ClearStation deselects the station and keeps the country.
func (s *Selection) ClearStation() {
	s.SelectStation(nil)
}

// Country returns the selected country or nil.
func (s *Selection) Country() *station.Country {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.country
}

// Station returns the selected station or nil.
func (s *Selection) Station() *station.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.station
}

// CountryCode returns the selected country's code or "" when none is selected.
func (s *Selection) CountryCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return codeOf(s.country)
}

func codeOf(c *station.Country) string {
	if c == nil {
		return ""
	}
	return c.Code
}

func equalCodes(a, b string) bool {
	return strings.EqualFold(a, b)
}
