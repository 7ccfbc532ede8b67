// Package api provides the HTTP client for the radio catalog backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/glebovdev/globalradio-cli/internal/config"
	"github.com/glebovdev/globalradio-cli/internal/station"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	apiPrefix = "/api"

	DefaultStationLimit = 50
)

// ErrEmptyCountryCode is returned when stations are requested without a country.
var ErrEmptyCountryCode = errors.New("country code must not be empty")

// ErrEmptyStationID is returned when a station is validated without an ID.
var ErrEmptyStationID = errors.New("station id must not be empty")

// APIError is returned for any non-2xx response from the backend.
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(resp *resty.Response) *APIError {
	return &APIError{
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), resp.String()),
		Status:  resp.StatusCode(),
	}
}

// RadioClient is the HTTP client for the catalog backend. Every call is a
// single request: no retries and no caching.
type RadioClient struct {
	client *resty.Client
}

// NewRadioClient creates a client for the backend at origin, e.g.
// "http://localhost:8000". Requests go to origin + "/api".
func NewRadioClient(origin string) *RadioClient {
	return &RadioClient{
		client: resty.New().
			SetBaseURL(BaseURL(origin)).
			SetHeader("User-Agent", fmt.Sprintf("GlobalRadio-CLI/%s", config.AppVersion)).
			SetHeader("Accept", "application/json"),
	}
}

// BaseURL derives the API base from a backend origin.
func BaseURL(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/") + apiPrefix
}

// GetCountries fetches the list of countries that have stations.
func (c *RadioClient) GetCountries(ctx context.Context) ([]station.Country, error) {
	resp, err := c.client.R().SetContext(ctx).Get("/countries")
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch countries")
		return nil, err
	}

	if !resp.IsSuccess() {
		apiErr := newAPIError(resp)
		log.Error().Err(apiErr).Msg("Failed to fetch countries")
		return nil, apiErr
	}

	var countries []station.Country
	if err := json.Unmarshal(resp.Body(), &countries); err != nil {
		return nil, fmt.Errorf("failed to parse countries response: %w", err)
	}

	log.Debug().Int("count", len(countries)).Msg("Fetched countries")
	return countries, nil
}

// GetStationsByCountry fetches up to limit stations for a country code.
// A limit of zero or less uses DefaultStationLimit.
func (c *RadioClient) GetStationsByCountry(ctx context.Context, code string, limit int) ([]station.Station, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCountryCode
	}
	if limit <= 0 {
		limit = DefaultStationLimit
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/stations/{code}")
	if err != nil {
		log.Error().Err(err).Str("country", code).Msg("Failed to fetch stations")
		return nil, err
	}

	if !resp.IsSuccess() {
		apiErr := newAPIError(resp)
		log.Error().Err(apiErr).Str("country", code).Msg("Failed to fetch stations")
		return nil, apiErr
	}

	var stations []station.Station
	if err := json.Unmarshal(resp.Body(), &stations); err != nil {
		return nil, fmt.Errorf("failed to parse stations response for %s: %w", code, err)
	}

	log.Debug().Str("country", code).Int("count", len(stations)).Msg("Fetched stations")
	return stations, nil
}

// ValidateStation asks the backend whether a station's stream is working.
func (c *RadioClient) ValidateStation(ctx context.Context, stationID string) (*station.Validation, error) {
	if strings.TrimSpace(stationID) == "" {
		return nil, ErrEmptyStationID
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", stationID).
		Get("/stations/{id}/validate")
	if err != nil {
		log.Error().Err(err).Str("station", stationID).Msg("Failed to validate station")
		return nil, err
	}

	if !resp.IsSuccess() {
		apiErr := newAPIError(resp)
		log.Error().Err(apiErr).Str("station", stationID).Msg("Failed to validate station")
		return nil, apiErr
	}

	var validation station.Validation
	if err := json.Unmarshal(resp.Body(), &validation); err != nil {
		return nil, fmt.Errorf("failed to parse validation response for %s: %w", stationID, err)
	}
	validation.Raw = json.RawMessage(resp.Body())

	return &validation, nil
}
