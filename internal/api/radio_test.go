package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/glebovdev/globalradio-cli/internal/station"
)

func setupTestServer(handler http.HandlerFunc) (*httptest.Server, *RadioClient) {
	server := httptest.NewServer(handler)
	client := NewRadioClient(server.URL)
	return server, client
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		origin   string
		expected string
	}{
		{"http://localhost:8000", "http://localhost:8000/api"},
		{"http://localhost:8000/", "http://localhost:8000/api"},
		{" https://radio.example.com// ", "https://radio.example.com/api"},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			result := BaseURL(tt.origin)
			if result != tt.expected {
				t.Errorf("BaseURL(%q) = %q, want %q", tt.origin, result, tt.expected)
			}
		})
	}
}

func TestGetCountries(t *testing.T) {
	expectedCountries := []station.Country{
		{Code: "US", Name: "United States", Flag: "🇺🇸", StationCount: 12000},
		{Code: "DE", Name: "Germany", Flag: "🇩🇪"},
		{Code: "AT", Name: "Austria", Flag: "🇦🇹"},
	}

	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/countries" {
			t.Errorf("Expected path /api/countries, got %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(expectedCountries)
	})
	defer server.Close()

	countries, err := client.GetCountries(context.Background())
	if err != nil {
		t.Fatalf("GetCountries() error = %v", err)
	}

	if len(countries) != len(expectedCountries) {
		t.Fatalf("GetCountries() returned %d countries, want %d", len(countries), len(expectedCountries))
	}

	// Backend order is kept, not re-sorted.
	for i, c := range countries {
		if c.Code != expectedCountries[i].Code {
			t.Errorf("countries[%d].Code = %q, want %q", i, c.Code, expectedCountries[i].Code)
		}
		if c.Flag != expectedCountries[i].Flag {
			t.Errorf("countries[%d].Flag = %q, want %q", i, c.Flag, expectedCountries[i].Flag)
		}
	}

	if countries[0].StationCount != 12000 {
		t.Errorf("countries[0].StationCount = %d, want 12000", countries[0].StationCount)
	}
}

func TestGetCountriesHTTPError(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("server error"))
	})
	defer server.Close()

	_, err := client.GetCountries(context.Background())
	if err == nil {
		t.Fatal("GetCountries() should return error for HTTP 500")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetCountries() error = %T, want *APIError", err)
	}

	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("APIError.Status = %d, want 500", apiErr.Status)
	}

	if apiErr.Error() != "HTTP 500: server error" {
		t.Errorf("APIError.Error() = %q, want %q", apiErr.Error(), "HTTP 500: server error")
	}
}

func TestGetCountriesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	client := NewRadioClient(server.URL)
	server.Close()

	_, err := client.GetCountries(context.Background())
	if err == nil {
		t.Fatal("GetCountries() should fail when the backend is unreachable")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure should not be an APIError, got %v", apiErr)
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		t.Errorf("GetCountries() error = %T, want the transport's *url.Error", err)
	}
}

func TestGetCountriesInvalidJSON(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("not valid json"))
	})
	defer server.Close()

	_, err := client.GetCountries(context.Background())
	if err == nil {
		t.Error("GetCountries() should return error for invalid JSON")
	}
}

func TestGetStationsByCountry(t *testing.T) {
	expectedStations := []station.Station{
		{
			ID:          "1",
			Name:        "NPR News",
			Frequency:   "88.5 FM",
			Genre:       "News/Talk",
			URL:         "https://npr-ice.streamguys1.com/live.mp3",
			Listeners:   "2.1M",
			Description: "National Public Radio - News and Talk",
			Codec:       "MP3",
			Bitrate:     128,
		},
		{
			ID:   "2",
			Name: "Classic Rock 101",
		},
	}

	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stations/US" {
			t.Errorf("Expected path /api/stations/US, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("Expected limit=20, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(expectedStations)
	})
	defer server.Close()

	stations, err := client.GetStationsByCountry(context.Background(), "US", 20)
	if err != nil {
		t.Fatalf("GetStationsByCountry() error = %v", err)
	}

	if len(stations) != len(expectedStations) {
		t.Fatalf("GetStationsByCountry() returned %d stations, want %d", len(stations), len(expectedStations))
	}

	first := stations[0]
	if first.ID != "1" || first.Name != "NPR News" || first.URL != expectedStations[0].URL {
		t.Errorf("stations[0] = %+v, want %+v", first, expectedStations[0])
	}
	if first.Listeners != "2.1M" {
		t.Errorf("stations[0].Listeners = %q, want %q", first.Listeners, "2.1M")
	}
	if first.Bitrate != 128 {
		t.Errorf("stations[0].Bitrate = %d, want 128", first.Bitrate)
	}
}

func TestGetStationsByCountryDefaultLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
	}{
		{"zero limit", 0},
		{"negative limit", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("limit"); got != "50" {
					t.Errorf("Expected default limit=50, got %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte("[]"))
			})
			defer server.Close()

			stations, err := client.GetStationsByCountry(context.Background(), "FR", tt.limit)
			if err != nil {
				t.Fatalf("GetStationsByCountry() error = %v", err)
			}
			if len(stations) != 0 {
				t.Errorf("GetStationsByCountry() returned %d stations, want 0", len(stations))
			}
		})
	}
}

func TestGetStationsByCountryEmptyCode(t *testing.T) {
	called := false
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})
	defer server.Close()

	_, err := client.GetStationsByCountry(context.Background(), "", 50)
	if !errors.Is(err, ErrEmptyCountryCode) {
		t.Errorf("GetStationsByCountry(\"\") error = %v, want ErrEmptyCountryCode", err)
	}
	if called {
		t.Error("GetStationsByCountry(\"\") should not issue a request")
	}
}

func TestGetStationsByCountryHTTPError(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Country code must be 2 characters"}`))
	})
	defer server.Close()

	_, err := client.GetStationsByCountry(context.Background(), "USA", 50)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetStationsByCountry() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("APIError.Status = %d, want 400", apiErr.Status)
	}
	want := `HTTP 400: {"detail":"Country code must be 2 characters"}`
	if apiErr.Message != want {
		t.Errorf("APIError.Message = %q, want %q", apiErr.Message, want)
	}
}

func TestValidateStation(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stations/abc-123/validate" {
			t.Errorf("Expected path /api/stations/abc-123/validate, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"status":"working","last_checked":"2025-08-16T10:00:00","extra":1}`))
	})
	defer server.Close()

	validation, err := client.ValidateStation(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("ValidateStation() error = %v", err)
	}

	if !validation.Valid {
		t.Error("ValidateStation().Valid = false, want true")
	}
	if validation.Status != "working" {
		t.Errorf("ValidateStation().Status = %q, want %q", validation.Status, "working")
	}

	var raw map[string]any
	if err := json.Unmarshal(validation.Raw, &raw); err != nil {
		t.Fatalf("Raw is not valid JSON: %v", err)
	}
	if _, ok := raw["extra"]; !ok {
		t.Error("Raw should keep fields the client does not decode")
	}
}

func TestValidateStationHTTPError(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	})
	defer server.Close()

	_, err := client.ValidateStation(context.Background(), "missing")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("ValidateStation() error = %v, want APIError with status 404", err)
	}
}

func TestNewRadioClient(t *testing.T) {
	client := NewRadioClient("http://localhost:8000")

	if client == nil {
		t.Fatal("NewRadioClient() returned nil")
	}

	if client.client == nil {
		t.Fatal("NewRadioClient() client.client is nil")
	}

	if client.client.BaseURL != "http://localhost:8000/api" {
		t.Errorf("BaseURL = %q, want %q", client.client.BaseURL, "http://localhost:8000/api")
	}
}

func TestValidateStationEmptyID(t *testing.T) {
	called := false
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})
	defer server.Close()

	for _, id := range []string{"", "   "} {
		_, err := client.ValidateStation(context.Background(), id)
		if !errors.Is(err, ErrEmptyStationID) {
			t.Errorf("ValidateStation(%q) error = %v, want ErrEmptyStationID", id, err)
		}
	}
	if called {
		t.Error("ValidateStation with an empty ID should not issue a request")
	}
}
