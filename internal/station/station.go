// Package station defines the data structures for countries and radio stations.
package station

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Country is a country that has radio stations in the catalog.
type Country struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Flag         string `json:"flag"`                    // Display glyph, usually an emoji flag
	StationCount int    `json:"station_count,omitempty"` // Not sent by every backend
}

// Label returns the flag and name as shown in the country list.
func (c *Country) Label() string {
	if c.Flag == "" {
		return c.Name
	}
	return c.Flag + " " + c.Name
}

// Station represents a radio station with its metadata and stream endpoint.
type Station struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Frequency   string `json:"frequency"`
	Genre       string `json:"genre"`
	URL         string `json:"url"`
	Listeners   string `json:"listeners"` // Preformatted, e.g. "2.1M"
	Description string `json:"description"`

	Favicon     string `json:"favicon,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countrycode,omitempty"`
	Language    string `json:"language,omitempty"`
	Bitrate     int    `json:"bitrate,omitempty"`
	Codec       string `json:"codec,omitempty"`
	Votes       int    `json:"votes,omitempty"`
	ClickCount  int    `json:"clickcount,omitempty"`
	LastCheckOK int    `json:"lastcheckok,omitempty"`
}

// StreamInfo returns a short codec/bitrate summary such as "MP3 128k".
// Returns an empty string when the backend sent neither field.
func (s *Station) StreamInfo() string {
	codec := strings.ToUpper(strings.TrimSpace(s.Codec))
	switch {
	case codec != "" && s.Bitrate > 0:
		return fmt.Sprintf("%s %dk", codec, s.Bitrate)
	case codec != "":
		return codec
	case s.Bitrate > 0:
		return fmt.Sprintf("%dk", s.Bitrate)
	default:
		return ""
	}
}

// IsHealthy reports whether the directory's last check of the stream succeeded.
func (s *Station) IsHealthy() bool {
	return s.LastCheckOK == 1
}

// Validation is the backend's answer to a station validation request.
// Only the commonly returned fields are decoded; Raw keeps the full object.
type Validation struct {
	Valid       bool            `json:"valid"`
	Status      string          `json:"status"`
	LastChecked string          `json:"last_checked"`
	Raw         json.RawMessage `json:"-"`
}

// Summary renders the validation result for display.
func (v *Validation) Summary() string {
	state := "not valid"
	if v.Valid {
		state = "valid"
	}
	parts := []string{state}
	if v.Status != "" {
		parts = append(parts, v.Status)
	}
	if v.LastChecked != "" {
		parts = append(parts, "checked "+v.LastChecked)
	}
	return strings.Join(parts, ", ")
}
