package player

import (
	"fmt"

	"github.com/glebovdev/globalradio-cli/internal/station"
)

type PlayerState int

const (
	StateIdle PlayerState = iota
	StateBuffering
	StatePlaying
	StateError
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateBuffering:
		return "BUFFERING"
	case StatePlaying:
		return "LIVE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PlaybackState is a snapshot of the controller for rendering.
type PlaybackState struct {
	Station   *station.Station
	State     PlayerState
	IsPlaying bool
	IsLoading bool
	IsMuted   bool
	Volume    int
	LastError string
	Track     string
}

// Failed reports whether the last play attempt or live stream failed.
func (s PlaybackState) Failed() bool {
	return s.State == StateError
}

// PlaybackError is the outcome of a play request whose stream never became
// ready, or a live stream that stopped on its own.
type PlaybackError struct {
	Station string
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback of %s failed: %v", e.Station, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
