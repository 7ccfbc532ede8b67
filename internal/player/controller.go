package player

import (
	"context"
	"errors"
	"sync"

	"github.com/glebovdev/globalradio-cli/internal/config"
	"github.com/glebovdev/globalradio-cli/internal/station"
	"github.com/rs/zerolog/log"
)

// ErrStreamEnded is reported when a live stream stops without being asked to.
var ErrStreamEnded = errors.New("stream ended unexpectedly")

// Output opens audio streams. Open returns once the stream is ready to play,
// i.e. the first audio has been decoded, and must honour ctx cancellation.
type Output interface {
	Open(ctx context.Context, streamURL string) (Stream, error)
}

// Stream is one opened audio stream. Nothing is audible until Start.
type Stream interface {
	Start()
	SetVolume(percent int, muted bool)
	// Title is the stream's current now-playing text, if it sends one.
	Title() string
	// Done is closed when the stream stops, for whatever reason.
	Done() <-chan struct{}
	// Err returns why the stream stopped on its own, or nil.
	Err() error
	Close()
}

// Controller owns the single audio output and its play/volume/mute/loading
// state for the currently selected station.
//
// Each play or stop request increments a generation counter; an asynchronous
// completion is applied only if its generation is still current, so a
// superseded stream can never become the audible one.
type Controller struct {
	output Output

	mu         sync.Mutex
	station    *station.Station
	stream     Stream
	cancel     context.CancelFunc
	generation uint64
	state      PlayerState
	volume     int
	muted      bool
	lastError  string
	listeners  []func(PlaybackState)
}

func NewController(output Output, volume int) *Controller {
	return &Controller{
		output: output,
		volume: config.ClampVolume(volume),
		state:  StateIdle,
	}
}

// OnChange registers fn to be called with a snapshot after every change.
// Callbacks may run on background goroutines.
func (c *Controller) OnChange(fn func(PlaybackState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SetStation binds the controller to s (nil unbinds). A different station
// stops the current output first; volume and mute carry over.
func (c *Controller) SetStation(s *station.Station) {
	c.mu.Lock()
	if sameStation(c.station, s) {
		c.mu.Unlock()
		return
	}

	c.generation++
	old := c.detachLocked()
	c.station = s
	c.state = StateIdle
	c.lastError = ""
	c.mu.Unlock()

	closeStream(old)
	if s != nil {
		log.Debug().Str("station", s.Name).Msg("Player bound to station")
	}
	c.notify()
}

// TogglePlay starts buffering when stopped and stops when playing or
// buffering. It returns immediately; readiness or failure is reported
// through OnChange. Without a station it does nothing.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	if c.station == nil {
		c.mu.Unlock()
		return
	}

	if c.state == StatePlaying || c.state == StateBuffering {
		c.generation++
		old := c.detachLocked()
		c.state = StateIdle
		c.mu.Unlock()

		closeStream(old)
		log.Debug().Msg("Playback stopped")
		c.notify()
		return
	}

	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateBuffering
	c.lastError = ""
	st := *c.station
	c.mu.Unlock()

	log.Info().Str("station", st.Name).Str("url", st.URL).Msg("Starting playback")
	c.notify()

	go c.open(ctx, gen, st)
}

func (c *Controller) open(ctx context.Context, gen uint64, st station.Station) {
	stream, err := c.output.Open(ctx, st.URL)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		closeStream(stream)
		log.Debug().Str("station", st.Name).Uint64("generation", gen).Msg("Discarding superseded stream")
		return
	}

	if err != nil {
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		playErr := &PlaybackError{Station: st.Name, Err: err}
		c.state = StateError
		c.lastError = playErr.Error()
		c.mu.Unlock()

		log.Error().Err(err).Str("station", st.Name).Msg("Failed to start playback")
		c.notify()
		return
	}

	c.stream = stream
	stream.SetVolume(c.volume, c.muted)
	stream.Start()
	c.state = StatePlaying
	c.mu.Unlock()

	log.Debug().Str("station", st.Name).Msg("Stream ready, now playing")
	c.notify()

	go c.watch(gen, stream, st.Name)
}

func (c *Controller) watch(gen uint64, stream Stream, name string) {
	<-stream.Done()

	c.mu.Lock()
	if gen != c.generation || c.stream != stream {
		c.mu.Unlock()
		return
	}

	err := stream.Err()
	if err == nil {
		err = ErrStreamEnded
	}
	c.detachLocked()
	c.state = StateError
	c.lastError = (&PlaybackError{Station: name, Err: err}).Error()
	c.mu.Unlock()

	stream.Close()
	log.Warn().Err(err).Str("station", name).Msg("Stream stopped")
	c.notify()
}

// Stop stops any output and leaves the station bound.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stream == nil && c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.generation++
	old := c.detachLocked()
	c.state = StateIdle
	c.mu.Unlock()

	closeStream(old)
	c.notify()
}

// SetVolume clamps v to 0..100 and applies it to the live output. It does not
// change the mute flag.
func (c *Controller) SetVolume(v int) {
	c.mu.Lock()
	c.volume = config.ClampVolume(v)
	if c.stream != nil {
		c.stream.SetVolume(c.volume, c.muted)
	}
	volume := c.volume
	c.mu.Unlock()

	log.Debug().Msgf("Volume set to %d%%", volume)
	c.notify()
}

// AdjustVolume changes the volume by delta, clamped to 0..100.
func (c *Controller) AdjustVolume(delta int) {
	c.mu.Lock()
	v := c.volume + delta
	c.mu.Unlock()
	c.SetVolume(v)
}

// ToggleMute flips the mute flag; the stored volume is left untouched.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	c.muted = !c.muted
	if c.stream != nil {
		c.stream.SetVolume(c.volume, c.muted)
	}
	muted := c.muted
	c.mu.Unlock()

	log.Debug().Bool("muted", muted).Msg("Mute toggled")
	c.notify()
}

func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() PlaybackState {
	s := PlaybackState{
		State:     c.state,
		IsPlaying: c.state == StatePlaying,
		IsLoading: c.state == StateBuffering,
		IsMuted:   c.muted,
		Volume:    c.volume,
		LastError: c.lastError,
	}
	if c.station != nil {
		st := *c.station
		s.Station = &st
	}
	if c.stream != nil {
		s.Track = c.stream.Title()
	}
	return s
}

// detachLocked cancels a pending open and hands back the live stream so the
// caller can close it after releasing the lock.
func (c *Controller) detachLocked() Stream {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	old := c.stream
	c.stream = nil
	return old
}

func (c *Controller) notify() {
	c.mu.Lock()
	s := c.snapshotLocked()
	listeners := make([]func(PlaybackState), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

func closeStream(s Stream) {
	if s != nil {
		s.Close()
	}
}

func sameStation(a, b *station.Station) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
