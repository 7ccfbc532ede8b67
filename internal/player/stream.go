package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/glebovdev/globalradio-cli/internal/config"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	SpeakerBufferSize   = time.Millisecond * 250
	NetworkReadSize     = 4096
	SampleChannelSize   = 8192
	VolumeCurveExponent = 0.5
	MinVolumeDB         = -10.0
	ReadTimeout         = 5 * time.Second
	PlaylistTimeout     = 10 * time.Second
	ResampleQuality     = 4
	maxICYMetadata      = 4080
	fadeInDuration      = 50 * time.Millisecond
)

// ErrUnsupportedFormat is returned for streams that are not MP3.
var ErrUnsupportedFormat = errors.New("unsupported stream format")

type httpStatusError struct {
	StatusCode int
	Status     string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("stream returned status %d: %s", e.StatusCode, e.Status)
}

// Relies on context cancellation to clean up the spawned read goroutine.
type contextReader struct {
	reader  io.Reader
	ctx     context.Context
	timeout time.Duration
}

func (cr *contextReader) Read(p []byte) (n int, err error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	timer := time.NewTimer(cr.timeout)
	defer timer.Stop()

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)

	go func() {
		n, err := cr.reader.Read(p)
		select {
		case done <- result{n, err}:
		case <-cr.ctx.Done():
		}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-timer.C:
		return 0, fmt.Errorf("read timeout: no data received for %v", cr.timeout)
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	}
}

// StreamOutput plays MP3 internet radio streams through the system speaker.
// The speaker is initialised once, at the sample rate of the first stream;
// later streams are resampled to it.
type StreamOutput struct {
	httpClient *http.Client

	mu          sync.Mutex
	speakerInit bool
	sampleRate  beep.SampleRate
}

func NewStreamOutput() *StreamOutput {
	return &StreamOutput{
		httpClient: &http.Client{
			Timeout: 0, // streams are long-lived
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				DisableCompression:    true,
			},
		},
	}
}

func (o *StreamOutput) initSpeaker(sampleRate beep.SampleRate) (beep.SampleRate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.speakerInit {
		if err := speaker.Init(sampleRate, sampleRate.N(SpeakerBufferSize)); err != nil {
			return 0, fmt.Errorf("failed to initialize speaker: %w", err)
		}
		o.speakerInit = true
		o.sampleRate = sampleRate
		log.Debug().Msgf("Speaker initialized with sample rate: %d Hz, buffer: %v", sampleRate, SpeakerBufferSize)
	}
	return o.sampleRate, nil
}

// Open connects to streamURL, resolving .pls and .m3u playlists first, and
// returns once the first MP3 frame has been decoded. The returned stream is
// silent until Start.
func (o *StreamOutput) Open(ctx context.Context, streamURL string) (Stream, error) {
	target, err := o.resolveStreamURL(ctx, streamURL)
	if err != nil {
		return nil, err
	}

	log.Debug().Msgf("Connecting to stream: %s", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("GlobalRadio-CLI/%s", config.AppVersion))
	req.Header.Set("Icy-MetaData", "1")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stream: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	log.Debug().Msgf("Stream response status: %d, Content-Type: %s", resp.StatusCode, contentType)

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := checkContentType(contentType); err != nil {
		resp.Body.Close()
		return nil, err
	}

	var icyMetaint int
	if val := resp.Header.Get("icy-metaint"); val != "" {
		icyMetaint, _ = strconv.Atoi(strings.TrimSpace(val))
		log.Debug().Msgf("ICY metadata interval: %d bytes", icyMetaint)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	s := &audioStream{
		ctx:      streamCtx,
		cancel:   cancel,
		sampleCh: make(chan [2]float64, SampleChannelSize),
		done:     make(chan struct{}),
	}

	pipeReader, pipeWriter := io.Pipe()
	body := &contextReader{reader: resp.Body, ctx: streamCtx, timeout: ReadTimeout}

	s.wg.Add(1)
	go s.readNetwork(resp.Body, body, pipeWriter, icyMetaint)

	log.Debug().Msg("Decoding MP3 stream...")
	decoder, format, err := mp3.Decode(pipeReader)
	if err != nil {
		cancel()
		pipeReader.Close()
		s.wg.Wait()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	outputRate, err := o.initSpeaker(format.SampleRate)
	if err != nil {
		cancel()
		decoder.Close()
		pipeReader.Close()
		s.wg.Wait()
		return nil, fmt.Errorf("failed to initialize audio output: %w", err)
	}

	s.wg.Add(1)
	go s.decodeAndBuffer(decoder, pipeReader)

	fadeInSamples := int(format.SampleRate.N(fadeInDuration))
	var source beep.Streamer = &bufferedStreamer{
		stream:          s,
		fadeInRemaining: fadeInSamples,
		fadeInTotal:     fadeInSamples,
	}
	if format.SampleRate != outputRate {
		log.Debug().Msgf("Resampling %d Hz to %d Hz", format.SampleRate, outputRate)
		source = beep.Resample(ResampleQuality, format.SampleRate, outputRate, source)
	}

	s.volume = &effects.Volume{
		Streamer: source,
		Base:     2,
		Volume:   percentToExponent(float64(config.DefaultVolume)),
	}
	s.ctrl = &beep.Ctrl{Streamer: s.volume}

	log.Debug().Msgf("Stream ready (%d Hz)", format.SampleRate)
	return s, nil
}

func (o *StreamOutput) resolveStreamURL(ctx context.Context, streamURL string) (string, error) {
	if !isPlaylistURL(streamURL) {
		return streamURL, nil
	}

	ctx, cancel := context.WithTimeout(ctx, PlaylistTimeout)
	defer cancel()

	urls, err := o.fetchPlaylist(ctx, streamURL)
	if err != nil {
		return "", err
	}
	log.Debug().Msgf("Found %d stream URLs in playlist, using %s", len(urls), urls[0])
	return urls[0], nil
}

func (o *StreamOutput) fetchPlaylist(ctx context.Context, playlistURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("playlist returned status %d: %s", resp.StatusCode, resp.Status)
	}

	return parsePlaylist(resp.Body)
}

// parsePlaylist extracts stream URLs from PLS ("FileN=") or M3U content.
func parsePlaylist(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}

		if key, value, ok := strings.Cut(line, "="); ok && !strings.Contains(key, "://") {
			if strings.HasPrefix(strings.ToLower(key), "file") {
				if u := strings.TrimSpace(value); u != "" {
					urls = append(urls, u)
				}
			}
			continue
		}

		if strings.Contains(line, "://") {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading playlist: %w", err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no valid stream URL found in playlist")
	}
	return urls, nil
}

func isPlaylistURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".pls", ".m3u":
		return true
	}
	return false
}

// checkContentType rejects formats the MP3 decoder cannot play. Unknown or
// missing types are let through to the decoder.
func checkContentType(contentType string) error {
	ct := strings.ToLower(contentType)
	for _, unsupported := range []string{"aac", "ogg", "opus", "flac", "mpegurl"} {
		if strings.Contains(ct, unsupported) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
		}
	}
	return nil
}

// parseStreamTitle extracts the StreamTitle value from an ICY metadata block.
func parseStreamTitle(meta string) string {
	const key = "StreamTitle='"
	start := strings.Index(meta, key)
	if start < 0 {
		return ""
	}
	start += len(key)
	end := strings.Index(meta[start:], "';")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(meta[start : start+end])
}

func percentToExponent(p float64) float64 {
	if p <= 0 {
		return MinVolumeDB
	}
	if p >= 100 {
		return 0
	}

	normalized := p / 100.0
	adjusted := math.Pow(normalized, VolumeCurveExponent)
	return (1.0 - adjusted) * MinVolumeDB
}

// audioStream is one connected radio stream: a network reader feeding the
// MP3 decoder through a pipe, and a decoder goroutine feeding sampleCh.
type audioStream struct {
	ctx    context.Context
	cancel context.CancelFunc

	sampleCh chan [2]float64
	wg       sync.WaitGroup

	done     chan struct{}
	doneOnce sync.Once

	mu    sync.Mutex
	err   error
	title string

	volume *effects.Volume
	ctrl   *beep.Ctrl
}

func (s *audioStream) Start() {
	speaker.Play(s.ctrl)
}

func (s *audioStream) SetVolume(percent int, muted bool) {
	level := percentToExponent(float64(percent))

	speaker.Lock()
	s.volume.Volume = level
	s.volume.Silent = muted || percent <= 0
	speaker.Unlock()

	log.Debug().Msgf("Stream volume %d%% (%.2f dB), muted: %v", percent, level, muted)
}

func (s *audioStream) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *audioStream) Done() <-chan struct{} {
	return s.done
}

func (s *audioStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the network and decoder goroutines and detaches the stream from
// the speaker. Other streams on the speaker are unaffected.
func (s *audioStream) Close() {
	s.cancel()
	s.finish()
	s.wg.Wait()

	speaker.Lock()
	s.ctrl.Streamer = nil
	speaker.Unlock()
}

func (s *audioStream) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *audioStream) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *audioStream) setTitle(title string) {
	s.mu.Lock()
	changed := title != s.title
	s.title = title
	s.mu.Unlock()

	if changed {
		log.Debug().Msgf("Now playing: %s", title)
	}
}

func (s *audioStream) readNetwork(respBody io.ReadCloser, bodyReader io.Reader, pipeWriter *io.PipeWriter, icyMetaint int) {
	var exitErr error

	defer func() {
		respBody.Close()
		if exitErr != nil {
			pipeWriter.CloseWithError(exitErr)
		} else {
			pipeWriter.Close()
		}
		s.wg.Done()
		log.Debug().Msg("Network stream reader stopped")
	}()

	report := func(err error) {
		if s.ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("Stream read failed")
		exitErr = err
		s.fail(err)
	}

	chunkSize := int64(icyMetaint)
	if chunkSize <= 0 {
		chunkSize = NetworkReadSize
	}

	bufReader := bufio.NewReader(bodyReader)

	for s.ctx.Err() == nil {
		if _, err := io.CopyN(pipeWriter, bufReader, chunkSize); err != nil {
			if errors.Is(err, io.ErrClosedPipe) {
				return
			}
			if err != io.EOF {
				report(fmt.Errorf("network read error: %w", err))
			}
			return
		}

		if icyMetaint <= 0 {
			continue
		}

		metaLenByte, err := bufReader.ReadByte()
		if err != nil {
			if err != io.EOF {
				report(fmt.Errorf("metadata read error: %w", err))
			}
			return
		}

		metaLen := int(metaLenByte) * 16
		if metaLen == 0 {
			continue
		}
		if metaLen > maxICYMetadata {
			log.Warn().Int("metaLen", metaLen).Msg("ICY metadata too large, skipping")
			if _, err := io.CopyN(io.Discard, bufReader, int64(metaLen)); err != nil {
				report(fmt.Errorf("metadata read error: %w", err))
				return
			}
			continue
		}

		meta := make([]byte, metaLen)
		if _, err := io.ReadFull(bufReader, meta); err != nil {
			report(fmt.Errorf("metadata content error: %w", err))
			return
		}
		if title := parseStreamTitle(string(meta)); title != "" {
			s.setTitle(title)
		}
	}
}

func (s *audioStream) decodeAndBuffer(decoder beep.StreamSeekCloser, pipeReader *io.PipeReader) {
	defer func() {
		decoder.Close()
		pipeReader.Close()
		close(s.sampleCh)
		s.wg.Done()
		log.Debug().Msg("Decoder goroutine stopped")
		s.finish()
	}()

	decoded := make([][2]float64, 4096)

	for s.ctx.Err() == nil {
		n, ok := decoder.Stream(decoded)
		if !ok {
			if err := decoder.Err(); err != nil && s.ctx.Err() == nil {
				log.Error().Err(err).Msg("Stream decoding error")
				s.fail(fmt.Errorf("decode error: %w", err))
			}
			return
		}

		for i := 0; i < n; i++ {
			select {
			case <-s.ctx.Done():
				return
			case s.sampleCh <- decoded[i]:
			}
		}
	}
}

// bufferedStreamer feeds the speaker from sampleCh without blocking: an empty
// channel yields silence so the speaker mutex is never held waiting on the
// network.
type bufferedStreamer struct {
	stream          *audioStream
	fadeInRemaining int
	fadeInTotal     int
	drained         bool
}

func (b *bufferedStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	audioEnd := 0

	if !b.drained {
	fill:
		for i := range samples {
			select {
			case sample, more := <-b.stream.sampleCh:
				if !more {
					b.drained = true
					break fill
				}
				samples[i] = sample
				audioEnd = i + 1
			default:
				break fill
			}
		}
	}

	for i := audioEnd; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	for i := 0; i < audioEnd && b.fadeInRemaining > 0; i++ {
		scale := float64(b.fadeInTotal-b.fadeInRemaining) / float64(b.fadeInTotal)
		samples[i][0] *= scale
		samples[i][1] *= scale
		b.fadeInRemaining--
	}

	return len(samples), true
}

func (b *bufferedStreamer) Err() error {
	return nil
}
