package ui

import (
	"strings"
	"testing"

	"github.com/glebovdev/globalradio-cli/internal/player"
	"github.com/glebovdev/globalradio-cli/internal/station"
)

func TestNewPlayingSpinner(t *testing.T) {
	spinner := NewPlayingSpinner()

	if spinner == nil {
		t.Fatal("NewPlayingSpinner() returned nil")
	}

	if len(spinner.Frames) < 2 {
		t.Errorf("Expected at least 2 frames, got %d", len(spinner.Frames))
	}

	for i, frame := range spinner.Frames {
		if frame == "" {
			t.Errorf("Frame[%d] is empty", i)
		}
	}

	if spinner.FPS <= 0 {
		t.Error("PlayingSpinner.FPS should be positive")
	}
}

func TestJoinParts(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"empty slice", []string{}, ""},
		{"single part", []string{"LIVE"}, "LIVE"},
		{"two parts", []string{"LIVE", "MP3"}, "LIVE │ MP3"},
		{"three parts", []string{"● LIVE", "MUTED", "MP3 128k"}, "● LIVE │ MUTED │ MP3 128k"},
		{"nil slice", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := joinParts(tt.parts)
			if result != tt.expected {
				t.Errorf("joinParts(%v) = %q, want %q", tt.parts, result, tt.expected)
			}
		})
	}
}

func TestNonEmpty(t *testing.T) {
	got := nonEmpty("a", "", "b", "")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("nonEmpty() = %v, want [a b]", got)
	}
	if got := nonEmpty("", ""); len(got) != 0 {
		t.Errorf("nonEmpty() of blanks = %v, want empty", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one" {
		t.Errorf("firstLine() = %q, want %q", got, "one")
	}
	if got := firstLine("single"); got != "single" {
		t.Errorf("firstLine() = %q, want %q", got, "single")
	}
}

func TestFriendlyErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      string
		contains string
	}{
		{"no such host", "dial tcp: lookup example.com: no such host", "Unable to connect"},
		{"connection refused", "dial tcp 127.0.0.1:80: connection refused", "Connection refused"},
		{"deadline", "context deadline exceeded", "timed out"},
		{"read timeout", "read timeout: no data received for 5s", "timed out"},
		{"network unreachable", "dial tcp: network is unreachable", "Network is unreachable"},
		{"unsupported format", "playback of Jazz failed: unsupported stream format: audio/aac", "Only MP3"},
		{"stream ended", "playback of Jazz failed: stream ended unexpectedly", "stopped sending audio"},
		{"401", "stream returned status 401: 401 Unauthorized", "401"},
		{"403", "stream returned status 403: 403 Forbidden", "403"},
		{"404", "stream returned status 404: 404 Not Found", "Stream unavailable (404)"},
		{"generic short", "some error", "some error"},
		{"dial truncation", "failed to connect: dial tcp something", "failed to connect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := friendlyErrorMessage(tt.err)
			if !strings.Contains(result, tt.contains) {
				t.Errorf("friendlyErrorMessage(%q) = %q, expected to contain %q", tt.err, result, tt.contains)
			}
		})
	}
}

func TestFriendlyErrorMessageDialStripped(t *testing.T) {
	result := friendlyErrorMessage("failed to connect: dial tcp 10.0.0.1:443")
	if result != "failed to connect" {
		t.Errorf("friendlyErrorMessage() = %q, want %q", result, "failed to connect")
	}
}

func TestFriendlyErrorMessageLongError(t *testing.T) {
	result := friendlyErrorMessage(strings.Repeat("x", 200))

	if len([]rune(result)) != 103 {
		t.Errorf("Long error not truncated properly, got length %d", len([]rune(result)))
	}
	if !strings.HasSuffix(result, "...") {
		t.Errorf("Truncated error should end with ellipsis, got %q", result)
	}
}

func TestModalHeightFor(t *testing.T) {
	tests := []struct {
		message  string
		expected int
	}{
		{"one line", 10},
		{"one\ntwo", 10},
		{"1\n2\n3\n4\n5", 13},
		{strings.Repeat("x\n", 20), 15},
	}

	for _, tt := range tests {
		if got := modalHeightFor(tt.message, 10, 15); got != tt.expected {
			t.Errorf("modalHeightFor(%q) = %d, want %d", tt.message, got, tt.expected)
		}
	}
}

func TestNewStatusRenderer(t *testing.T) {
	renderer := NewStatusRenderer()

	if renderer == nil {
		t.Fatal("NewStatusRenderer() returned nil")
	}

	if renderer.maxAnimFrame <= 0 {
		t.Error("maxAnimFrame should be positive")
	}

	if renderer.ticksPerFrame <= 0 {
		t.Error("ticksPerFrame should be positive")
	}
}

func TestStatusRendererSetters(t *testing.T) {
	renderer := NewStatusRenderer()

	renderer.SetMuted(true)
	if !renderer.isMuted {
		t.Error("SetMuted(true) did not set isMuted")
	}

	renderer.SetMuted(false)
	if renderer.isMuted {
		t.Error("SetMuted(false) did not clear isMuted")
	}

	renderer.SetPrimaryColor("red")
	if renderer.primaryColor != "red" {
		t.Errorf("SetPrimaryColor set %q, want %q", renderer.primaryColor, "red")
	}
}

func TestStatusRendererAdvanceAnimation(t *testing.T) {
	renderer := NewStatusRenderer()

	initialFrame := renderer.animFrame

	for i := 0; i < renderer.ticksPerFrame-1; i++ {
		renderer.AdvanceAnimation()
	}

	if renderer.animFrame != initialFrame {
		t.Error("Animation frame changed before ticksPerFrame ticks")
	}

	renderer.AdvanceAnimation()

	if renderer.animFrame != (initialFrame+1)%renderer.maxAnimFrame {
		t.Errorf("Animation frame = %d, want %d",
			renderer.animFrame, (initialFrame+1)%renderer.maxAnimFrame)
	}

	if renderer.tickCount != 0 {
		t.Errorf("tickCount = %d, want 0 after frame advance", renderer.tickCount)
	}
}

func TestStatusRendererRender(t *testing.T) {
	jazz := &station.Station{ID: "1", Name: "Jazz FM", Codec: "mp3", Bitrate: 128}

	tests := []struct {
		name     string
		state    player.PlaybackState
		contains []string
	}{
		{
			name:     "no station",
			state:    player.PlaybackState{},
			contains: []string{"IDLE", "Select a station"},
		},
		{
			name:     "stopped",
			state:    player.PlaybackState{Station: jazz, State: player.StateIdle},
			contains: []string{"STOPPED"},
		},
		{
			name:     "buffering",
			state:    player.PlaybackState{Station: jazz, State: player.StateBuffering, IsLoading: true},
			contains: []string{"BUFFERING"},
		},
		{
			name:     "playing",
			state:    player.PlaybackState{Station: jazz, State: player.StatePlaying, IsPlaying: true},
			contains: []string{"LIVE", "MP3 128k"},
		},
		{
			name: "failed",
			state: player.PlaybackState{
				Station:   jazz,
				State:     player.StateError,
				LastError: "playback of Jazz FM failed: stream returned status 404: 404 Not Found",
			},
			contains: []string{"✗", "Stream unavailable (404)"},
		},
		{
			name:     "failed without message",
			state:    player.PlaybackState{Station: jazz, State: player.StateError},
			contains: []string{"✗ ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewStatusRenderer().Render(tt.state)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("Render() = %q, expected to contain %q", result, want)
				}
			}
			if strings.Contains(result, "MUTED") {
				t.Errorf("Render() = %q, should not show MUTED", result)
			}
		})
	}
}

func TestStatusRendererRenderMuted(t *testing.T) {
	renderer := NewStatusRenderer()
	renderer.SetMuted(true)

	states := []player.PlaybackState{
		{},
		{Station: &station.Station{ID: "1"}, State: player.StateIdle},
		{Station: &station.Station{ID: "1"}, State: player.StatePlaying, IsPlaying: true},
	}
	for _, s := range states {
		if result := renderer.Render(s); !strings.Contains(result, "MUTED") {
			t.Errorf("Render(%v) when muted = %q, expected to contain 'MUTED'", s.State, result)
		}
	}
}

func TestPlaybackHint(t *testing.T) {
	st := &station.Station{ID: "1"}

	tests := []struct {
		name     string
		state    player.PlaybackState
		contains string
	}{
		{"playing", player.PlaybackState{Station: st, IsPlaying: true}, "stop"},
		{"buffering", player.PlaybackState{Station: st, IsLoading: true}, "stop"},
		{"stopped", player.PlaybackState{Station: st}, "play"},
		{"no station", player.PlaybackState{}, "select"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := playbackHint(tt.state, "yellow")
			if !strings.Contains(result, tt.contains) {
				t.Errorf("playbackHint() = %q, expected to contain %q", result, tt.contains)
			}
		})
	}
}

func TestVolumeBarLines(t *testing.T) {
	tests := []struct {
		volume int
		filled int
		empty  int
	}{
		{0, 0, 10},
		{5, 0, 10},
		{55, 5, 5},
		{70, 7, 3},
		{100, 10, 0},
	}

	for _, tt := range tests {
		filled, empty := volumeBarLines(tt.volume)
		if filled != tt.filled || empty != tt.empty {
			t.Errorf("volumeBarLines(%d) = (%d, %d), want (%d, %d)",
				tt.volume, filled, empty, tt.filled, tt.empty)
		}
	}
}

func TestTruncateName(t *testing.T) {
	indicator := "⣾ "

	short := truncateName("Radio One", indicator)
	if short != "Radio One "+indicator {
		t.Errorf("truncateName() = %q, want %q", short, "Radio One "+indicator)
	}

	long := truncateName(strings.Repeat("a", 40), indicator)
	if n := len([]rune(long)); n != maxNameWidth {
		t.Errorf("truncated name has %d runes, want %d", n, maxNameWidth)
	}
	if !strings.Contains(long, "...") {
		t.Errorf("truncated name %q should contain ellipsis", long)
	}
}

func TestFormatGenre(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"jazz", "jazz"},
		{"pop|rock", "pop, rock"},
		{"pop, rock,jazz", "pop, rock, jazz"},
		{"news | talk", "news, talk"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := formatGenre(tt.input); got != tt.expected {
				t.Errorf("formatGenre(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStationTitle(t *testing.T) {
	if got := stationTitle(&station.Station{Name: "Radio One"}); got != "Radio One" {
		t.Errorf("stationTitle() = %q, want %q", got, "Radio One")
	}
	if got := stationTitle(&station.Station{Name: "Radio One", Frequency: "98.8 FM"}); got != "Radio One · 98.8 FM" {
		t.Errorf("stationTitle() = %q, want %q", got, "Radio One · 98.8 FM")
	}
}

func TestStationDetails(t *testing.T) {
	if got := stationDetails(&station.Station{}); got != "N/A" {
		t.Errorf("stationDetails(empty) = %q, want %q", got, "N/A")
	}

	s := &station.Station{
		Genre:     "pop|rock",
		Codec:     "mp3",
		Bitrate:   128,
		Language:  "german",
		Listeners: "2.1M",
	}
	want := "pop, rock · MP3 128k · german · 2.1M listeners"
	if got := stationDetails(s); got != want {
		t.Errorf("stationDetails() = %q, want %q", got, want)
	}
}

func TestTrackText(t *testing.T) {
	st := &station.Station{ID: "1"}

	tests := []struct {
		name     string
		state    player.PlaybackState
		expected string
	}{
		{"track known", player.PlaybackState{Station: st, IsPlaying: true, Track: "Artist - Song"}, "Artist - Song"},
		{"connecting", player.PlaybackState{Station: st, IsLoading: true}, "Connecting..."},
		{"playing without title", player.PlaybackState{Station: st, IsPlaying: true}, "Waiting for track info..."},
		{"failed", player.PlaybackState{Station: st, State: player.StateError}, "Playback failed"},
		{"stopped", player.PlaybackState{Station: st}, "Stopped. Press Space to play"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trackText(tt.state); got != tt.expected {
				t.Errorf("trackText() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSamePanelContent(t *testing.T) {
	a := &station.Station{ID: "a"}
	b := &station.Station{ID: "b"}

	tests := []struct {
		name     string
		x, y     player.PlaybackState
		expected bool
	}{
		{"both empty", player.PlaybackState{}, player.PlaybackState{}, true},
		{"station bound", player.PlaybackState{}, player.PlaybackState{Station: a}, false},
		{"station switched", player.PlaybackState{Station: a}, player.PlaybackState{Station: b}, false},
		{"state changed", player.PlaybackState{Station: a, State: player.StateBuffering},
			player.PlaybackState{Station: a, State: player.StatePlaying}, false},
		{"track changed", player.PlaybackState{Station: a, State: player.StatePlaying, Track: "x"},
			player.PlaybackState{Station: a, State: player.StatePlaying, Track: "y"}, true},
		{"volume changed", player.PlaybackState{Station: a, Volume: 10},
			player.PlaybackState{Station: a, Volume: 90, IsMuted: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := samePanelContent(tt.x, tt.y); got != tt.expected {
				t.Errorf("samePanelContent() = %v, want %v", got, tt.expected)
			}
		})
	}
}
