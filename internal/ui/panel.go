package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/globalradio-cli/internal/player"
	"github.com/glebovdev/globalradio-cli/internal/station"
	"github.com/rivo/tview"
)

// refreshPlayer rebuilds the player panel and the station row markers from
// the controller state, and raises the playback error modal once per failure.
func (ui *UI) refreshPlayer() {
	s := ui.player.State()

	ui.mu.Lock()
	prev := ui.lastPlayerState
	ui.lastPlayerState = s
	showError := s.Failed() && s.LastError != ui.shownPlayError
	if showError {
		ui.shownPlayError = s.LastError
	} else if !s.Failed() {
		ui.shownPlayError = ""
	}
	ui.mu.Unlock()

	ui.statusRenderer.SetMuted(s.IsMuted)

	if !samePanelContent(prev, s) || ui.playerPanel.GetItemCount() == 0 {
		ui.playerPanel.Clear()
		ui.playerPanel.AddItem(ui.createContentPanel(s), 0, 1, false)
	} else {
		ui.updateTrackInfo()
		ui.updateVolumeDisplay()
	}

	if ui.stationList != nil {
		ui.updatePlayingIndicator()
	}

	if showError && ui.pages != nil && ui.isMainShown() {
		ui.showPlaybackErrorModal(friendlyErrorMessage(s.LastError))
	}
}

// samePanelContent reports whether only the live fields (track, volume)
// differ, so the panel can be updated in place.
func samePanelContent(a, b player.PlaybackState) bool {
	if (a.Station == nil) != (b.Station == nil) {
		return false
	}
	if a.Station != nil && a.Station.ID != b.Station.ID {
		return false
	}
	return a.State == b.State
}

func (ui *UI) createContentPanel(s player.PlaybackState) tview.Primitive {
	if s.Station == nil {
		placeholder := tview.NewTextView().
			SetTextAlign(tview.AlignCenter).
			SetDynamicColors(true).
			SetText("\n\n\nNo station selected\n\n[::d]Pick a country, then a station and press Enter[::-]")
		placeholder.SetTextColor(ui.colors.foreground)
		placeholder.SetBackgroundColor(ui.colors.background)
		return placeholder
	}

	st := s.Station

	label := func(text string) *tview.TextView {
		tv := tview.NewTextView()
		tv.SetText(" " + text)
		tv.SetTextColor(ui.colors.foreground)
		tv.SetBackgroundColor(ui.colors.background)
		tv.SetWrap(false)
		return tv
	}

	value := func(text string, color tcell.Color, bold bool) *tview.TextView {
		tv := tview.NewTextView()
		tv.SetDynamicColors(true)
		tv.SetText(fmt.Sprintf(" [%s]%s[-]", color.String(), tview.Escape(text)))
		tv.SetBackgroundColor(ui.colors.background)
		tv.SetWrap(true)
		style := tcell.StyleDefault.Background(ui.colors.background)
		if bold {
			style = style.Attributes(tcell.AttrBold)
		}
		tv.SetTextStyle(style)
		return tv
	}

	ui.currentTrackView = value(trackText(s), ui.colors.highlight, true)

	infoContent := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(label("Station:"), 1, 0, false).
		AddItem(value(stationTitle(st), ui.colors.highlight, true), 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(label("Playing:"), 1, 0, false).
		AddItem(ui.currentTrackView, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(label("Details:"), 1, 0, false).
		AddItem(value(stationDetails(st), ui.colors.foreground, false), 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(value(st.Description, ui.colors.foreground, false), 0, 1, false)
	infoContent.SetBackgroundColor(ui.colors.background)

	ui.volumeView = ui.createGraphicalVolumeBar()

	contentFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(infoContent, 0, 1, false).
		AddItem(ui.volumeView, 7, 0, false)
	contentFlex.SetBackgroundColor(ui.colors.background)

	contentWithPadding := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 4, 0, false).
		AddItem(contentFlex, 0, 1, false).
		AddItem(nil, 4, 0, false)
	contentWithPadding.SetBackgroundColor(ui.colors.background)

	return contentWithPadding
}

func (ui *UI) updateTrackInfo() {
	if ui.currentTrackView == nil {
		return
	}
	s := ui.player.State()
	if s.Station == nil {
		return
	}
	ui.currentTrackView.SetText(fmt.Sprintf(" [%s]%s[-]",
		ui.colors.highlight.String(),
		tview.Escape(trackText(s))))
}

func stationTitle(s *station.Station) string {
	if s.Frequency == "" {
		return s.Name
	}
	return s.Name + " · " + s.Frequency
}

// stationDetails joins the optional descriptive fields that are present.
func stationDetails(s *station.Station) string {
	var parts []string
	if g := formatGenre(s.Genre); g != "" {
		parts = append(parts, g)
	}
	if info := s.StreamInfo(); info != "" {
		parts = append(parts, info)
	}
	if s.Language != "" {
		parts = append(parts, s.Language)
	}
	if s.Listeners != "" {
		parts = append(parts, s.Listeners+" listeners")
	}
	if s.Homepage != "" {
		parts = append(parts, s.Homepage)
	}
	if len(parts) == 0 {
		return "N/A"
	}
	return strings.Join(parts, " · ")
}

func trackText(s player.PlaybackState) string {
	switch {
	case s.Track != "":
		return s.Track
	case s.IsLoading:
		return "Connecting..."
	case s.IsPlaying:
		return "Waiting for track info..."
	case s.Failed():
		return "Playback failed"
	default:
		return "Stopped. Press Space to play"
	}
}
