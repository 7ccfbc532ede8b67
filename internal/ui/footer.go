package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/globalradio-cli/internal/player"
	"github.com/rivo/tview"
)

// StatusRenderer formats the playback state for the footer status line.
type StatusRenderer struct {
	isMuted       bool
	animFrame     int
	maxAnimFrame  int
	tickCount     int
	ticksPerFrame int

	primaryColor string
}

func NewStatusRenderer() *StatusRenderer {
	return &StatusRenderer{
		maxAnimFrame:  4,
		ticksPerFrame: 4, // 4 ticks of AnimationInterval per frame
	}
}

func (s *StatusRenderer) SetMuted(muted bool) {
	s.isMuted = muted
}

func (s *StatusRenderer) SetPrimaryColor(color string) {
	s.primaryColor = color
}

func (s *StatusRenderer) AdvanceAnimation() {
	s.tickCount++
	if s.tickCount >= s.ticksPerFrame {
		s.tickCount = 0
		s.animFrame = (s.animFrame + 1) % s.maxAnimFrame
	}
}

func (s *StatusRenderer) Render(state player.PlaybackState) string {
	if state.Station == nil {
		return s.renderNoStation()
	}

	switch state.State {
	case player.StateBuffering:
		return s.renderBuffering()
	case player.StatePlaying:
		return s.renderPlaying(state)
	case player.StateError:
		return s.renderError(state.LastError)
	default:
		return s.renderIdle()
	}
}

func (s *StatusRenderer) mutedPart() string {
	if s.isMuted {
		return "[red]MUTED[-]"
	}
	return ""
}

func (s *StatusRenderer) renderNoStation() string {
	return joinParts(nonEmpty("○ IDLE", s.mutedPart(), "Select a station"))
}

func (s *StatusRenderer) renderIdle() string {
	return joinParts(nonEmpty(PauseIcon+" STOPPED", s.mutedPart()))
}

func (s *StatusRenderer) renderBuffering() string {
	circles := []string{"◐", "◓", "◑", "◒"}
	return joinParts(nonEmpty(circles[s.animFrame]+" BUFFERING", s.mutedPart()))
}

func (s *StatusRenderer) renderPlaying(state player.PlaybackState) string {
	dots := []string{"●", "◉", "○", "◉"}
	dot := dots[s.animFrame]

	if s.primaryColor != "" {
		dot = fmt.Sprintf("[%s]%s[-]", s.primaryColor, dot)
	}

	info := ""
	if state.Station != nil {
		info = state.Station.StreamInfo()
	}
	return joinParts(nonEmpty(dot+" LIVE", s.mutedPart(), info))
}

func (s *StatusRenderer) renderError(lastError string) string {
	if lastError == "" {
		return "✗ ERROR"
	}
	return "✗ " + firstLine(friendlyErrorMessage(lastError))
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func joinParts(parts []string) string {
	return strings.Join(parts, " │ ")
}

func playbackHint(state player.PlaybackState, keyColor string) string {
	switch {
	case state.IsPlaying, state.IsLoading:
		return fmt.Sprintf("[%s]Space[-] stop", keyColor)
	case state.Station != nil:
		return fmt.Sprintf("[%s]Space[-] play  [%s]v[-] check", keyColor, keyColor)
	default:
		return fmt.Sprintf("[%s]Enter[-] select  [%s]Tab[-] switch", keyColor, keyColor)
	}
}

func (ui *UI) getHelpText(state player.PlaybackState) string {
	keyColor := ui.colors.helpHotkey.String()

	muteText := "mute"
	if state.IsMuted {
		muteText = "unmute"
	}

	return fmt.Sprintf(" %s  [%s]+/-[-] vol  [%s]m[-] %s  [%s]?[-] help  [%s]q[-] quit ",
		playbackHint(state, keyColor), keyColor, keyColor, muteText, keyColor, keyColor)
}

func (ui *UI) handleFooterResize(width int) {
	isWide := width >= FooterBreakpoint
	wasWide := ui.lastFooterWidth >= FooterBreakpoint

	if ui.lastFooterWidth > 0 && isWide != wasWide && ui.contentLayout != nil {
		newHeight := FooterHeightWide
		if !isWide {
			newHeight = FooterHeightNarrow
		}
		ui.contentLayout.ResizeItem(ui.helpPanel, newHeight, 0)
	}
	ui.lastFooterWidth = width
}

func (ui *UI) fillRect(screen tcell.Screen, x, y, width, height int, bg tcell.Color) {
	style := tcell.StyleDefault.Background(bg)
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (ui *UI) drawWideFooter(screen tcell.Screen, x, y, width, height int, helpText, statusText string) {
	helpWidth := width / 2
	statusWidth := width - helpWidth

	ui.fillRect(screen, x, y, helpWidth, height, ui.colors.helpBackground)
	ui.fillRect(screen, x+helpWidth, y, statusWidth, height, ui.colors.background)

	centerY := y + height/2
	tview.Print(screen, helpText, x, centerY, helpWidth, tview.AlignCenter, ui.colors.helpForeground)
	tview.Print(screen, statusText, x+helpWidth, centerY, statusWidth-2, tview.AlignRight, ui.colors.foreground)
}

func (ui *UI) drawNarrowFooter(screen tcell.Screen, x, y, width, height int, helpText, statusText string) {
	helpHeight := height / 2
	if helpHeight < 1 {
		helpHeight = 1
	}
	statusHeight := height - helpHeight
	helpBoxEnd := y + helpHeight

	ui.fillRect(screen, x, y, width, helpHeight, ui.colors.helpBackground)
	ui.fillRect(screen, x, helpBoxEnd, width, statusHeight, ui.colors.background)

	tview.Print(screen, helpText, x, y+helpHeight/2, width, tview.AlignCenter, ui.colors.helpForeground)

	if statusHeight > 0 {
		tview.Print(screen, statusText, x, helpBoxEnd+statusHeight/2, width-2, tview.AlignRight, ui.colors.foreground)
	}
}

func (ui *UI) createFooter() *tview.Box {
	box := tview.NewBox().SetBackgroundColor(ui.colors.background)

	box.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		ui.handleFooterResize(width)

		state := ui.player.State()
		helpText := ui.getHelpText(state)
		statusText := " " + ui.statusRenderer.Render(state) + " "

		if width >= FooterBreakpoint {
			usedHeight := height
			if height > FooterHeightWide {
				usedHeight = FooterHeightWide
			}
			ui.drawWideFooter(screen, x, y, width, usedHeight, helpText, statusText)
		} else {
			ui.drawNarrowFooter(screen, x, y, width, height, helpText, statusText)
		}

		return x, y, width, height
	})

	return box
}
