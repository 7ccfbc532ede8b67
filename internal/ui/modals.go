package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/globalradio-cli/internal/config"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func friendlyErrorMessage(errStr string) string {
	if strings.Contains(errStr, "no such host") {
		return "Unable to connect to server.\nPlease check your internet connection."
	}
	if strings.Contains(errStr, "connection refused") {
		return "Connection refused by server.\nIs the radio backend running?"
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return "Connection timed out.\nPlease check your internet connection."
	}
	if strings.Contains(errStr, "network is unreachable") || strings.Contains(errStr, "network read error") {
		return "Network is unreachable.\nPlease check your internet connection."
	}
	if strings.Contains(errStr, "unsupported stream format") {
		return "This station streams in a format that cannot be played.\nOnly MP3 streams are supported."
	}
	if strings.Contains(errStr, "stream ended unexpectedly") {
		return "The station stopped sending audio."
	}
	for _, code := range []string{"401", "403", "404"} {
		if strings.Contains(errStr, "status "+code) {
			return fmt.Sprintf("Stream unavailable (%s).", code)
		}
	}

	if idx := strings.Index(errStr, ": dial"); idx > 0 {
		return errStr[:idx]
	}
	if runes := []rune(errStr); len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return errStr
}

func (ui *UI) dismissModal(page string) {
	ui.pages.RemovePage(page)
	ui.app.SetFocus(ui.stationList)
}

// centeredModal wraps frame in a layout that centres it at the given size.
func (ui *UI) centeredModal(frame tview.Primitive, width, height int) *tview.Flex {
	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(frame, height, 0, true).
			AddItem(nil, 0, 1, false),
			width, 0, true).
		AddItem(nil, 0, 1, false)
	modal.SetBackgroundColor(ui.colors.background)
	return modal
}

func (ui *UI) showPlaybackErrorModal(message string) {
	const page = "error-modal"
	if ui.pages.HasPage(page) {
		ui.pages.RemovePage(page)
	}

	doRetry := func() {
		ui.dismissModal(page)
		ui.player.TogglePlay()
	}

	messageView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf("\n[::b]Playback Error[::-]\n\n%s", tview.Escape(message)))
	messageView.SetTextColor(ui.colors.foreground)
	messageView.SetBackgroundColor(ui.colors.modalBackground)

	hintView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText("[::d]Press [::b]R[::d] to retry  •  Press [::b]Esc[::d] to dismiss[::-]")
	hintView.SetTextColor(tcell.ColorDarkGray)
	hintView.SetBackgroundColor(ui.colors.modalBackground)

	content := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(messageView, 0, 1, false).
		AddItem(hintView, 1, 0, false).
		AddItem(nil, 1, 0, false)
	content.SetBackgroundColor(ui.colors.modalBackground)

	frame := tview.NewFrame(content).
		SetBorders(0, 0, 1, 1, 1, 1)
	frame.SetBorder(true).
		SetBorderColor(ui.colors.errorText).
		SetBackgroundColor(ui.colors.modalBackground).
		SetTitle(" Error ").
		SetTitleColor(ui.colors.errorText).
		SetTitleAlign(tview.AlignCenter)

	modal := ui.centeredModal(frame, 50, modalHeightFor(message, 10, 15))

	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyEnter:
			ui.dismissModal(page)
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				doRetry()
				return nil
			}
		}
		return event
	})

	ui.pages.AddPage(page, modal, true, true)
	ui.app.SetFocus(modal)
}

// modalHeightFor grows base by the message lines beyond two, up to max.
func modalHeightFor(message string, base, max int) int {
	height := base
	if lines := strings.Count(message, "\n") + 1; lines > 2 {
		height += lines - 2
	}
	if height > max {
		height = max
	}
	return height
}

func (ui *UI) showHelpModal() {
	keyColor := ui.colors.helpHotkey.String()

	configPath, _ := config.GetConfigPath()

	helpText := fmt.Sprintf(`[::b]KEYBOARD SHORTCUTS[::-]

[%[1]s]BROWSING[-]
  [%[1]s]Tab[-]        Switch countries / stations
  [%[1]s]↑[-] / [%[1]s]↓[-]      Navigate list
  [%[1]s]Enter[-]      Select country / play station
  [%[1]s]r[-]          Reload list
  [%[1]s]c[-]          Close station

[%[1]s]PLAYBACK[-]
  [%[1]s]Space[-]      Play / Stop
  [%[1]s]v[-]          Check station stream

[%[1]s]VOLUME[-]
  [%[1]s]+[-] / [%[1]s]-[-]      Volume up / down
  [%[1]s]←[-] / [%[1]s]→[-]      Volume down / up
  [%[1]s]m[-]          Mute / Unmute

[%[1]s]APPLICATION[-]
  [%[1]s]?[-]          Show this help
  [%[1]s]a[-]          About %[2]s
  [%[1]s]q[-] / [%[1]s]Esc[-]    Quit

[%[1]s]BACKEND[-]: %[3]s
[%[1]s]CONFIG[-]: %[4]s`,
		keyColor, config.AppName, ui.config.Backend, configPath)

	ui.showInfoModal("Help", helpText)
}

func (ui *UI) showAboutModal() {
	linkColor := "skyblue"
	dimColor := "gray"

	aboutText := fmt.Sprintf(`[::b]%s[::-]
[%s]%s[-]

Version: %s
Author:  %s
Project: [%s:::%s]%s[-:::-]
License: MIT

───────────────────────────────────────────

[%s]Backend:[-] %s`,
		config.AppName,
		dimColor, config.AppTagline,
		config.AppVersion,
		config.AppAuthor,
		linkColor, config.AppProjectURL, config.AppProjectShort,
		dimColor, ui.config.Backend)

	ui.showInfoModal("About", aboutText)
}

func (ui *UI) showInfoModal(title, message string) {
	const page = "modal"

	messageView := tview.NewTextView().
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetWordWrap(true).
		SetText("\n" + message)
	messageView.SetTextColor(ui.colors.foreground)
	messageView.SetBackgroundColor(ui.colors.modalBackground)

	hintView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText("[::d]Press any key to close[::-]")
	hintView.SetTextColor(tcell.ColorDarkGray)
	hintView.SetBackgroundColor(ui.colors.modalBackground)

	content := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(messageView, 0, 1, false).
		AddItem(nil, 2, 0, false).
		AddItem(hintView, 1, 0, false).
		AddItem(nil, 1, 0, false)
	content.SetBackgroundColor(ui.colors.modalBackground)

	frame := tview.NewFrame(content).
		SetBorders(1, 0, 1, 1, 2, 2)
	frame.SetBorder(true).
		SetBorderColor(ui.colors.borders).
		SetBackgroundColor(ui.colors.modalBackground).
		SetTitle(" " + title + " ").
		SetTitleColor(ui.colors.highlight).
		SetTitleAlign(tview.AlignCenter)

	lines := strings.Count(message, "\n") + 1
	modalHeight := lines + 10
	if modalHeight > 38 {
		modalHeight = 38
	}

	modal := ui.centeredModal(frame, 52, modalHeight)
	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		ui.dismissModal(page)
		return nil
	})

	if ui.pages.HasPage(page) {
		ui.pages.RemovePage(page)
	}
	ui.pages.AddPage(page, modal, true, true)
	ui.app.SetFocus(modal)
}

// validateStation asks the backend to check the bound (or highlighted)
// station and shows the answer.
func (ui *UI) validateStation() {
	target := ui.player.State().Station
	if target == nil {
		target = ui.selectedStation()
	}
	if target == nil || ui.validator == nil {
		return
	}

	st := *target
	ui.showInfoModal("Station Check", fmt.Sprintf("Checking [::b]%s[::-]...", tview.Escape(st.Name)))

	go func() {
		ctx, cancel := context.WithTimeout(ui.ctx, ValidateTimeout)
		defer cancel()

		validation, err := ui.validator.ValidateStation(ctx, st.ID)
		if err != nil {
			log.Warn().Err(err).Str("station", st.ID).Msg("Station check failed")
		}

		ui.app.QueueUpdateDraw(func() {
			if !ui.pages.HasPage("modal") {
				return
			}
			if err != nil {
				ui.showInfoModal("Station Check", fmt.Sprintf("[::b]%s[::-]\n\nCheck failed:\n%s",
					tview.Escape(st.Name), tview.Escape(friendlyErrorMessage(err.Error()))))
				return
			}
			ui.showInfoModal("Station Check", fmt.Sprintf("[::b]%s[::-]\n\n%s",
				tview.Escape(st.Name), tview.Escape(validation.Summary())))
		})
	}()
}

func (ui *UI) showInitialErrorScreen(title, message string, onRetry, onQuit func()) {
	content := fmt.Sprintf("[::b]%s[::-]\n\n%s", title, tview.Escape(message))

	textView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(content)
	textView.SetTextColor(ui.colors.foreground)
	textView.SetBackgroundColor(ui.colors.modalBackground)

	helpText := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText("[::d]Press [::b]R[::d] to retry  •  Press [::b]Q[::d] to quit[::-]")
	helpText.SetTextColor(ui.colors.foreground)
	helpText.SetBackgroundColor(ui.colors.background)

	frame := tview.NewFrame(textView).
		SetBorders(2, 2, 2, 2, 2, 2)
	frame.SetBorder(true).
		SetBorderColor(ui.colors.errorText).
		SetBackgroundColor(ui.colors.modalBackground).
		SetTitle(" Connection Error ").
		SetTitleColor(ui.colors.errorText)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(frame, 60, 1, true).
			AddItem(nil, 0, 1, false), 10, 1, true).
		AddItem(helpText, 2, 0, false).
		AddItem(nil, 0, 1, false)
	layout.SetBackgroundColor(ui.colors.background)

	layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r', 'R':
				if onRetry != nil {
					onRetry()
				}
				return nil
			case 'q', 'Q':
				if onQuit != nil {
					onQuit()
				}
				return nil
			}
		case tcell.KeyEscape:
			if onQuit != nil {
				onQuit()
			}
			return nil
		}
		return event
	})

	ui.app.SetRoot(layout, true)
	ui.app.SetFocus(layout)
}

func (ui *UI) handleInitialError(errText string) {
	ui.showInitialErrorScreen(
		"Unable to Load Countries",
		friendlyErrorMessage(errText),
		func() { // onRetry
			ui.app.SetRoot(ui.loadingScreen, true)
			go ui.catalog.Countries.Refetch(ui.ctx)
		},
		ui.stop,
	)
}
