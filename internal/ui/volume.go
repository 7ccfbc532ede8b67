package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const volumeBarHeight = 10

// volumeBarLines splits the bar into empty and filled lines for volume.
func volumeBarLines(volume int) (filled, empty int) {
	filled = (volume * volumeBarHeight) / 100
	return filled, volumeBarHeight - filled
}

func (ui *UI) buildVolumeBar(container *tview.Flex) {
	s := ui.player.State()
	filledLines, emptyLines := volumeBarLines(s.Volume)

	createText := func(text string, color tcell.Color) *tview.TextView {
		tv := tview.NewTextView()
		tv.SetText(text)
		tv.SetTextAlign(tview.AlignRight)
		tv.SetTextColor(color)
		tv.SetBackgroundColor(ui.colors.background)
		return tv
	}

	barColor := ui.colors.highlight
	if s.IsMuted {
		barColor = ui.colors.mutedVolume
	}

	createBarLine := func(barText string, color tcell.Color, showPercent bool) *tview.Flex {
		line := tview.NewFlex().SetDirection(tview.FlexColumn)
		line.SetBackgroundColor(ui.colors.background)

		if showPercent {
			percentView := createText(fmt.Sprintf("%d%%", s.Volume), barColor)
			if s.IsMuted {
				// Muted keeps the level visible, struck through.
				percentView.SetTextStyle(tcell.StyleDefault.
					Foreground(barColor).
					Background(ui.colors.background).
					Attributes(tcell.AttrStrikeThrough))
			}
			line.AddItem(percentView, 4, 0, false)
		} else {
			line.AddItem(createText("    ", ui.colors.foreground), 4, 0, false)
		}

		line.AddItem(createText(barText, color), 0, 1, false)
		return line
	}

	container.AddItem(createText("   max", ui.colors.foreground), 1, 0, false)

	for i := 0; i < emptyLines; i++ {
		container.AddItem(createBarLine(" ░░", ui.colors.foreground, i == emptyLines-1 && filledLines == 0), 1, 0, false)
	}
	for i := 0; i < filledLines; i++ {
		container.AddItem(createBarLine(" ██", barColor, i == 0), 1, 0, false)
	}

	container.AddItem(createText("   min", ui.colors.foreground), 1, 0, false)
	container.AddItem(nil, 0, 1, false)
}

func (ui *UI) createGraphicalVolumeBar() *tview.Flex {
	volumeContainer := tview.NewFlex().SetDirection(tview.FlexRow)
	volumeContainer.SetBackgroundColor(ui.colors.background)
	ui.buildVolumeBar(volumeContainer)
	return volumeContainer
}

func (ui *UI) updateVolumeDisplay() {
	if ui.volumeView != nil {
		ui.volumeView.Clear()
		ui.buildVolumeBar(ui.volumeView)
	}
}

func (ui *UI) adjustVolume(delta int) {
	ui.player.AdjustVolume(delta)
	log.Debug().Msgf("Volume adjusted by %+d to %d%%", delta, ui.player.State().Volume)
}

func (ui *UI) toggleMute() {
	ui.player.ToggleMute()
}
