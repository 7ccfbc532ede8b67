package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/globalradio-cli/internal/station"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const maxNameWidth = 35

func (ui *UI) createStationTable() *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSeparator(' ').
		SetSelectable(true, false).
		SetFixed(1, 0)

	table.SetBorder(true).
		SetTitle("Stations").
		SetBorderColor(ui.colors.borders).
		SetTitleColor(ui.colors.foreground).
		SetBackgroundColor(ui.colors.background).
		SetBorderPadding(1, 0, 1, 1)

	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(ui.colors.background).
		Background(ui.colors.highlight))

	ui.setStationHeader(table)
	ui.setMessageRow(table, "Select a country to browse its stations", ui.colors.foreground)
	return table
}

func (ui *UI) setStationHeader(table *tview.Table) {
	headers := []struct {
		text   string
		expand int
		align  int
	}{
		{" ", 0, tview.AlignLeft},
		{"Name", 1, tview.AlignLeft},
		{"Frequency", 0, tview.AlignLeft},
		{"Genre", 1, tview.AlignLeft},
		{"Listeners", 0, tview.AlignRight},
	}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h.text).
			SetTextColor(ui.colors.listHeader).
			SetExpansion(h.expand).
			SetAlign(h.align).
			SetSelectable(false))
	}
}

func (ui *UI) refreshStations() {
	state := ui.catalog.Stations.State()
	table := ui.stationList
	table.Clear()
	ui.setStationHeader(table)

	title := "Stations"
	if c := ui.catalog.Selection.Country(); c != nil {
		title = "Stations · " + c.Name
	}

	switch {
	case state.Country == "":
		ui.setMessageRow(table, "Select a country to browse its stations", ui.colors.foreground)
		table.SetTitle(title)
		return
	case state.Loading:
		ui.setMessageRow(table, "Loading stations...", ui.colors.foreground)
		table.SetTitle(title)
		return
	case state.Err != "":
		ui.setMessageRow(table, "✗ "+friendlyErrorMessage(state.Err)+"  (r to retry)", ui.colors.errorText)
		table.SetTitle(title)
		return
	case len(state.Stations) == 0:
		ui.setMessageRow(table, "No stations found for this country", ui.colors.foreground)
		table.SetTitle(title + " (0)")
		return
	}

	for i := range state.Stations {
		ui.setStationRow(table, i+1, &state.Stations[i])
	}
	table.SetTitle(fmt.Sprintf("%s (%d)", title, len(state.Stations)))
	table.Select(1, 0)

	log.Debug().Int("count", len(state.Stations)).Msg("Station table refreshed")
}

func (ui *UI) setStationRow(table *tview.Table, row int, s *station.Station) {
	table.SetCell(row, 0, tview.NewTableCell(ui.stationIcon(s.ID)).
		SetTextColor(ui.colors.highlight).
		SetMaxWidth(2))

	table.SetCell(row, 1, tview.NewTableCell(s.Name).
		SetTextColor(ui.colors.foreground).
		SetMaxWidth(maxNameWidth).
		SetExpansion(2))

	table.SetCell(row, 2, tview.NewTableCell(s.Frequency).
		SetTextColor(ui.colors.foreground).
		SetMaxWidth(12))

	table.SetCell(row, 3, tview.NewTableCell(formatGenre(s.Genre)).
		SetTextColor(ui.colors.foreground).
		SetMaxWidth(27).
		SetExpansion(1))

	table.SetCell(row, 4, tview.NewTableCell(s.Listeners).
		SetTextColor(ui.colors.foreground).
		SetAlign(tview.AlignRight))
}

// stationIcon marks the station the player is bound to.
func (ui *UI) stationIcon(stationID string) string {
	s := ui.player.State()
	if s.Station == nil || s.Station.ID != stationID {
		return " "
	}
	switch {
	case s.IsPlaying:
		return "➤"
	case s.IsLoading:
		return "…"
	case s.Failed():
		return "✗"
	default:
		return PauseIcon
	}
}

// updatePlayingIndicator refreshes the bound station's row: its icon and,
// while live, a spinner after the name.
func (ui *UI) updatePlayingIndicator() {
	count := ui.catalog.Stations.StationCount()
	for i := 0; i < count; i++ {
		s := ui.catalog.Stations.GetStation(i)
		if s == nil {
			continue
		}
		row := i + 1

		if cell := ui.stationList.GetCell(row, 0); cell != nil {
			cell.SetText(ui.stationIcon(s.ID))
		}

		nameCell := ui.stationList.GetCell(row, 1)
		if nameCell == nil {
			continue
		}
		ps := ui.player.State()
		if ps.IsPlaying && ps.Station != nil && ps.Station.ID == s.ID {
			nameCell.SetText(truncateName(s.Name, ui.getPlayingIndicator()))
		} else {
			nameCell.SetText(s.Name)
		}
	}
}

func truncateName(name, indicator string) string {
	maxLen := maxNameWidth - len([]rune(indicator)) - 1
	runes := []rune(name)
	if len(runes) > maxLen {
		name = string(runes[:maxLen-3]) + "..."
	}
	return name + " " + indicator
}

func formatGenre(genre string) string {
	parts := strings.FieldsFunc(genre, func(r rune) bool { return r == '|' || r == ',' })
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

func (ui *UI) selectedStation() *station.Station {
	row, _ := ui.stationList.GetSelection()
	return ui.catalog.Stations.GetStation(row - 1)
}

// onStationRowSelected selects the highlighted station and starts playing it.
// Re-selecting the live station leaves it playing.
func (ui *UI) onStationRowSelected() {
	s := ui.selectedStation()
	if s == nil {
		return
	}

	ps := ui.player.State()
	if ps.Station != nil && ps.Station.ID == s.ID && (ps.IsPlaying || ps.IsLoading) {
		return
	}

	ui.catalog.Selection.SelectStation(s)
	ui.player.SetStation(s)
	ui.player.TogglePlay()
	log.Debug().Msgf("Selected station: %s", s.Name)
}

// togglePlay plays or stops the bound station. With nothing bound it plays
// the highlighted station.
func (ui *UI) togglePlay() {
	if ui.player.State().Station == nil {
		ui.onStationRowSelected()
		return
	}
	ui.player.TogglePlay()
}

func (ui *UI) clearStation() {
	ui.catalog.Selection.ClearStation()
	ui.player.SetStation(nil)
}
