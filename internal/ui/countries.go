package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (ui *UI) createCountryTable() *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSeparator(' ').
		SetSelectable(true, false).
		SetFixed(1, 0)

	table.SetBorder(true).
		SetTitle("Countries").
		SetBorderColor(ui.colors.borders).
		SetTitleColor(ui.colors.foreground).
		SetBackgroundColor(ui.colors.background).
		SetBorderPadding(1, 0, 1, 1)

	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(ui.colors.background).
		Background(ui.colors.highlight))

	ui.setCountryHeader(table)
	return table
}

func (ui *UI) setCountryHeader(table *tview.Table) {
	headers := []struct {
		text   string
		expand int
		align  int
	}{
		{" ", 0, tview.AlignLeft},
		{"Country", 1, tview.AlignLeft},
		{"Stations", 0, tview.AlignRight},
	}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h.text).
			SetTextColor(ui.colors.listHeader).
			SetExpansion(h.expand).
			SetAlign(h.align).
			SetSelectable(false))
	}
}

// setMessageRow fills the first body row with a non-selectable message.
func (ui *UI) setMessageRow(table *tview.Table, text string, color tcell.Color) {
	table.SetCell(1, 0, tview.NewTableCell(" ").SetSelectable(false))
	table.SetCell(1, 1, tview.NewTableCell(text).
		SetTextColor(color).
		SetExpansion(1).
		SetSelectable(false))
}

// refreshCountries redraws the country list from the loader state. It also
// decides between the loading screen, the initial error screen, and the main
// layout.
func (ui *UI) refreshCountries() {
	state := ui.catalog.Countries.State()

	if !ui.isMainShown() {
		switch {
		case state.Loading:
			ui.app.SetRoot(ui.loadingScreen, true)
			return
		case state.Err != "":
			ui.handleInitialError(state.Err)
			return
		}
		ui.showMain()
	}

	table := ui.countryList
	row, _ := table.GetSelection()
	table.Clear()
	ui.setCountryHeader(table)

	switch {
	case state.Loading:
		ui.setMessageRow(table, "Loading countries...", ui.colors.foreground)
		table.SetTitle("Countries")
		return
	case state.Err != "":
		ui.setMessageRow(table, "✗ "+friendlyErrorMessage(state.Err), ui.colors.errorText)
		table.SetTitle("Countries")
		return
	case len(state.Countries) == 0:
		ui.setMessageRow(table, "No countries available", ui.colors.foreground)
		table.SetTitle("Countries (0)")
		return
	}

	selected := ui.catalog.Selection.CountryCode()
	for i, c := range state.Countries {
		marker := " "
		if selected != "" && strings.EqualFold(c.Code, selected) {
			marker = "➤"
		}
		count := ""
		if c.StationCount > 0 {
			count = fmt.Sprintf("%d", c.StationCount)
		}

		table.SetCell(i+1, 0, tview.NewTableCell(marker).
			SetTextColor(ui.colors.highlight).
			SetMaxWidth(2))
		table.SetCell(i+1, 1, tview.NewTableCell(c.Label()).
			SetTextColor(ui.colors.foreground).
			SetMaxWidth(24).
			SetExpansion(1))
		table.SetCell(i+1, 2, tview.NewTableCell(count).
			SetTextColor(ui.colors.foreground).
			SetAlign(tview.AlignRight))
	}
	table.SetTitle(fmt.Sprintf("Countries (%d)", len(state.Countries)))

	if row > 0 && row <= len(state.Countries) {
		table.Select(row, 0)
	}

	ui.applyPreselect()
}

// applyPreselect selects the configured country once, after the first
// successful load.
func (ui *UI) applyPreselect() {
	ui.mu.Lock()
	done := ui.preselectDone
	ui.preselectDone = true
	ui.mu.Unlock()

	code := strings.TrimSpace(ui.config.Country)
	if done || code == "" {
		return
	}

	country := ui.catalog.Countries.FindByCode(code)
	if country == nil {
		log.Warn().Str("country", code).Msg("Configured country not found")
		return
	}

	state := ui.catalog.Countries.State()
	for i, c := range state.Countries {
		if c.Code == country.Code {
			ui.countryList.Select(i+1, 0)
			break
		}
	}
	ui.selectCountry(country.Code)
}

func (ui *UI) onCountryRowSelected() {
	row, _ := ui.countryList.GetSelection()
	country := ui.catalog.Countries.GetCountry(row - 1)
	if country == nil {
		return
	}
	ui.selectCountry(country.Code)
	ui.app.SetFocus(ui.stationList)
}

func (ui *UI) selectCountry(code string) {
	log.Debug().Str("country", code).Msg("Selecting country")
	go ui.catalog.SelectCountry(ui.ctx, code)
}
