package ui

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/globalradio-cli/internal/config"
	"github.com/glebovdev/globalradio-cli/internal/player"
	"github.com/glebovdev/globalradio-cli/internal/service"
	"github.com/glebovdev/globalradio-cli/internal/station"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	VolumeStep         = 5
	HeaderHeight       = 3
	FooterHeightWide   = 3 // Wide: 1 row with padding (top + text + bottom)
	FooterHeightNarrow = 6 // Narrow: 2 rows × 3 lines each
	PlayerPanelHeight  = 12
	CountryListWidth   = 34
	FooterBreakpoint   = 130 // Width threshold for responsive footer
	AnimationInterval  = 100 * time.Millisecond
	ValidateTimeout    = 15 * time.Second
)

// PauseIcon uses platform-specific character (Windows renders ⏸ as emoji)
var PauseIcon = func() string {
	if runtime.GOOS == "windows" {
		return "❚❚"
	}
	return "⏸"
}()

// StationValidator checks a station's stream on the backend.
type StationValidator interface {
	ValidateStation(ctx context.Context, stationID string) (*station.Validation, error)
}

type UI struct {
	app       *tview.Application
	catalog   *service.Catalog
	player    *player.Controller
	validator StationValidator
	config    *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	countryList      *tview.Table
	stationList      *tview.Table
	playerPanel      *tview.Flex
	currentTrackView *tview.TextView
	volumeView       *tview.Flex
	helpPanel        *tview.Box
	contentLayout    *tview.Flex
	mainLayout       *tview.Flex
	loadingScreen    *tview.Flex
	loadingText      *tview.TextView
	pages            *tview.Pages
	statusRenderer   *StatusRenderer
	playingSpinner   *PlayingSpinner
	stopUpdates      chan struct{}
	stopOnce         sync.Once
	lastFooterWidth  int

	mu              sync.Mutex
	animationFrame  int
	mainShown       bool
	preselectDone   bool
	shownPlayError  string
	lastPlayerState player.PlaybackState

	colors struct {
		background       tcell.Color
		foreground       tcell.Color
		borders          tcell.Color
		highlight        tcell.Color
		mutedVolume      tcell.Color
		errorText        tcell.Color
		headerBackground tcell.Color
		listHeader       tcell.Color
		helpBackground   tcell.Color
		helpForeground   tcell.Color
		helpHotkey       tcell.Color
		modalBackground  tcell.Color
	}
}

func NewUI(cfg *config.Config, catalog *service.Catalog, ctrl *player.Controller, validator StationValidator) *UI {
	ctx, cancel := context.WithCancel(context.Background())

	ui := &UI{
		app:            tview.NewApplication(),
		catalog:        catalog,
		player:         ctrl,
		validator:      validator,
		config:         cfg,
		ctx:            ctx,
		cancel:         cancel,
		stopUpdates:    make(chan struct{}),
		playingSpinner: NewPlayingSpinner(),
	}

	ui.colors.background = config.GetColor(cfg.Theme.Background)
	ui.colors.foreground = config.GetColor(cfg.Theme.Foreground)
	ui.colors.borders = config.GetColor(cfg.Theme.Borders)
	ui.colors.highlight = config.GetColor(cfg.Theme.Highlight)
	ui.colors.mutedVolume = config.GetColor(cfg.Theme.MutedVolume)
	ui.colors.errorText = config.GetColor(cfg.Theme.Error)
	ui.colors.headerBackground = config.GetColor(cfg.Theme.HeaderBackground)
	ui.colors.listHeader = config.GetColor(cfg.Theme.ListHeader)
	ui.colors.helpBackground = config.GetColor(cfg.Theme.HelpBackground)
	ui.colors.helpForeground = config.GetColor(cfg.Theme.HelpForeground)
	ui.colors.helpHotkey = config.GetColor(cfg.Theme.HelpHotkey)
	ui.colors.modalBackground = config.GetColor(cfg.Theme.ModalBackground)

	ui.statusRenderer = NewStatusRenderer()
	ui.statusRenderer.SetPrimaryColor(ui.colors.highlight.String())

	ui.subscribe()

	return ui
}

// subscribe connects state changes to redraws. Listeners run on whichever
// goroutine changed the state, so every redraw is queued onto the UI loop.
func (ui *UI) subscribe() {
	ui.catalog.Countries.OnChange(func(service.CountryState) {
		ui.queueDraw(ui.refreshCountries)
	})
	ui.catalog.Stations.OnChange(func(service.StationState) {
		ui.queueDraw(ui.refreshStations)
	})
	ui.catalog.Selection.OnCountryChange(func(change service.CountryChange) {
		// The player follows the selected station, which a country change clears.
		ui.player.SetStation(nil)
		if change.Current != nil {
			log.Debug().Str("country", change.Current.Code).Msg("Country selected")
		}
		ui.queueDraw(ui.refreshCountries)
	})
	ui.player.OnChange(func(player.PlaybackState) {
		ui.queueDraw(ui.refreshPlayer)
	})
}

// queueDraw schedules fn on the UI goroutine. The send happens on its own
// goroutine so callers on the UI goroutine never block on the update queue.
func (ui *UI) queueDraw(fn func()) {
	go ui.app.QueueUpdateDraw(fn)
}

func (ui *UI) stop() {
	ui.stopOnce.Do(func() {
		ui.cancel()
		close(ui.stopUpdates)
	})
	ui.player.Stop()
	ui.app.Stop()
}

// Shutdown stops the UI gracefully from external callers (e.g., signal handlers).
func (ui *UI) Shutdown() {
	ui.app.QueueUpdateDraw(func() {
		ui.stop()
	})
}

func (ui *UI) Run() error {
	ui.setupLoadingScreen()
	ui.setupUI()
	ui.app.SetRoot(ui.loadingScreen, true)
	ui.configureScreen()

	go ui.catalog.Start(ui.ctx)
	go ui.animate()

	return ui.app.Run()
}

func (ui *UI) configureScreen() {
	bgStyle := tcell.StyleDefault.Background(ui.colors.background)
	ui.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		screen.SetStyle(bgStyle)
		screen.Clear()
		return false
	})

	var titleSet sync.Once
	ui.app.SetAfterDrawFunc(func(screen tcell.Screen) {
		titleSet.Do(func() { screen.SetTitle(config.AppName) })
	})
}

func (ui *UI) setupLoadingScreen() {
	ui.loadingText = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("Loading countries...")
	ui.loadingText.SetTextColor(ui.colors.foreground).
		SetBackgroundColor(ui.colors.background)

	hint := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(ui.config.Backend)
	hint.SetTextColor(ui.colors.borders).
		SetBackgroundColor(ui.colors.background)

	content := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.loadingText, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(hint, 1, 0, false)
	content.SetBackgroundColor(ui.colors.background)

	ui.loadingScreen = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(content, 3, 0, false).
		AddItem(nil, 0, 1, false)

	ui.loadingScreen.SetBackgroundColor(ui.colors.background)
}

func (ui *UI) setupUI() {
	header := ui.createHeader()

	ui.playerPanel = tview.NewFlex().SetDirection(tview.FlexRow)
	ui.playerPanel.SetBackgroundColor(ui.colors.background)

	ui.countryList = ui.createCountryTable()
	ui.stationList = ui.createStationTable()
	ui.helpPanel = ui.createFooter()

	lists := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(ui.countryList, CountryListWidth, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(ui.stationList, 0, 1, false)
	lists.SetBackgroundColor(ui.colors.background)

	ui.contentLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, HeaderHeight, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.playerPanel, PlayerPanelHeight, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(lists, 0, 1, true).
		AddItem(ui.helpPanel, FooterHeightWide, 0, false)
	ui.contentLayout.SetBackgroundColor(ui.colors.background)

	wrapper := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 3, 0, false).
		AddItem(ui.contentLayout, 0, 1, true).
		AddItem(nil, 3, 0, false)
	wrapper.SetBackgroundColor(ui.colors.background)

	ui.mainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 1, 0, false).
		AddItem(wrapper, 0, 1, true).
		AddItem(nil, 1, 0, false)
	ui.mainLayout.SetBackgroundColor(ui.colors.background)

	ui.pages = tview.NewPages().
		AddPage("main", ui.mainLayout, true, true)
	ui.pages.SetBackgroundColor(ui.colors.background)

	ui.refreshPlayer()

	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if !ui.isMainShown() || ui.pages.HasPage("modal") || ui.pages.HasPage("error-modal") {
			return event
		}
		return ui.globalInputHandler(event)
	})
}

func (ui *UI) createHeader() tview.Primitive {
	titleView := tview.NewTextView()
	titleView.SetText(" " + config.AppName)
	titleView.SetTextAlign(tview.AlignLeft)
	titleView.SetTextColor(ui.colors.foreground)
	titleView.SetBackgroundColor(ui.colors.headerBackground)

	versionView := tview.NewTextView()
	versionView.SetText("v" + config.AppVersion + " ")
	versionView.SetTextAlign(tview.AlignRight)
	versionView.SetTextColor(ui.colors.foreground)
	versionView.SetBackgroundColor(ui.colors.headerBackground)

	textFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(titleView, 0, 1, false).
		AddItem(versionView, 10, 0, false)
	textFlex.SetBackgroundColor(ui.colors.headerBackground)

	padded := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false).
		AddItem(textFlex, 0, 1, false).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false)
	padded.SetBackgroundColor(ui.colors.headerBackground)

	headerFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false).
		AddItem(padded, 1, 0, false).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false)
	headerFlex.SetBackgroundColor(ui.colors.headerBackground)

	return headerFlex
}

func (ui *UI) isMainShown() bool {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.mainShown
}

func (ui *UI) showMain() {
	ui.mu.Lock()
	shown := ui.mainShown
	ui.mainShown = true
	ui.mu.Unlock()

	if shown {
		return
	}
	ui.app.SetRoot(ui.pages, true).EnableMouse(true)
	ui.app.SetFocus(ui.countryList)
}

// PlayingSpinner animates the name of the station that is live.
type PlayingSpinner struct {
	Frames []string
	FPS    time.Duration
}

func NewPlayingSpinner() *PlayingSpinner {
	return &PlayingSpinner{
		Frames: []string{"⣾ ", "⣽ ", "⣻ ", "⢿ ", "⡿ ", "⣟ ", "⣯ ", "⣷ "},
		FPS:    time.Second / 10,
	}
}

func (ui *UI) getPlayingIndicator() string {
	ui.mu.Lock()
	frame := ui.animationFrame
	ui.mu.Unlock()
	return ui.playingSpinner.Frames[frame%len(ui.playingSpinner.Frames)]
}

func (ui *UI) animate() {
	ticker := time.NewTicker(AnimationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ui.stopUpdates:
			return
		case <-ticker.C:
			s := ui.player.State()
			if !s.IsPlaying && !s.IsLoading {
				continue
			}

			ui.mu.Lock()
			ui.animationFrame++
			ui.mu.Unlock()

			ui.app.QueueUpdateDraw(func() {
				ui.statusRenderer.AdvanceAnimation()
				ui.updatePlayingIndicator()
				ui.updateTrackInfo()
			})
		}
	}
}

func (ui *UI) focusNext() {
	if ui.app.GetFocus() == ui.countryList {
		ui.app.SetFocus(ui.stationList)
		return
	}
	ui.app.SetFocus(ui.countryList)
}

func (ui *UI) globalInputHandler(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q', 'Q':
			ui.stop()
			return nil
		case ' ':
			ui.togglePlay()
			return nil
		case 'r', 'R':
			ui.reload()
			return nil
		case 'v', 'V':
			ui.validateStation()
			return nil
		case 'c', 'C':
			ui.clearStation()
			return nil
		case '+', '=':
			ui.adjustVolume(VolumeStep)
			return nil
		case '-', '_':
			ui.adjustVolume(-VolumeStep)
			return nil
		case 'm', 'M':
			ui.toggleMute()
			return nil
		case '?':
			ui.showHelpModal()
			return nil
		case 'a', 'A':
			ui.showAboutModal()
			return nil
		}
	case tcell.KeyTab, tcell.KeyBacktab:
		ui.focusNext()
		return nil
	case tcell.KeyEnter:
		if ui.app.GetFocus() == ui.countryList {
			ui.onCountryRowSelected()
		} else {
			ui.onStationRowSelected()
		}
		return nil
	case tcell.KeyEscape:
		ui.stop()
		return nil
	case tcell.KeyRight:
		// Right arrow - volume up (hidden shortcut)
		ui.adjustVolume(VolumeStep)
		return nil
	case tcell.KeyLeft:
		// Left arrow - volume down (hidden shortcut)
		ui.adjustVolume(-VolumeStep)
		return nil
	}
	return event
}

// reload refetches whatever failed: the country list when it has an error,
// otherwise the selected country's stations.
func (ui *UI) reload() {
	if ui.catalog.Countries.State().Err != "" {
		go ui.catalog.Countries.Refetch(ui.ctx)
		return
	}
	if ui.catalog.Selection.CountryCode() == "" {
		return
	}
	go ui.catalog.ReloadStations(ui.ctx)
}
