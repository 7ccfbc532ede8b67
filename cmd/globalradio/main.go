package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/glebovdev/globalradio-cli/internal/api"
	"github.com/glebovdev/globalradio-cli/internal/config"
	"github.com/glebovdev/globalradio-cli/internal/player"
	"github.com/glebovdev/globalradio-cli/internal/service"
	"github.com/glebovdev/globalradio-cli/internal/ui"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	versionFlag    = flag.Bool("version", false, "Show version information")
	debugFlag      = flag.Bool("debug", false, "Enable debug logging")
	backendFlag    = flag.String("backend", "", "Backend origin (overrides config and $"+config.BackendEnvVar+")")
	countryFlag    = flag.String("country", "", "Country code to select on start, e.g. DE")
	initConfigFlag = flag.Bool("init-config", false, "Write the current settings to the config file and exit")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n\n", config.AppName, config.AppVersion, config.AppDescription)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()

		configPath, err := config.GetConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nConfig file: %s\n", configPath)
			} else {
				fmt.Fprintf(os.Stderr, "\nNo config file. Create one with -init-config.\n")
			}
		}
	}
}

func setupLogging(debug bool) {
	if !debug {
		// Avoid TUI corruption by only logging errors to /dev/null
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0644)
		if err == nil {
			log.Logger = log.Output(logFile)
		}
		return
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logPath, err := config.GetLogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not get log path: %v\n", err)
		logPath = filepath.Join(os.TempDir(), config.DebugLogName)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log dir: %v\n", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
		logFile = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
	fmt.Printf("Debug log: %s\n", logPath)
	log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		fmt.Println(config.AppDescription)
		os.Exit(0)
	}

	setupLogging(*debugFlag)

	// A .env file in the working directory may set the backend origin.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		log.Warn().Err(err).Msg("Config load failed")
	}
	if origin := strings.TrimSpace(*backendFlag); origin != "" {
		cfg.Backend = origin
	}
	if code := strings.TrimSpace(*countryFlag); code != "" {
		cfg.Country = strings.ToUpper(code)
	}
	cfg.StationLimit = config.ClampStationLimit(cfg.StationLimit)

	if *initConfigFlag {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		configPath, _ := config.GetConfigPath()
		fmt.Printf("Config written to %s\n", configPath)
		os.Exit(0)
	}

	if configPath, err := config.GetConfigPath(); err == nil {
		log.Debug().Msgf("Config: %s", configPath)
	}
	log.Debug().Str("backend", cfg.Backend).Int("station_limit", cfg.StationLimit).Msg("Settings resolved")

	client := api.NewRadioClient(cfg.Backend)
	catalog := service.NewCatalog(client, cfg.StationLimit)
	controller := player.NewController(player.NewStreamOutput(), cfg.Volume)
	radioUI := ui.NewUI(cfg, catalog, controller, client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	uiDone := make(chan error, 1)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, cleaning up...")
		radioUI.Shutdown()
	}()

	log.Info().Msg("Starting UI...")

	// Run UI in a goroutine so we can handle signals properly
	go func() {
		uiDone <- radioUI.Run()
	}()

	if err := <-uiDone; err != nil {
		log.Error().Err(err).Msg("Error running UI")
		controller.Stop()
		os.Exit(1)
	}

	controller.Stop()
	log.Info().Msgf("%s stopped", config.AppName)
}
