package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"
)

const (
	AppName         = "Global Radio CLI"
	AppTagline      = "Tune into the world from your terminal"
	AppDescription  = "A terminal player for internet radio stations, browsed by country"
	AppAuthor       = "Ilya Glebov"
	AppAuthorURL    = "https://ilyaglebov.dev"
	AppProjectURL   = "https://github.com/glebovdev/globalradio-cli"
	AppProjectShort = "github.com/glebovdev/globalradio-cli"

	ConfigDir      = ".config/globalradio"
	ConfigFileName = "config.yml"
	CacheDirName   = "globalradio"
	DebugLogName   = "debug.log"

	// BackendEnvVar overrides the backend origin from the config file.
	BackendEnvVar  = "RADIO_BACKEND_URL"
	DefaultBackend = "http://localhost:8000"

	DefaultVolume = 70
	MinVolume     = 0
	MaxVolume     = 100

	DefaultStationLimit = 50
	MaxStationLimit     = 100
)

// ClampVolume ensures volume is within the valid range [0, 100].
func ClampVolume(volume int) int {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// ClampStationLimit keeps the per-country station limit in the range the
// backend accepts. Non-positive values fall back to the default.
func ClampStationLimit(limit int) int {
	if limit < 1 {
		return DefaultStationLimit
	}
	if limit > MaxStationLimit {
		return MaxStationLimit
	}
	return limit
}

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/glebovdev/globalradio-cli/internal/config.AppVersion=1.0.0"
var AppVersion = "dev"

type Theme struct {
	Background       string `yaml:"background"`
	Foreground       string `yaml:"foreground"`
	Borders          string `yaml:"borders"`
	Highlight        string `yaml:"highlight"`
	MutedVolume      string `yaml:"muted_volume"`
	Error            string `yaml:"error"`
	HeaderBackground string `yaml:"header_background"`
	ListHeader       string `yaml:"list_header"`
	HelpBackground   string `yaml:"help_background"`
	HelpForeground   string `yaml:"help_foreground"`
	HelpHotkey       string `yaml:"help_hotkey"`
	ModalBackground  string `yaml:"modal_background"`
}

type Config struct {
	// Backend is the origin of the catalog backend; "/api" is appended by the client.
	Backend      string `yaml:"backend"`
	Volume       int    `yaml:"volume"`
	StationLimit int    `yaml:"station_limit"`
	// Country is an optional country code selected once the country list loads.
	Country string `yaml:"country"`
	Theme   Theme  `yaml:"theme"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	return configPath, nil
}

// GetLogPath returns where the debug log is written.
func GetLogPath() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	return filepath.Join(userCacheDir, CacheDirName, DebugLogName), nil
}

// Load reads the config file, falling back to defaults when it is missing or
// unreadable, and then applies the environment override for the backend.
func Load() (*Config, error) {
	cfg, err := loadFile()
	cfg.ApplyEnv()
	return cfg, err
}

func loadFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Volume = ClampVolume(cfg.Volume)
	cfg.StationLimit = ClampStationLimit(cfg.StationLimit)
	if strings.TrimSpace(cfg.Backend) == "" {
		cfg.Backend = DefaultBackend
	}

	return cfg, nil
}

// ApplyEnv replaces the backend origin with $RADIO_BACKEND_URL when set.
func (c *Config) ApplyEnv() {
	if origin := strings.TrimSpace(os.Getenv(BackendEnvVar)); origin != "" {
		c.Backend = origin
	}
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Backend:      DefaultBackend,
		Volume:       DefaultVolume,
		StationLimit: DefaultStationLimit,
		Country:      "",
		Theme: Theme{
			Background:       "#10131c",
			Foreground:       "#b4bcd8",
			Borders:          "#3b4261",
			Highlight:        "#7aa2f7",
			MutedVolume:      "#f7768e",
			Error:            "#f7768e",
			HeaderBackground: "#24283b",
			ListHeader:       "#c0caf5",
			HelpBackground:   "#1f2335",
			HelpForeground:   "#9aa5ce",
			HelpHotkey:       "#bb9af7",
			ModalBackground:  "#1a1b26",
		},
	}
}

func GetColor(colorStr string) tcell.Color {
	if colorStr == "" || colorStr == "default" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(colorStr)
}
