// Package config loads, validates and saves the vlccord settings file.
//
// Configuration lives in config.toml inside the data directory. Every field
// is optional; missing values fall back to [DefaultConfig]. Settings are read
// once at startup, and edits take effect after a restart.
package config

//go:generate go run ../../cmd/genconfig

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/vlccord/internal/atomicfile"
	"tools.zach/dev/vlccord/internal/migrate"
	"tools.zach/dev/vlccord/internal/paths"
)

// DefaultDiscordAppID is the Discord application that ships the VLC assets.
const DefaultDiscordAppID = "1465711556418474148"

// Search providers accepted by display.provider.
const (
	ProviderGoogle  = "google"
	ProviderBing    = "bing"
	ProviderIMDb    = "imdb"
	ProviderYouTube = "youtube"
	ProviderCustom  = "custom"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config is the top-level settings document.
type Config struct {
	// Version is the config schema version used for migrations.
	Version int `toml:"version"`
	// Discord holds presence client settings.
	Discord DiscordConfig `toml:"discord"`
	// VLC holds status endpoint settings.
	VLC VLCConfig `toml:"vlc"`
	// Display holds presence appearance settings.
	Display DisplayConfig `toml:"display"`
	// Behavior holds publish cadence settings.
	Behavior BehaviorConfig `toml:"behavior"`
	// Cleaner holds title cleaning settings.
	Cleaner CleanerConfig `toml:"cleaner"`
	// Artwork holds cover art lookup settings.
	Artwork ArtworkConfig `toml:"artwork"`
	// Privacy holds media hiding settings.
	Privacy PrivacyConfig `toml:"privacy"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// DiscordConfig holds Discord connection settings.
type DiscordConfig struct {
	// AppID is the Discord application ID for Rich Presence.
	AppID string `toml:"app_id"`
	// ReconnectIntervalSeconds is the delay between connection attempts.
	ReconnectIntervalSeconds int `toml:"reconnect_interval_seconds"`
}

// VLCConfig holds the VLC web interface endpoint.
type VLCConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	// TimeoutMS bounds each status request.
	TimeoutMS int `toml:"timeout_ms"`
	// PollIntervalMS is the time between ticks.
	PollIntervalMS int `toml:"poll_interval_ms"`
}

// DisplayConfig holds presence appearance settings.
type DisplayConfig struct {
	// Theme is prepended to every icon asset key.
	Theme string `toml:"theme"`
	// ShowCoverArt enables artwork resolution for the large image.
	ShowCoverArt bool `toml:"show_cover_art"`
	// ButtonLabel is the search button text; empty disables the button.
	ButtonLabel string `toml:"button_label"`
	// Provider selects the search button target.
	Provider string `toml:"provider"`
	// CustomURL is the query prefix for the "custom" provider.
	CustomURL string `toml:"custom_url"`
	// IdleDetails is the top line shown while VLC is stopped.
	IdleDetails string `toml:"idle_details"`
	// IdleState is the bottom line shown while VLC is stopped.
	IdleState string `toml:"idle_state"`
}

// BehaviorConfig holds publish cadence settings.
type BehaviorConfig struct {
	// DriftThresholdMS is how far the computed start time may move before
	// a seek is assumed and the presence is republished.
	DriftThresholdMS int `toml:"drift_threshold_ms"`
	// HeartbeatTicks is the number of unchanged ticks between keep-alive publishes.
	HeartbeatTicks int `toml:"heartbeat_ticks"`
	// HintProcess enables the VLC process check when the endpoint is unreachable.
	HintProcess bool `toml:"hint_process"`
}

// CleanerConfig holds title cleaning settings.
type CleanerConfig struct {
	// JunkWords are removed from titles in addition to the built-in list.
	JunkWords []string `toml:"junk_words"`
}

// ArtworkConfig holds cover art lookup endpoints and timeouts.
type ArtworkConfig struct {
	UploadURL       string `toml:"upload_url"`
	SearchURL       string `toml:"search_url"`
	ThumbnailURL    string `toml:"thumbnail_url"`
	UploadTimeoutMS int    `toml:"upload_timeout_ms"`
	SearchTimeoutMS int    `toml:"search_timeout_ms"`
}

// PrivacyConfig holds media hiding settings.
type PrivacyConfig struct {
	// Ignore lists glob patterns matched against the media filename.
	// Matching media is shown as idle.
	Ignore []string `toml:"ignore"`
	// HideFilename replaces file-derived titles with a generic label.
	HideFilename bool `toml:"hide_filename"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
	// Console also writes log records to stderr.
	Console bool `toml:"console"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Discord: DiscordConfig{
			AppID:                    DefaultDiscordAppID,
			ReconnectIntervalSeconds: 5,
		},
		VLC: VLCConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			Password:       "1234",
			TimeoutMS:      2000,
			PollIntervalMS: 1000,
		},
		Display: DisplayConfig{
			Theme:        "",
			ShowCoverArt: true,
			ButtonLabel:  "Search This",
			Provider:     ProviderGoogle,
			IdleDetails:  "Idling",
			IdleState:    "Waiting for media...",
		},
		Behavior: BehaviorConfig{
			DriftThresholdMS: 3000,
			HeartbeatTicks:   30,
			HintProcess:      true,
		},
		Cleaner: CleanerConfig{
			JunkWords: []string{},
		},
		Artwork: ArtworkConfig{
			UploadURL:       "https://0x0.st",
			SearchURL:       "https://www.bing.com/images/search",
			ThumbnailURL:    "https://tse1.mm.bing.net/th",
			UploadTimeoutMS: 8000,
			SearchTimeoutMS: 3000,
		},
		Privacy: PrivacyConfig{
			Ignore: []string{},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ExampleConfig returns the Config rendered into config.default.toml.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil || v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads dataDir/config.toml. When it is absent but a legacy
// config.json exists, the JSON is upgraded and saved as config.toml.
// With neither file present it returns [DefaultConfig].
func Load(dataDir string) (*Config, error) {
	dd := paths.DataDir{Root: dataDir}
	path := dd.Config()

	data, err := os.ReadFile(path)
	version := 0
	switch {
	case err == nil:
		version = PeekVersion(data)
	case errors.Is(err, os.ErrNotExist):
		data, err = os.ReadFile(dd.LegacyConfig())
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read legacy config: %w", err)
		}
		slog.Info("importing legacy config", "from", dd.LegacyConfig(), "to", path)
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	migrated := migrate.Config.NeedsMigration(version)
	if migrated {
		data, _, err = migrate.Config.Run(data, version)
		if err != nil {
			return nil, fmt.Errorf("migrate config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}
	return cfg, nil
}

// Save writes the config to path as TOML, replacing it atomically.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return atomicfile.WriteFunc(path, 0o644, func(w io.Writer) error {
		if err := toml.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		return nil
	})
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// validProviders is the set of accepted display.provider values.
var validProviders = []string{ProviderGoogle, ProviderBing, ProviderIMDb, ProviderYouTube, ProviderCustom}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Discord.AppID == "" {
		return errors.New("discord.app_id must not be empty")
	}
	if c.Discord.ReconnectIntervalSeconds <= 0 {
		return fmt.Errorf("reconnect_interval_seconds must be > 0, got %d", c.Discord.ReconnectIntervalSeconds)
	}

	if c.VLC.Host == "" {
		return errors.New("vlc.host must not be empty")
	}
	if c.VLC.Port <= 0 || c.VLC.Port > 65535 {
		return fmt.Errorf("vlc.port must be between 1 and 65535, got %d", c.VLC.Port)
	}
	if c.VLC.TimeoutMS <= 0 {
		return fmt.Errorf("vlc.timeout_ms must be > 0, got %d", c.VLC.TimeoutMS)
	}
	if c.VLC.PollIntervalMS <= 0 {
		return fmt.Errorf("vlc.poll_interval_ms must be > 0, got %d", c.VLC.PollIntervalMS)
	}

	provider := strings.ToLower(c.Display.Provider)
	if !slices.Contains(validProviders, provider) {
		return fmt.Errorf("invalid display.provider %q: must be google, bing, imdb, youtube, or custom", c.Display.Provider)
	}
	if provider == ProviderCustom && c.Display.CustomURL == "" {
		return errors.New("display.custom_url is required when provider is \"custom\"")
	}

	if c.Behavior.DriftThresholdMS <= 0 {
		return fmt.Errorf("drift_threshold_ms must be > 0, got %d", c.Behavior.DriftThresholdMS)
	}
	if c.Behavior.HeartbeatTicks <= 0 {
		return fmt.Errorf("heartbeat_ticks must be > 0, got %d", c.Behavior.HeartbeatTicks)
	}

	if c.Artwork.UploadTimeoutMS <= 0 {
		return fmt.Errorf("artwork.upload_timeout_ms must be > 0, got %d", c.Artwork.UploadTimeoutMS)
	}
	if c.Artwork.SearchTimeoutMS <= 0 {
		return fmt.Errorf("artwork.search_timeout_ms must be > 0, got %d", c.Artwork.SearchTimeoutMS)
	}

	for _, pattern := range c.Privacy.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid privacy.ignore pattern %q", pattern)
		}
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}
	return nil
}

// ///////////////////////////////////////////////
// Derived Values
// ///////////////////////////////////////////////

// StatusURL returns the VLC status document address.
func (c *Config) StatusURL() string {
	return "http://" + net.JoinHostPort(c.VLC.Host, strconv.Itoa(c.VLC.Port)) + "/requests/status.json"
}

// PollInterval returns the tick interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.VLC.PollIntervalMS) * time.Millisecond
}

// ReconnectInterval returns the delay between Discord connection attempts.
func (c *Config) ReconnectInterval() time.Duration {
	return time.Duration(c.Discord.ReconnectIntervalSeconds) * time.Second
}

// IsIgnored reports whether filename matches any privacy.ignore pattern.
// Patterns are matched case-insensitively against the bare filename.
func (c *Config) IsIgnored(filename string) bool {
	if filename == "" {
		return false
	}
	name := strings.ToLower(filename)
	for _, pattern := range c.Privacy.Ignore {
		matched, err := doublestar.Match(strings.ToLower(pattern), name)
		if err != nil {
			slog.Warn("invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
