// Tests for the config package covering [Load] (defaults, overrides, legacy
// import, malformed input), [Config.Validate], [Config.IsIgnored],
// [Config.Save] round-trips and [ConfigDocs] completeness.

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/vlccord/internal/paths"
)

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		noFile  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "no file returns defaults",
			noFile: true,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
		},
		{
			name:   "defaults from minimal config",
			config: "version = 1\n",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.VLC.Port != 8080 {
					t.Errorf("Port = %d, want 8080", cfg.VLC.Port)
				}
				if cfg.Display.ButtonLabel != "Search This" {
					t.Errorf("ButtonLabel = %q", cfg.Display.ButtonLabel)
				}
				if cfg.Behavior.HeartbeatTicks != 30 || cfg.Behavior.DriftThresholdMS != 3000 {
					t.Errorf("unexpected behavior defaults: %+v", cfg.Behavior)
				}
			},
		},
		{
			name: "user overrides applied",
			config: `
[vlc]
port = 9090
password = "secret"

[display]
theme = "dark_"
provider = "imdb"

[cleaner]
junk_words = ["hdcam"]
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.VLC.Port != 9090 || cfg.VLC.Password != "secret" {
					t.Errorf("vlc = %+v", cfg.VLC)
				}
				if cfg.VLC.Host != "127.0.0.1" {
					t.Errorf("Host = %q, want default", cfg.VLC.Host)
				}
				if cfg.Display.Theme != "dark_" || cfg.Display.Provider != "imdb" {
					t.Errorf("display = %+v", cfg.Display)
				}
				if len(cfg.Cleaner.JunkWords) != 1 || cfg.Cleaner.JunkWords[0] != "hdcam" {
					t.Errorf("JunkWords = %v", cfg.Cleaner.JunkWords)
				}
			},
		},
		{
			name:    "malformed toml",
			config:  "[vlc\nport = ",
			wantErr: true,
		},
		{
			name:    "invalid value rejected",
			config:  "[display]\nprovider = \"altavista\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if !tt.noFile {
				if err := os.WriteFile(filepath.Join(dir, paths.ConfigFile), []byte(tt.config), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			cfg, err := Load(dir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_LegacyImport(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
  "CLIENT_ID": "42",
  "VLC_PASSWORD": ":hunter2",
  "VLC_PORT": "8081",
  "POLLING_INTERVAL": 1500,
  "SHOW_COVER_ART": false,
  "THEME": "neon_",
  "PROVIDER": "YouTube",
  "BUTTON_LABEL": "Find it",
  "CUSTOM_JUNK_WORDS": ["hdcam", "  "]
}`
	dd := paths.DataDir{Root: dir}
	if err := os.WriteFile(dd.LegacyConfig(), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Discord.AppID != "42" {
		t.Errorf("AppID = %q", cfg.Discord.AppID)
	}
	if cfg.VLC.Password != "hunter2" {
		t.Errorf("Password = %q, want leading colon stripped", cfg.VLC.Password)
	}
	if cfg.VLC.Port != 8081 || cfg.VLC.PollIntervalMS != 1500 {
		t.Errorf("vlc = %+v", cfg.VLC)
	}
	if cfg.Display.ShowCoverArt {
		t.Error("ShowCoverArt should be false")
	}
	if cfg.Display.Theme != "neon_" || cfg.Display.Provider != "youtube" || cfg.Display.ButtonLabel != "Find it" {
		t.Errorf("display = %+v", cfg.Display)
	}
	if !reflect.DeepEqual(cfg.Cleaner.JunkWords, []string{"hdcam"}) {
		t.Errorf("JunkWords = %v", cfg.Cleaner.JunkWords)
	}

	if _, err := os.Stat(dd.Config()); err != nil {
		t.Fatalf("expected imported config.toml: %v", err)
	}
	if _, err := os.Stat(dd.LegacyConfig()); err != nil {
		t.Fatalf("legacy config should be left in place: %v", err)
	}

	again, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(cfg, again) {
		t.Errorf("reload differs:\n got %+v\nwant %+v", again, cfg)
	}
}

func TestLoad_LegacyEmptyValuesKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"CLIENT_ID": "", "VLC_PASSWORD": "", "PROVIDER": "", "BUTTON_LABEL": ""}`
	dd := paths.DataDir{Root: dir}
	if err := os.WriteFile(dd.LegacyConfig(), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if cfg.VLC.Password != def.VLC.Password {
		t.Errorf("Password = %q, want default %q", cfg.VLC.Password, def.VLC.Password)
	}
	if cfg.Display.ButtonLabel != def.Display.ButtonLabel {
		t.Errorf("ButtonLabel = %q, want default %q", cfg.Display.ButtonLabel, def.Display.ButtonLabel)
	}
	if cfg.Discord.AppID != def.Discord.AppID || cfg.Display.Provider != def.Display.Provider {
		t.Errorf("app id/provider = %q/%q", cfg.Discord.AppID, cfg.Display.Provider)
	}

	// A bare "user:" prefix leaves no password either.
	if err := os.Remove(dd.Config()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dd.LegacyConfig(), []byte(`{"VLC_PASSWORD": "admin:"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.VLC.Password != def.VLC.Password {
		t.Errorf("Password = %q, want default %q", cfg.VLC.Password, def.VLC.Password)
	}
}

func TestLoad_LegacyInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, paths.LegacyConfigFile), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid legacy JSON")
	}
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

func TestPeekVersion(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"explicit", "version = 3\n", 3},
		{"missing", "[vlc]\nport = 1\n", 1},
		{"zero", "version = 0\n", 1},
		{"garbage", "[[[", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeekVersion([]byte(tt.data)); got != tt.want {
				t.Errorf("PeekVersion = %d, want %d", got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Validate
// ///////////////////////////////////////////////

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults valid", func(c *Config) {}, ""},
		{"empty app id", func(c *Config) { c.Discord.AppID = "" }, "app_id"},
		{"zero reconnect", func(c *Config) { c.Discord.ReconnectIntervalSeconds = 0 }, "reconnect_interval_seconds"},
		{"empty host", func(c *Config) { c.VLC.Host = "" }, "vlc.host"},
		{"port out of range", func(c *Config) { c.VLC.Port = 70000 }, "vlc.port"},
		{"zero timeout", func(c *Config) { c.VLC.TimeoutMS = 0 }, "timeout_ms"},
		{"negative poll", func(c *Config) { c.VLC.PollIntervalMS = -1 }, "poll_interval_ms"},
		{"unknown provider", func(c *Config) { c.Display.Provider = "altavista" }, "provider"},
		{"provider case-insensitive", func(c *Config) { c.Display.Provider = "IMDb" }, ""},
		{"custom without url", func(c *Config) { c.Display.Provider = "custom" }, "custom_url"},
		{"custom with url", func(c *Config) {
			c.Display.Provider = "custom"
			c.Display.CustomURL = "https://example.com/?q="
		}, ""},
		{"zero drift", func(c *Config) { c.Behavior.DriftThresholdMS = 0 }, "drift_threshold_ms"},
		{"zero heartbeat", func(c *Config) { c.Behavior.HeartbeatTicks = 0 }, "heartbeat_ticks"},
		{"zero upload timeout", func(c *Config) { c.Artwork.UploadTimeoutMS = 0 }, "upload_timeout_ms"},
		{"zero search timeout", func(c *Config) { c.Artwork.SearchTimeoutMS = 0 }, "search_timeout_ms"},
		{"bad glob", func(c *Config) { c.Privacy.Ignore = []string{"[abc"} }, "privacy.ignore"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"upper log level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
		{"zero log size", func(c *Config) { c.Log.MaxSizeMB = 0 }, "max_size_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Derived values
// ///////////////////////////////////////////////

func TestConfig_Derived(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.StatusURL(); got != "http://127.0.0.1:8080/requests/status.json" {
		t.Errorf("StatusURL = %q", got)
	}
	cfg.VLC.Host = "::1"
	if got := cfg.StatusURL(); got != "http://[::1]:8080/requests/status.json" {
		t.Errorf("IPv6 StatusURL = %q", got)
	}
	cfg.VLC.Host = "localhost"
	cfg.VLC.Port = 9090
	if got := cfg.StatusURL(); got != "http://localhost:9090/requests/status.json" {
		t.Errorf("StatusURL = %q", got)
	}
	if got := cfg.PollInterval(); got != time.Second {
		t.Errorf("PollInterval = %v", got)
	}
	if got := cfg.ReconnectInterval(); got != 5*time.Second {
		t.Errorf("ReconnectInterval = %v", got)
	}
}

func TestConfig_IsIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Privacy.Ignore = []string{"*.private.*", "home video*"}

	tests := []struct {
		filename string
		want     bool
	}{
		{"Holiday.private.mp4", true},
		{"HOME VIDEO 2019.mkv", true},
		{"Movie.Name.2021.mkv", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := cfg.IsIgnored(tt.filename); got != tt.want {
				t.Errorf("IsIgnored(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Save
// ///////////////////////////////////////////////

func TestConfig_Save_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", paths.ConfigFile)

	cfg := DefaultConfig()
	cfg.VLC.Password = "pa\"ss"
	cfg.Cleaner.JunkWords = []string{"a", "b c"}
	cfg.Privacy.Ignore = []string{"*.private.*"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, got) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

// ///////////////////////////////////////////////
// ConfigDocs completeness
// ///////////////////////////////////////////////

func TestExampleConfig(t *testing.T) {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(ExampleConfig()); err != nil {
		t.Fatalf("failed to marshal ExampleConfig: %v", err)
	}
	for _, section := range []string{"[discord]", "[vlc]", "[display]", "[behavior]", "[cleaner]", "[artwork]", "[privacy]", "[log]"} {
		if !strings.Contains(buf.String(), section) {
			t.Errorf("marshaled example missing %s", section)
		}
	}
}

func TestConfigDocsComplete(t *testing.T) {
	for _, field := range collectTOMLFields(reflect.TypeOf(Config{}), "") {
		if _, ok := ConfigDocs[field]; !ok {
			t.Errorf("ConfigDocs missing entry for field %q", field)
		}
	}
}

// collectTOMLFields returns the dot-separated TOML key path of every tagged
// leaf field in typ.
func collectTOMLFields(typ reflect.Type, prefix string) []string {
	var fields []string
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("toml")
		if tag == "" || tag == "-" {
			continue
		}
		if idx := strings.Index(tag, ","); idx != -1 {
			tag = tag[:idx]
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			fields = append(fields, collectTOMLFields(f.Type, path)...)
		} else {
			fields = append(fields, path)
		}
	}
	return fields
}
