package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps dot-separated TOML field paths to their [FieldDoc] entries.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version, do not edit.",
	},

	// ── Discord ──────────────────────────────────────────────────
	"discord.app_id": {
		Comment: "Application ID for Discord Rich Presence.\nUse your own Discord app to supply custom icons.",
	},
	"discord.reconnect_interval_seconds": {
		Comment: "Seconds between attempts to reach the Discord client.",
	},

	// ── VLC ──────────────────────────────────────────────────────
	"vlc.host": {
		Comment: "VLC web interface address. Enable it under\nTools > Preferences > All > Interface > Main interfaces > Web.",
	},
	"vlc.port": {},
	"vlc.password": {
		Comment: "Password set under Main interfaces > Lua > Lua HTTP.",
	},
	"vlc.timeout_ms": {
		Comment: "Timeout for each status request (milliseconds).",
	},
	"vlc.poll_interval_ms": {
		Comment: "How often VLC is polled (milliseconds).",
	},

	// ── Display ──────────────────────────────────────────────────
	"display.theme": {
		Comment: "Prefix for icon asset keys, e.g. \"dark_\" selects dark_vlc_icon, dark_play_icon.\nEmpty uses the default set.",
		Alternatives: []string{
			`theme = "dark_"`,
		},
	},
	"display.show_cover_art": {
		Comment: "Show album art or a poster as the large image.\nEmbedded art is uploaded to upload_url; otherwise an image search is used.",
	},
	"display.button_label": {
		Comment: "Label of the search button (max 30 characters). Empty hides the button.",
	},
	"display.provider": {
		Comment: "Where the search button leads. Options: \"google\", \"bing\", \"imdb\", \"youtube\", \"custom\"",
		Alternatives: []string{
			`provider = "imdb"`,
			`provider = "youtube"`,
		},
	},
	"display.custom_url": {
		Comment: "Query prefix for provider = \"custom\". The encoded search text is appended.",
		Alternatives: []string{
			`custom_url = "https://duckduckgo.com/?q="`,
		},
	},
	"display.idle_details": {
		Comment: "Top and bottom lines shown while VLC is stopped.",
	},
	"display.idle_state": {},

	// ── Behavior ─────────────────────────────────────────────────
	"behavior.drift_threshold_ms": {
		Comment: "Republish when playback position jumps by more than this (milliseconds).",
	},
	"behavior.heartbeat_ticks": {
		Comment: "Republish after this many unchanged polls to keep the progress bar live.",
	},
	"behavior.hint_process": {
		Comment: "When VLC cannot be reached, check whether a VLC process is running\nand log a hint about the web interface.",
	},

	// ── Cleaner ──────────────────────────────────────────────────
	"cleaner.junk_words": {
		Comment: "Extra words or phrases stripped from titles (case-insensitive).",
		Alternatives: []string{
			`junk_words = ["hdcam", "extended cut"]`,
		},
	},

	// ── Artwork ──────────────────────────────────────────────────
	"artwork.upload_url": {
		Comment: "Anonymous file host used for embedded cover art.",
	},
	"artwork.search_url": {
		Comment: "Image search used when no cover art is embedded.",
	},
	"artwork.thumbnail_url": {},
	"artwork.upload_timeout_ms": {
		Comment: "Timeouts for artwork requests (milliseconds). Results are cached per run.",
	},
	"artwork.search_timeout_ms": {},

	// ── Privacy ──────────────────────────────────────────────────
	"privacy.ignore": {
		Comment: "Filenames to keep private. Matching media shows the idle presence.\nGlob patterns, matched case-insensitively against the filename.",
		Alternatives: []string{
			`ignore = [`,
			`  "*.private.*",`,
			`  "home video*",`,
			`]`,
		},
	},
	"privacy.hide_filename": {
		Comment: "Never show raw filenames. Untagged media is shown as \"a video\" or \"a track\".",
	},

	// ── Log ──────────────────────────────────────────────────────
	"log": {
		Comment: "Logging configuration",
	},
	"log.level": {
		Comment: "Minimum log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"",
		Alternatives: []string{
			`level = "debug"`,
			`level = "warn"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},
	"log.console": {
		Comment: "Also write log lines to stderr.",
	},
}
