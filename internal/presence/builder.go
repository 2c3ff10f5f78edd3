// Package presence turns VLC status snapshots into Discord activities and
// decides when to publish them.
package presence

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"tools.zach/dev/vlccord/internal/artwork"
	"tools.zach/dev/vlccord/internal/classify"
	"tools.zach/dev/vlccord/internal/clean"
	"tools.zach/dev/vlccord/internal/config"
	"tools.zach/dev/vlccord/internal/discord"
	"tools.zach/dev/vlccord/internal/vlc"
)

// Separator joins a line with its quality or language suffix.
const Separator = " ● "

const (
	// maxButtonLabel is Discord's button label limit.
	maxButtonLabel = 30
	// maxLineLen is Discord's limit for details and state.
	maxLineLen = 128
	// defaultQuery is searched when the media has nothing better.
	defaultQuery = "VLC Media Player"
)

// Asset keys, prefixed with the configured theme.
const (
	assetVLC   = "vlc_icon"
	assetPlay  = "play_icon"
	assetPause = "pause_icon"
	assetStop  = "stop_icon"
)

// providerBases maps button providers to their query URL prefix.
var providerBases = map[string]string{
	config.ProviderGoogle:  "https://www.google.com/search?q=",
	config.ProviderBing:    "https://www.bing.com/search?q=",
	config.ProviderIMDb:    "https://www.imdb.com/find/?q=",
	config.ProviderYouTube: "https://www.youtube.com/results?search_query=",
}

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// BuilderOptions configures a [Builder].
type BuilderOptions struct {
	Theme        string
	ButtonLabel  string
	Provider     string
	CustomURL    string
	IdleDetails  string
	IdleState    string
	HideFilename bool
	JunkWords    []string
}

// BuilderOptionsFromConfig extracts the builder settings from cfg.
func BuilderOptionsFromConfig(cfg *config.Config) BuilderOptions {
	return BuilderOptions{
		Theme:        cfg.Display.Theme,
		ButtonLabel:  cfg.Display.ButtonLabel,
		Provider:     strings.ToLower(cfg.Display.Provider),
		CustomURL:    cfg.Display.CustomURL,
		IdleDetails:  cfg.Display.IdleDetails,
		IdleState:    cfg.Display.IdleState,
		HideFilename: cfg.Privacy.HideFilename,
		JunkWords:    cfg.Cleaner.JunkWords,
	}
}

// Description is the display text derived from one snapshot, before
// artwork and playback state are applied.
type Description struct {
	Class classify.Result
	// Details and State are the top and bottom lines.
	Details string
	State   string
	// LargeText is the large image caption.
	LargeText string
	// Query feeds the search button.
	Query string
	// Artwork is the request handed to the artwork resolver.
	Artwork artwork.Request
}

// Builder renders descriptions and activities.
type Builder struct {
	opts BuilderOptions
}

// NewBuilder returns a Builder using opts.
func NewBuilder(opts BuilderOptions) *Builder {
	return &Builder{opts: opts}
}

// DefaultImage is the large image used when no artwork is found.
func (b *Builder) DefaultImage() string {
	return b.opts.Theme + assetVLC
}

// ///////////////////////////////////////////////
// Describe
// ///////////////////////////////////////////////

// Describe cleans and classifies snap and lays out its text.
func (b *Builder) Describe(snap *vlc.Snapshot) Description {
	class := classify.Classify(snap)
	m := snap.Meta

	raw := mediaName(m.Filename, m.InfoTitle)
	filename := orRaw(clean.Clean(raw, b.opts.JunkWords), raw)
	hidden := b.opts.HideFilename && m.Title == ""
	if hidden {
		filename = "a video"
		if class.Activity == classify.Listening {
			filename = "a track"
		}
	}
	title := orRaw(clean.Clean(m.Title, b.opts.JunkWords), filename)
	artist := orRaw(clean.Clean(m.Artist, b.opts.JunkWords), m.Artist)
	date := m.Date
	if date == "" && !hidden {
		date = clean.ExtractYear(raw)
	}

	d := Description{Class: class}
	audio := class.LanguageTag()

	switch {
	case class.Activity == classify.Listening:
		d.Details = title
		d.Query = strings.TrimSpace(title + " " + artist)
		switch {
		case artist != "":
			d.State = "by " + artist
		case m.Album != "":
			d.State = m.Album
		default:
			d.State = "Music"
		}
		d.LargeText = orRaw(m.Album, "Listening to VLC")
		d.Artwork = artwork.Request{Activity: class.Activity, Title: title, Secondary: artist}

	case m.ShowName != "" && m.Episode != "":
		show := orRaw(clean.Clean(m.ShowName, b.opts.JunkWords), m.ShowName)
		episode := "S" + m.Season + "E" + m.Episode
		d.Details = join(show, class.Quality)
		d.State = join(episode, audio)
		d.Query = show + " " + episode
		d.LargeText = "Watching TV Show"
		d.Artwork = artwork.Request{Activity: class.Activity, Title: show, Secondary: date}

	case m.Title != "":
		d.Details = join(title, class.Quality)
		d.State = join("Video", audio)
		d.Query = title
		d.LargeText = "Watching Movie"
		d.Artwork = artwork.Request{Activity: class.Activity, Title: title, Secondary: date}

	default:
		d.Details = join(filename, class.Quality)
		d.State = join("Video", audio)
		d.Query = filename
		d.LargeText = "Watching Video"
		d.Artwork = artwork.Request{Activity: class.Activity, Title: filename, Secondary: date}
	}

	if hidden {
		d.Query = ""
		d.Artwork.Title = ""
	}
	d.Artwork.ArtworkURL = m.ArtworkURL
	return d
}

// mediaName returns the display name of the file being played, dropping
// any directory part of a file:// reference. infoTitle stands in when VLC
// reports no filename.
func mediaName(filename, infoTitle string) string {
	if filename == "" {
		return orRaw(infoTitle, "Unknown")
	}
	if rest, ok := strings.CutPrefix(filename, "file:///"); ok {
		if i := strings.LastIndexAny(rest, `/\`); i >= 0 {
			rest = rest[i+1:]
		}
		if rest != "" {
			return rest
		}
	}
	return filename
}

func orRaw(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// join appends suffix to s with [Separator] when suffix is set.
func join(s, suffix string) string {
	if suffix == "" {
		return s
	}
	return s + Separator + suffix
}

// ///////////////////////////////////////////////
// Activities
// ///////////////////////////////////////////////

// Activity renders d as a Discord activity. start and end are the segment
// bounds in Unix milliseconds; they are attached only while playing media
// of known length.
func (b *Builder) Activity(d Description, image string, playing bool, start, end int64) *discord.Activity {
	label := "Paused"
	icon := assetPause
	if playing {
		label = "Playing"
		icon = assetPlay
	}

	a := &discord.Activity{
		Type:    activityType(d.Class.Activity),
		Details: limit(d.Details, maxLineLen),
		State:   limit(d.State+" ("+label+")", maxLineLen),
		Assets: &discord.Assets{
			LargeImage: image,
			LargeText:  limit(d.LargeText, maxLineLen),
			SmallImage: b.opts.Theme + icon,
			SmallText:  label,
		},
	}
	if playing && end > start {
		a.Timestamps = &discord.Timestamps{Start: start, End: end}
	}
	if b.opts.ButtonLabel != "" {
		a.Buttons = []discord.Button{{
			Label: limit(b.opts.ButtonLabel, maxButtonLabel),
			URL:   b.ButtonURL(d.Query),
		}}
	}
	return a
}

// Idle renders the presence shown while VLC is stopped.
func (b *Builder) Idle() *discord.Activity {
	return &discord.Activity{
		Details: limit(b.opts.IdleDetails, maxLineLen),
		State:   limit(b.opts.IdleState, maxLineLen),
		Assets: &discord.Assets{
			LargeImage: b.opts.Theme + assetVLC,
			LargeText:  "VLC Media Player",
			SmallImage: b.opts.Theme + assetStop,
			SmallText:  "Stopped",
		},
	}
}

// ButtonURL builds the search link for query with the configured provider.
func (b *Builder) ButtonURL(query string) string {
	if query == "" {
		query = defaultQuery
	}
	base, ok := providerBases[b.opts.Provider]
	if b.opts.Provider == config.ProviderCustom && b.opts.CustomURL != "" {
		base, ok = b.opts.CustomURL, true
	}
	if !ok {
		base = providerBases[config.ProviderGoogle]
	}
	return base + url.QueryEscape(query)
}

func activityType(a classify.Activity) discord.ActivityType {
	switch a {
	case classify.Listening:
		return discord.ActivityListening
	case classify.Watching:
		return discord.ActivityWatching
	default:
		return discord.ActivityPlaying
	}
}

// limit cuts s to at most n runes, marking the cut with an ellipsis.
func limit(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
