// Package classify derives display facts from a VLC status snapshot:
// video quality, audio languages and what kind of activity is happening.
//
// The active-track heuristic (a stream is the one being played when VLC
// reports decoded format or channels for it) is specific to VLC's status
// document.
package classify

import (
	"path"
	"slices"
	"strconv"
	"strings"

	"tools.zach/dev/vlccord/internal/vlc"
)

// Activity is the coarse kind of media being played.
type Activity int

const (
	// Playing is generic playback of unrecognized media.
	Playing Activity = iota
	Listening
	Watching
)

func (a Activity) String() string {
	switch a {
	case Listening:
		return "listening"
	case Watching:
		return "watching"
	default:
		return "playing"
	}
}

// LanguageSeparator joins audio language codes for display.
const LanguageSeparator = " | "

// Result is the classification of one snapshot.
type Result struct {
	Activity Activity
	// Quality is e.g. "1080p", "4K HDR" or "" without a video stream.
	Quality string
	// Languages are two-letter audio codes in stream order.
	Languages []string
}

// LanguageTag returns the languages joined for display.
func (r Result) LanguageTag() string {
	return strings.Join(r.Languages, LanguageSeparator)
}

// Classify runs every classifier on snap.
func Classify(snap *vlc.Snapshot) Result {
	quality := QualityTag(snap)
	return Result{
		Activity:  ActivityOf(snap.Meta.Filename, quality),
		Quality:   quality,
		Languages: AudioLanguages(snap),
	}
}

// ///////////////////////////////////////////////
// Audio Languages
// ///////////////////////////////////////////////

// AudioLanguages returns the two-letter codes of the audio streams being
// decoded, or of every declared audio stream when none is marked active.
// Codes are lowercased, de-duplicated and kept in first-seen order.
func AudioLanguages(snap *vlc.Snapshot) []string {
	var all, active []string
	for _, s := range snap.Streams {
		if s.Type != "Audio" || s.Language == "" {
			continue
		}
		code := shortLanguage(s.Language)
		if !slices.Contains(all, code) {
			all = append(all, code)
		}
		if s.Decoding && !slices.Contains(active, code) {
			active = append(active, code)
		}
	}
	if len(active) > 0 {
		return active
	}
	return all
}

func shortLanguage(lang string) string {
	r := []rune(strings.ToLower(lang))
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// ///////////////////////////////////////////////
// Quality
// ///////////////////////////////////////////////

// hdrTransferMarkers identify PQ and HLG transfer functions.
var hdrTransferMarkers = []string{"PQ", "HLG", "2084"}

// QualityTag classifies the first video stream by frame width and HDR
// signalling. Later video streams are ignored.
func QualityTag(snap *vlc.Snapshot) string {
	for _, s := range snap.Streams {
		if s.Type != "Video" {
			continue
		}
		var tags []string
		if w, _, ok := strings.Cut(s.Resolution, "x"); ok {
			tags = append(tags, resolutionTag(w))
		}
		if isHDR(s) {
			tags = append(tags, "HDR")
		}
		return strings.Join(tags, " ")
	}
	return ""
}

// resolutionTag maps a width to a label; unparseable widths are "SD".
func resolutionTag(width string) string {
	w, _ := strconv.Atoi(strings.TrimSpace(width))
	switch {
	case w >= 3800:
		return "4K"
	case w >= 2500:
		return "2K"
	case w >= 1900:
		return "1080p"
	case w >= 1200:
		return "720p"
	default:
		return "SD"
	}
}

func isHDR(s vlc.Stream) bool {
	if strings.Contains(s.ColorPrimaries, "2020") {
		return true
	}
	for _, m := range hdrTransferMarkers {
		if strings.Contains(s.TransferFunction, m) {
			return true
		}
	}
	return false
}

// ///////////////////////////////////////////////
// Activity
// ///////////////////////////////////////////////

var (
	audioExtensions = []string{".mp3", ".flac", ".wav", ".m4a", ".aac", ".ogg", ".wma", ".opus"}
	videoExtensions = []string{".mkv", ".mp4", ".avi", ".mov", ".wmv", ".webm", ".m4v"}
)

// ActivityOf classifies media as Watching when it has a quality tag,
// otherwise by the filename extension.
func ActivityOf(filename, quality string) Activity {
	if quality != "" {
		return Watching
	}
	ext := strings.ToLower(path.Ext(filename))
	switch {
	case ext == "":
		return Playing
	case slices.Contains(audioExtensions, ext):
		return Listening
	case slices.Contains(videoExtensions, ext):
		return Watching
	default:
		return Playing
	}
}
