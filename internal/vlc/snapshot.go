// Package vlc reads playback status from VLC's Lua HTTP interface.
package vlc

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// State is the player state reported by VLC.
type State string

const (
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// ErrMalformed is returned for a status document that cannot be interpreted.
var ErrMalformed = errors.New("malformed status document")

// Stream is one "Stream N" descriptor from the information section.
// Field values are VLC's display strings, e.g. "1920x1080" or "English".
type Stream struct {
	Index            int
	Type             string
	Codec            string
	Language         string
	Resolution       string
	ColorPrimaries   string
	TransferFunction string
	// Decoding is set when VLC reports a decoded format or channel layout,
	// which it only does for the track it is actually playing.
	Decoding bool
}

// Meta is the metadata section of the status document.
type Meta struct {
	Filename   string
	Title      string
	Artist     string
	Album      string
	ShowName   string
	Season     string
	Episode    string
	Date       string
	ArtworkURL string
	// InfoTitle is the top-level information.title, set by some streams
	// that carry no filename. Numeric disc title indexes are ignored.
	InfoTitle string
}

// Snapshot is one parsed status document.
type Snapshot struct {
	State State
	// Time and Length are in seconds; Length is 0 when unknown.
	Time    int64
	Length  int64
	Meta    Meta
	Streams []Stream
}

// Active reports whether VLC is playing or paused.
func (s *Snapshot) Active() bool {
	return s.State == StatePlaying || s.State == StatePaused
}

// ///////////////////////////////////////////////
// Parsing
// ///////////////////////////////////////////////

// Parse decodes a status.json document.
func Parse(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(data)

	state := doc.Get("state")
	if !state.Exists() {
		return nil, fmt.Errorf("%w: missing state", ErrMalformed)
	}

	snap := &Snapshot{
		State:  State(strings.ToLower(state.String())),
		Time:   doc.Get("time").Int(),
		Length: doc.Get("length").Int(),
	}
	switch snap.State {
	case StatePlaying, StatePaused, StateStopped:
	default:
		return nil, fmt.Errorf("%w: unknown state %q", ErrMalformed, state.String())
	}

	category := doc.Get("information.category")
	snap.Meta = parseMeta(category.Get("meta"))
	if t := doc.Get("information.title"); t.Type == gjson.String {
		snap.Meta.InfoTitle = strings.TrimSpace(t.Str)
	}
	category.ForEach(func(key, value gjson.Result) bool {
		if s, ok := parseStream(key.String(), value); ok {
			snap.Streams = append(snap.Streams, s)
		}
		return true
	})
	slices.SortStableFunc(snap.Streams, func(a, b Stream) int { return a.Index - b.Index })
	return snap, nil
}

func parseMeta(m gjson.Result) Meta {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := m.Get(k); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
		return ""
	}
	return Meta{
		Filename:   first("filename"),
		Title:      first("title"),
		Artist:     first("artist"),
		Album:      first("album"),
		ShowName:   first("showName"),
		Season:     first("seasonNumber", "season"),
		Episode:    first("episodeNumber", "episode"),
		Date:       first("date"),
		ArtworkURL: first("artwork_url"),
	}
}

// parseStream reads a "Stream N" entry; other keys are rejected.
func parseStream(key string, v gjson.Result) (Stream, bool) {
	n, ok := strings.CutPrefix(key, "Stream ")
	if !ok || !v.IsObject() {
		return Stream{}, false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil {
		return Stream{}, false
	}
	return Stream{
		Index:            idx,
		Type:             v.Get("Type").String(),
		Codec:            v.Get("Codec").String(),
		Language:         v.Get("Language").String(),
		Resolution:       v.Get("Video_resolution").String(),
		ColorPrimaries:   v.Get("Color_primaries").String(),
		TransferFunction: v.Get("Color_transfer_function").String(),
		Decoding:         v.Get("Decoded_format").String() != "" || v.Get("Decoded_channels").String() != "",
	}, true
}
