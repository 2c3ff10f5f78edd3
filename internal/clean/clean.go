// Package clean turns scene-release filenames and tag strings into
// presentable titles.
//
// [Clean] runs a fixed pipeline of pure string passes. Matching is ASCII
// case-insensitive; non-ASCII bytes must match exactly.
package clean

import (
	"regexp"
	"strings"
)

// ///////////////////////////////////////////////
// Word Lists
// ///////////////////////////////////////////////

// mediaExtensions are stripped when they end the text.
var mediaExtensions = []string{".mp3", ".mkv", ".mp4", ".avi", ".flac", ".m4a", ".wav"}

// junkSites are release-group and download-site names that appear glued
// to a top-level domain, e.g. "olamovies.com".
var junkSites = []string{
	"olamovies", "vegamovies", "moviesmod", "katmoviehd", "mkvcinemas",
	"filmyzilla", "filmywap", "1tamilmv", "jiorockers", "ibomma",
	"yts", "yify", "psa", "qxr", "tigole", "rarbg", "pahe",
	"pagalworld", "mrjatt", "djpunjab", "wapking", "songspk",
	"djmaza", "pendujatt", "naasongs", "masstamilan", "jiosaavn",
}

var junkTLDs = []string{
	".top", ".com", ".net", ".org", ".in", ".nl", ".is", ".to", ".pw", ".cc",
	".site", ".info", ".biz", ".co", ".nz", ".uk", ".mx", ".ws", ".pro",
}

// qualityTags mark the start of the technical tail of a release name.
var qualityTags = []string{
	"2160p", "1080p", "720p", "480p", "4k",
	"bluray", "web-dl", "webrip", "hdrip", "camrip", "brrip",
}

// junkWords are removed wherever they occur. Order matters: longer phrases
// come before the words they contain.
var junkWords = []string{
	"downloaded from", "download from", "shared by", "brought to you by",
	"visit website", "downloaded", "download",
	"320kbps", "128kbps", "kbps",
	"official video", "lyric video", "ringtone", "full song",
	"pagalworld", "mrjatt", "djpunjab", "wapking", "songspk", "djmaza",
	"pendujatt", "naasongs", "masstamilan", "jiosaavn",
	"olamovies", "uhdmovies", "vegamovies", "moviesmod", "katmoviehd",
	"mkvcinemas", "filmyzilla", "filmywap", "1tamilmv", "jiorockers", "ibomma",
	"yts", "yify", "psa", "qxr", "tigole", "rarbg", "pahe",
	"x264", "x265", "hevc", "10bit", "site",
}

// siteDomains is every junkSites × junkTLDs combination.
var siteDomains = func() []string {
	out := make([]string, 0, len(junkSites)*len(junkTLDs))
	for _, s := range junkSites {
		for _, tld := range junkTLDs {
			out = append(out, s+tld)
		}
	}
	return out
}()

// ///////////////////////////////////////////////
// Pipeline
// ///////////////////////////////////////////////

// Clean normalizes raw, additionally removing each of extraJunk.
// Clean(Clean(x, j), j) == Clean(x, j) for every input.
func Clean(raw string, extraJunk []string) string {
	if raw == "" {
		return ""
	}
	s := stripBrackets(raw)
	s = stripExtension(s)
	s = blankSiteDomains(s)
	s = separatorsToSpaces(s)
	s = truncateAtQualityTag(s)
	s = removeJunk(s, junkList(extraJunk))
	return tidy(s)
}

// stripBrackets drops every "[...]" segment. An unclosed "[" drops the rest
// of the text and a stray "]" is dropped on its own.
func stripBrackets(s string) string {
	if !strings.ContainsAny(s, "[]") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inside := false
	for _, r := range s {
		switch {
		case r == '[':
			inside = true
		case r == ']':
			inside = false
		case !inside:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripExtension removes a trailing known media extension.
func stripExtension(s string) string {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return s
	}
	for _, ext := range mediaExtensions {
		if equalFoldASCII(s[i:], ext) {
			return s[:i]
		}
	}
	return s
}

// blankSiteDomains overwrites "site.tld" tokens with spaces of the same
// length so neighbouring words are not fused.
func blankSiteDomains(s string) string {
	for _, d := range siteDomains {
		for {
			i := indexFold(s, d)
			if i < 0 {
				break
			}
			s = s[:i] + strings.Repeat(" ", len(d)) + s[i+len(d):]
		}
	}
	return s
}

var separatorReplacer = strings.NewReplacer(".", " ", "_", " ", "~", " ")

func separatorsToSpaces(s string) string {
	return separatorReplacer.Replace(s)
}

// truncateAtQualityTag cuts s at the earliest quality tag.
func truncateAtQualityTag(s string) string {
	cut := len(s)
	for _, tag := range qualityTags {
		if i := indexFold(s[:cut], tag); i >= 0 {
			cut = i
		}
	}
	return s[:cut]
}

// removeJunk deletes the leftmost occurrence of each word, one per word per
// pass, until a pass changes nothing. Whitespace is collapsed after every
// removal so phrases split by a removed word are still found.
func removeJunk(s string, words []string) string {
	s = collapseSpaces(s)
	for changed := true; changed; {
		changed = false
		for _, w := range words {
			if i := indexFold(s, w); i >= 0 {
				s = collapseSpaces(s[:i] + " " + s[i+len(w):])
				changed = true
			}
		}
	}
	return s
}

// tidy collapses whitespace and trims spaces and hyphens from both ends.
func tidy(s string) string {
	return strings.Trim(collapseSpaces(s), " -")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// junkList appends the non-blank entries of extra to the built-in words.
func junkList(extra []string) []string {
	if len(extra) == 0 {
		return junkWords
	}
	words := make([]string, 0, len(junkWords)+len(extra))
	words = append(words, junkWords...)
	for _, w := range extra {
		if w = collapseSpaces(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// ///////////////////////////////////////////////
// Year
// ///////////////////////////////////////////////

var yearRe = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)[0-9]{2})(?:[^0-9]|$)`)

// ExtractYear returns the first 19xx/20xx year in s that is not part of a
// longer number, or "".
func ExtractYear(s string) string {
	m := yearRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// ///////////////////////////////////////////////
// Matching Helpers
// ///////////////////////////////////////////////

// indexFold is strings.Index with ASCII case folding.
func indexFold(s, sub string) int {
	n := len(sub)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(s); i++ {
		if equalFoldASCII(s[i:i+n], sub) {
			return i
		}
	}
	return -1
}

// equalFoldASCII compares equal-length strings, folding only ASCII letters.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
