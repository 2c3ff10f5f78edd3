package clean

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		extra []string
		want  string
	}{
		{"empty", "", nil, ""},
		{"scene release", "Movie.Name.2021.1080p.BluRay.x264-GROUP[olamovies.com].mkv", nil, "Movie Name 2021"},
		{"plain title untouched", "The Matrix", nil, "The Matrix"},
		{"extension case-insensitive", "Song Title.FLAC", nil, "Song Title"},
		{"unknown extension kept as words", "clip.webm", nil, "clip webm"},
		{"brackets removed", "[Group] Show Name [1080p] - 05", nil, "Show Name - 05"},
		{"unclosed bracket drops tail", "Title [unfinished tag", nil, "Title"},
		{"stray closing bracket", "Title] Name", nil, "Title Name"},
		{"site domain blanked", "Track Name vegamovies.net.mp3", nil, "Track Name"},
		{"site domain keeps neighbours apart", "Alpha(YTS.com)Beta", nil, "Alpha( )Beta"},
		{"underscores and tildes", "Some_Song~Remix", nil, "Some Song Remix"},
		{"earliest quality tag wins", "Film 4K HDR 2160p", nil, "Film"},
		{"web-dl tag", "Show.S01E02.WEB-DL.x265", nil, "Show S01E02"},
		{"junk phrases", "Song Name (Official Video) 320kbps Downloaded From PagalWorld", nil, "Song Name ( )"},
		{"junk phrase split by junk", "Title shared kbps by someone", nil, "Title someone"},
		{"repeated junk", "kbps Title kbps kbps", nil, "Title"},
		{"edge hyphens trimmed", "-- Artist - Song --", nil, "Artist - Song"},
		{"custom junk words", "Movie Name HDCAM Extended Cut", []string{"hdcam", " extended  cut "}, "Movie Name"},
		{"blank custom words ignored", "Movie Name", []string{"", "   "}, "Movie Name"},
		{"only junk", "[olamovies.com].mkv", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.raw, tt.extra); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// cleanCorpus exercises every pass of the pipeline.
var cleanCorpus = []string{
	"",
	" ",
	"-",
	"Movie.Name.2021.1080p.BluRay.x264-GROUP[olamovies.com].mkv",
	"[a[b]c]d",
	"shared  by",
	"download  from x",
	"a kbps b kbps c",
	"Track ~ Name _ (128kbps) .mp3",
	"ÉTÉ.Été.2160P.mkv",
	"- - -Title- - -",
	"x264x265hevc10bit",
	"psalm psa site opposite",
	"KatMovieHD.Co.Movie.2019.WEBRip.avi",
	"Naa Songs naasongs.in Song",
	"Title]]][[[",
	"\tTabs\tand\nnewlines ",
}

func TestCleanIdempotent(t *testing.T) {
	extras := [][]string{nil, {"cut", "hd cam"}}
	for _, extra := range extras {
		for _, raw := range cleanCorpus {
			once := Clean(raw, extra)
			if twice := Clean(once, extra); twice != once {
				t.Errorf("not idempotent for %q: %q -> %q", raw, once, twice)
			}
		}
	}
}

func TestCleanEdges(t *testing.T) {
	for _, raw := range cleanCorpus {
		got := Clean(raw, nil)
		if got == "" {
			continue
		}
		if strings.TrimLeft(got, " -") != got || strings.TrimRight(got, " -") != got {
			t.Errorf("Clean(%q) = %q has edge space or hyphen", raw, got)
		}
		if strings.Contains(got, "  ") {
			t.Errorf("Clean(%q) = %q has double space", raw, got)
		}
	}
}

func FuzzClean(f *testing.F) {
	for _, raw := range cleanCorpus {
		f.Add(raw, "")
	}
	f.Add("Song kbps x", "song")
	f.Fuzz(func(t *testing.T, raw, extra string) {
		words := []string{extra}
		once := Clean(raw, words)
		if twice := Clean(once, words); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", raw, once, twice)
		}
		if once != strings.Trim(once, " -") {
			t.Fatalf("edge space or hyphen in %q", once)
		}
	})
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Movie.Name.2021.1080p", "2021"},
		{"1999", "1999"},
		{"Blade Runner 1982 Final Cut", "1982"},
		{"Track 12021", ""},
		{"20215", ""},
		{"1899 and 2005", "2005"},
		{"no year", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExtractYear(tt.in); got != tt.want {
				t.Errorf("ExtractYear(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIndexFold(t *testing.T) {
	tests := []struct {
		s, sub string
		want   int
	}{
		{"Hello World", "world", 6},
		{"BLURAY", "bluray", 0},
		{"ÉTÉ 4K", "4k", 4},
		{"abc", "abcd", -1},
		{"abc", "", 0},
	}
	for _, tt := range tests {
		if got := indexFold(tt.s, tt.sub); got != tt.want {
			t.Errorf("indexFold(%q, %q) = %d, want %d", tt.s, tt.sub, got, tt.want)
		}
	}
}
