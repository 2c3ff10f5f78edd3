package artwork

import (
	"net/url"
	"strings"
)

// localPath converts a file:// artwork reference into a path for goos.
// VLC writes "file:///C:/Users/..." on Windows and "file:///home/..."
// elsewhere, percent-encoding special characters.
func localPath(ref, goos string) (string, bool) {
	rest, ok := cutPrefixFold(ref, "file://")
	if !ok {
		return "", false
	}
	// Drop an authority component such as "localhost".
	if !strings.HasPrefix(rest, "/") {
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return "", false
		}
		rest = rest[i:]
	}
	p, err := url.PathUnescape(rest)
	if err != nil {
		p = rest
	}

	if goos == "windows" {
		if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		p = strings.ReplaceAll(p, "/", `\`)
	}
	return p, p != ""
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// isRemote reports whether ref can be handed to Discord as-is.
func isRemote(ref string) bool {
	_, ok := cutPrefixFold(ref, "https://")
	if !ok {
		_, ok = cutPrefixFold(ref, "http://")
	}
	return ok
}
