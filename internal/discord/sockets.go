package discord

import (
	"fmt"
	"net"
	"time"
)

// ipcSlots is how many numbered endpoints Discord may listen on (0-9).
const ipcSlots = 10

// dialTimeout bounds each endpoint probe.
const dialTimeout = time.Second

// ipcPrefixes are the socket names of the stable, PTB and Canary clients.
var ipcPrefixes = []string{"discord-ipc", "discordptb-ipc", "discordcanary-ipc"}

// sandboxDirs are the runtime subdirectories of Snap and Flatpak installs,
// relative to /run/user/<uid>.
var sandboxDirs = []string{
	"snap.discord",
	"snap.discord-ptb",
	"snap.discord-canary",
	"app/com.discordapp.Discord",
	"app/com.discordapp.DiscordPTB",
	"app/com.discordapp.DiscordCanary",
}

// unixSocketPaths lists socket candidates in the order they are tried.
// runtimeDir is $XDG_RUNTIME_DIR and may be empty.
func unixSocketPaths(runtimeDir string, uid int) []string {
	dirs := []string{"/tmp"}
	if runtimeDir != "" {
		dirs = []string{runtimeDir, "/tmp"}
	}

	var out []string
	for _, dir := range dirs {
		for _, prefix := range ipcPrefixes {
			for i := range ipcSlots {
				out = append(out, fmt.Sprintf("%s/%s-%d", dir, prefix, i))
			}
		}
	}
	for _, sub := range sandboxDirs {
		for i := range ipcSlots {
			out = append(out, fmt.Sprintf("/run/user/%d/%s/discord-ipc-%d", uid, sub, i))
		}
	}
	return out
}

// pipeNames lists the Windows named pipes Discord may listen on.
func pipeNames() []string {
	out := make([]string, ipcSlots)
	for i := range out {
		out[i] = fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, i)
	}
	return out
}

// dialFirst returns the first endpoint that accepts a connection.
func dialFirst(endpoints []string, dial func(string) (net.Conn, error)) (net.Conn, error) {
	for _, ep := range endpoints {
		if conn, err := dial(ep); err == nil {
			return conn, nil
		}
	}
	return nil, ErrIPCNotAvailable
}
