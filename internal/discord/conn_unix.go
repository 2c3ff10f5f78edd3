//go:build !windows

package discord

import (
	"bytes"
	"fmt"
	"net"
	"os"
)

// connectToDiscord dials the first reachable IPC socket.
func connectToDiscord() (net.Conn, error) {
	candidates := unixSocketPaths(os.Getenv("XDG_RUNTIME_DIR"), os.Getuid())
	conn, err := dialFirst(candidates, func(path string) (net.Conn, error) {
		return net.DialTimeout("unix", path, dialTimeout)
	})
	if err != nil && isWSL() {
		// Discord runs on the Windows side; WSL2 cannot reach its named pipe
		// without a relay such as:
		//   socat UNIX-LISTEN:/tmp/discord-ipc-0,fork EXEC:"npiperelay.exe -ep -s //./pipe/discord-ipc-0"
		return nil, fmt.Errorf("%w: running under WSL, relay the discord-ipc pipe to /tmp/discord-ipc-0 with socat and npiperelay.exe", err)
	}
	return conn, err
}

// isWSL reports whether the kernel is a WSL build. Always false outside Linux.
func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	return err == nil && bytes.Contains(bytes.ToLower(data), []byte("microsoft"))
}
