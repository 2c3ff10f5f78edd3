//go:build windows

package discord

import (
	"net"

	"github.com/Microsoft/go-winio"
)

// connectToDiscord dials the first reachable discord-ipc named pipe.
func connectToDiscord() (net.Conn, error) {
	timeout := dialTimeout
	return dialFirst(pipeNames(), func(name string) (net.Conn, error) {
		return winio.DialPipe(name, &timeout)
	})
}
