//go:build windows

package vlc

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// isConnRefused matches the Winsock error, which differs from the
// syscall.ECONNREFUSED constant on Windows.
func isConnRefused(err error) bool {
	return errors.Is(err, windows.WSAECONNREFUSED) || errors.Is(err, syscall.ECONNREFUSED)
}
