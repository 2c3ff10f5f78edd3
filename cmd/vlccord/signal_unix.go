// Shutdown signals on Unix.
//
// Built on every non-Windows platform. SIGTERM is what systemd and launchd
// send to stop a service.

//go:build !windows

package main

import (
	"os"
	"syscall"
)

// ///////////////////////////////////////////////
// Signals
// ///////////////////////////////////////////////

// shutdownSignals stop the daemon: Ctrl+C and the service manager's SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
