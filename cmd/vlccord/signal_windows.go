// Shutdown signals on Windows.

//go:build windows

package main

import "os"

// ///////////////////////////////////////////////
// Signals
// ///////////////////////////////////////////////

// shutdownSignals stop the daemon. Windows has no SIGTERM; console close and
// Ctrl+Break arrive as os.Interrupt.
var shutdownSignals = []os.Signal{os.Interrupt}
