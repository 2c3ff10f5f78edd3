// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	PIDFile          = "daemon.pid"
	ConfigFile       = "config.toml"
	LegacyConfigFile = "config.json"
	LogFile          = "daemon.log"
)

// Binary and directory names.
const (
	BinaryName = "vlccord"
	DataDirRel = ".vlccord" // relative to $HOME
)

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// LegacyConfig returns the full path to the JSON config used by the
// previous generation of the tool.
func (d DataDir) LegacyConfig() string { return filepath.Join(d.Root, LegacyConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }
