// Package vlccord embeds the annotated default settings file.
//
// The daemon writes [DefaultConfigTOML] into the data directory on first run
// so users start from a documented config.toml.
package vlccord

import _ "embed"

// DefaultConfigTOML is config.default.toml, regenerated by go generate in
// internal/config.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
