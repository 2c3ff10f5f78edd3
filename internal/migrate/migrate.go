// Package migrate upgrades on-disk configuration from older schema
// generations to the current one, one version step at a time.
package migrate

import (
	"fmt"
	"log/slog"
	"slices"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Migration upgrades raw file content to [Migration.Version].
type Migration struct {
	// Version is the schema version this step produces.
	Version int
	// Description labels the step in log output.
	Description string
	// Upgrade converts content from the previous version.
	Upgrade func(data []byte) ([]byte, error)
}

// ///////////////////////////////////////////////
// Public API
// ///////////////////////////////////////////////

// Run applies, in version order, every migration newer than fromVersion.
// It returns the upgraded data and the last version reached; on failure the
// version is the last one that succeeded.
func Run(data []byte, fromVersion int, migrations []Migration) ([]byte, int, error) {
	ordered := slices.Clone(migrations)
	slices.SortFunc(ordered, func(a, b Migration) int { return a.Version - b.Version })

	version := fromVersion
	for _, m := range ordered {
		if m.Version <= version {
			continue
		}
		slog.Info("applying migration", "version", m.Version, "description", m.Description)
		out, err := m.Upgrade(data)
		if err != nil {
			return nil, version, fmt.Errorf("migration to v%d failed: %w", m.Version, err)
		}
		data, version = out, m.Version
	}
	return data, version, nil
}

// NeedsMigration reports whether content at fileVersion is behind
// currentVersion or has a registered step still pending.
func NeedsMigration(fileVersion, currentVersion int, migrations []Migration) bool {
	if fileVersion != currentVersion {
		return true
	}
	for _, m := range migrations {
		if fileVersion < m.Version {
			return true
		}
	}
	return false
}
