package migrate

import "fmt"

// Registry tracks the current schema version and upgrade steps for one
// kind of file.
type Registry struct {
	// CurrentVersion is the version written by this build.
	CurrentVersion int
	// Migrations holds the registered upgrade steps.
	Migrations []Migration
}

// Register adds m. It panics on a duplicate version.
func (r *Registry) Register(m Migration) {
	for _, existing := range r.Migrations {
		if existing.Version == m.Version {
			panic(fmt.Sprintf("migrate: duplicate migration version %d (description: %q)", m.Version, m.Description))
		}
	}
	r.Migrations = append(r.Migrations, m)
}

// NeedsMigration reports whether content at fileVersion must be upgraded.
func (r *Registry) NeedsMigration(fileVersion int) bool {
	return NeedsMigration(fileVersion, r.CurrentVersion, r.Migrations)
}

// Run upgrades data from fromVersion using the registered steps.
func (r *Registry) Run(data []byte, fromVersion int) ([]byte, int, error) {
	return Run(data, fromVersion, r.Migrations)
}

// Config is the registry for config files. Version 0 is the legacy
// config.json generation; version 1 is config.toml.
var Config = &Registry{CurrentVersion: 1}
