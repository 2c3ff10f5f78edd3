// Command vlccord shows what VLC is playing as Discord Rich Presence.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"
	"tools.zach/dev/vlccord/internal/paths"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time with -ldflags "-X main.version=1.2.0".
var version = "dev"

// resolveVersion returns the ldflags version, or "dev+<hash>" from the VCS
// info the toolchain embeds in bare builds.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// defaultDataDir is ~/.vlccord, or ./.vlccord without a home directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// ///////////////////////////////////////////////
// Commands
// ///////////////////////////////////////////////

// newRootCmd builds the command tree. Running the root command starts the
// daemon.
func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           paths.BinaryName,
		Short:         "Show VLC playback as Discord Rich Presence",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), paths.DataDir{Root: dataDir})
		},
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory for config, logs and the PID file")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the presence daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE:  root.RunE,
	}

	root.AddCommand(
		run,
		newInspectCmd(&dataDir),
		newCleanCmd(),
		newLogsCmd(&dataDir),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", paths.BinaryName, err)
		os.Exit(1)
	}
}
