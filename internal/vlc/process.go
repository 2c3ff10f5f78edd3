package vlc

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessRunning reports whether a VLC process exists on this machine.
func ProcessRunning(ctx context.Context) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if isVLCProcess(name) {
			return true, nil
		}
	}
	return false, nil
}

// isVLCProcess matches "vlc", "vlc.exe" and "VLC" (macOS).
func isVLCProcess(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	return name == "vlc" || name == "cvlc" || name == "qvlc"
}
