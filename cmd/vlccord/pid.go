package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tools.zach/dev/vlccord/internal/paths"
)

// ///////////////////////////////////////////////
// Single Instance
// ///////////////////////////////////////////////

// pidToken returns a random hex token that marks the PID file as ours.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// writePID locks the PID file and writes "PID:TOKEN" into it. The returned
// handle holds the lock and must stay open until [removePID].
func writePID(dir paths.DataDir, token string) (*os.File, error) {
	f, err := os.OpenFile(dir.PID(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock PID file: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d:%s", os.Getpid(), token); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return f, nil
}

// removePID unlocks f and deletes the PID file if it still carries token.
func removePID(dir paths.DataDir, token string, f *os.File) {
	if f != nil {
		_ = unlockFile(f)
		f.Close()
	}
	data, err := os.ReadFile(dir.PID())
	if err != nil {
		return
	}
	if _, owner, ok := strings.Cut(string(data), ":"); ok && owner == token {
		os.Remove(dir.PID())
	}
}

// runningInstance reports whether another daemon holds the PID file lock,
// and its PID when readable. A PID file left by a dead daemon is removed.
func runningInstance(dir paths.DataDir) (alive bool, pid int) {
	f, err := os.OpenFile(dir.PID(), os.O_RDWR, 0o600)
	if err != nil {
		return false, 0
	}

	if lockErr := lockFile(f); lockErr != nil {
		data, _ := os.ReadFile(dir.PID())
		f.Close()
		head, _, _ := strings.Cut(string(data), ":")
		pid, _ = strconv.Atoi(head)
		return true, pid
	}

	_ = unlockFile(f)
	f.Close()
	os.Remove(dir.PID())
	return false, 0
}
