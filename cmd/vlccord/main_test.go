package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	rootpkg "tools.zach/dev/vlccord"
	"tools.zach/dev/vlccord/internal/config"
	"tools.zach/dev/vlccord/internal/discord"
	"tools.zach/dev/vlccord/internal/paths"
	"tools.zach/dev/vlccord/internal/presence"
	"tools.zach/dev/vlccord/internal/vlc"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

func TestResolveVersionWithLdflags(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	if got := resolveVersion(); got != "1.2.3" {
		t.Errorf("resolveVersion() = %q, want %q", got, "1.2.3")
	}
}

func TestResolveVersionDev(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "dev"
	if got := resolveVersion(); !strings.HasPrefix(got, "dev") {
		t.Errorf("resolveVersion() = %q, expected to start with 'dev'", got)
	}
}

func TestDefaultDataDir(t *testing.T) {
	if got := defaultDataDir(); filepath.Base(got) != paths.DataDirRel {
		t.Errorf("defaultDataDir() = %q, want it to end in %q", got, paths.DataDirRel)
	}
}

// ///////////////////////////////////////////////
// PID File
// ///////////////////////////////////////////////

func TestPidToken(t *testing.T) {
	a, b := pidToken(), pidToken()
	if a == b {
		t.Errorf("pidToken() returned the same value twice: %q", a)
	}
	if len(a) != 16 {
		t.Errorf("pidToken() length = %d, want 16", len(a))
	}
}

func TestWritePIDContent(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	token := pidToken()

	f, err := writePID(dir, token)
	if err != nil {
		t.Fatalf("writePID() error: %v", err)
	}
	defer removePID(dir, token, f)

	// Read through the open handle; on Windows the lock blocks os.ReadFile.
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}
	data := make([]byte, 256)
	n, err := f.Read(data)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if want := fmt.Sprintf("%d:%s", os.Getpid(), token); string(data[:n]) != want {
		t.Errorf("PID file content = %q, want %q", data[:n], want)
	}
}

func TestRunningInstanceDetectsLock(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	token := pidToken()
	f, err := writePID(dir, token)
	if err != nil {
		t.Fatalf("writePID() error: %v", err)
	}
	defer removePID(dir, token, f)

	alive, pid := runningInstance(dir)
	if !alive {
		t.Fatal("runningInstance() = false while the lock is held")
	}
	if runtime.GOOS != "windows" && pid != os.Getpid() {
		t.Errorf("pid = %d, want %d", pid, os.Getpid())
	}
}

func TestRunningInstanceStaleFile(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	if err := os.WriteFile(dir.PID(), []byte("99999:staletoken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if alive, pid := runningInstance(dir); alive || pid != 0 {
		t.Errorf("runningInstance() = %v, %d for a stale file", alive, pid)
	}
	if _, err := os.Stat(dir.PID()); !os.IsNotExist(err) {
		t.Error("stale PID file should have been removed")
	}
}

func TestRunningInstanceNoFile(t *testing.T) {
	if alive, _ := runningInstance(paths.DataDir{Root: t.TempDir()}); alive {
		t.Error("runningInstance() = true with no PID file")
	}
}

func TestRemovePIDKeepsForeignFile(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	f, err := writePID(dir, pidToken())
	if err != nil {
		t.Fatal(err)
	}
	removePID(dir, "someone-else", f)
	if _, err := os.Stat(dir.PID()); err != nil {
		t.Errorf("PID file removed with a foreign token: %v", err)
	}
	removePID(dir, "any", nil)
}

// ///////////////////////////////////////////////
// First Run
// ///////////////////////////////////////////////

func TestWriteDefaultConfig(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	if err := writeDefaultConfig(dir); err != nil {
		t.Fatalf("writeDefaultConfig() error: %v", err)
	}
	got, err := os.ReadFile(dir.Config())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, rootpkg.DefaultConfigTOML) {
		t.Error("written config differs from the embedded default")
	}

	// The default must load cleanly.
	if _, err := config.Load(dir.Root); err != nil {
		t.Errorf("Load(default) error: %v", err)
	}
}

func TestWriteDefaultConfigKeepsExisting(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	if err := os.WriteFile(dir.Config(), []byte("[vlc]\nport = 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeDefaultConfig(dir); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(dir.Config()); string(got) != "[vlc]\nport = 9090\n" {
		t.Errorf("existing config overwritten: %q", got)
	}
}

func TestWriteDefaultConfigLeavesLegacyForImport(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	if err := os.WriteFile(dir.LegacyConfig(), []byte(`{"VLC_PORT": 8181}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeDefaultConfig(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir.Config()); !os.IsNotExist(err) {
		t.Error("default config written over a pending legacy import")
	}
}

// ///////////////////////////////////////////////
// Discord Connection
// ///////////////////////////////////////////////

type fakeConn struct {
	failures  int
	attempts  int
	connected bool
}

func (c *fakeConn) Connect() error {
	c.attempts++
	if c.attempts <= c.failures {
		return discord.ErrIPCNotAvailable
	}
	c.connected = true
	return nil
}

func (c *fakeConn) Connected() bool { return c.connected }

func noSleep(t *testing.T) *int {
	t.Helper()
	var slept int
	old := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		slept++
		return ctx.Err()
	}
	t.Cleanup(func() { sleep = old })
	return &slept
}

func TestConnectWithRetry(t *testing.T) {
	slept := noSleep(t)
	c := &fakeConn{failures: 2}
	if err := connectWithRetry(t.Context(), c, time.Second); err != nil {
		t.Fatalf("connectWithRetry() error: %v", err)
	}
	if c.attempts != 3 || *slept != 2 {
		t.Errorf("attempts = %d, sleeps = %d; want 3 and 2", c.attempts, *slept)
	}
}

func TestConnectWithRetryGivesUp(t *testing.T) {
	slept := noSleep(t)
	c := &fakeConn{failures: maxConnectAttempts}
	err := connectWithRetry(t.Context(), c, time.Second)
	if !errors.Is(err, discord.ErrIPCNotAvailable) {
		t.Fatalf("error = %v, want wrapped ErrIPCNotAvailable", err)
	}
	if c.attempts != maxConnectAttempts || *slept != maxConnectAttempts-1 {
		t.Errorf("attempts = %d, sleeps = %d", c.attempts, *slept)
	}
}

func TestConnectWithRetryCancelled(t *testing.T) {
	noSleep(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	c := &fakeConn{failures: maxConnectAttempts}
	if err := connectWithRetry(ctx, c, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if c.attempts != 1 {
		t.Errorf("attempts = %d after cancel, want 1", c.attempts)
	}
}

type countingPublisher struct{ sets int }

func (p *countingPublisher) SetActivity(*discord.Activity) error { p.sets++; return nil }
func (p *countingPublisher) ClearActivity() error                { return nil }

type stoppedSource struct{}

func (stoppedSource) Fetch(context.Context) (*vlc.Snapshot, error) {
	return &vlc.Snapshot{State: vlc.StateStopped}, nil
}

func TestEnsureConnectedInvalidates(t *testing.T) {
	noSleep(t)
	pub := &countingPublisher{}
	engine := presence.NewEngine(stoppedSource{}, pub, nil, presence.OptionsFromConfig(config.DefaultConfig()))
	engine.Tick(t.Context())

	c := &fakeConn{connected: true}
	if err := ensureConnected(t.Context(), c, engine, time.Second); err != nil {
		t.Fatal(err)
	}
	engine.Tick(t.Context())
	if pub.sets != 1 {
		t.Fatalf("sets = %d while connected, want 1", pub.sets)
	}

	c.connected = false
	if err := ensureConnected(t.Context(), c, engine, time.Second); err != nil {
		t.Fatal(err)
	}
	engine.Tick(t.Context())
	if pub.sets != 2 {
		t.Errorf("sets = %d after reconnect, want idle republished", pub.sets)
	}
}

// ///////////////////////////////////////////////
// Commands
// ///////////////////////////////////////////////

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCleanCommand(t *testing.T) {
	out, err := execute(t, "clean", "--junk", "Remaster",
		"Movie.Name.2021.1080p.BluRay.x264-GROUP[olamovies.com].mkv",
		"Song_Remaster.mp3")
	if err != nil {
		t.Fatal(err)
	}
	want := "Movie Name 2021\t(2021)\nSong\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestCleanCommandNeedsArgs(t *testing.T) {
	if _, err := execute(t, "clean"); err == nil {
		t.Error("clean with no arguments succeeded")
	}
}

func TestVersionCommand(t *testing.T) {
	original := version
	defer func() { version = original }()
	version = "1.4.0"

	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "vlccord 1.4.0\n" {
		t.Errorf("output = %q", out)
	}
}

func TestLogsCommand(t *testing.T) {
	dir := paths.DataDir{Root: t.TempDir()}
	var log strings.Builder
	for i := range 10 {
		fmt.Fprintf(&log, "line %d\n", i)
	}
	if err := os.WriteFile(dir.Log(), []byte(log.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "logs", "--data-dir", dir.Root, "-n", "3")
	if err != nil {
		t.Fatal(err)
	}
	if out != "line 7\nline 8\nline 9\n" {
		t.Errorf("output = %q", out)
	}
}

func TestLogsCommandMissingLog(t *testing.T) {
	if _, err := execute(t, "logs", "--data-dir", t.TempDir()); err == nil {
		t.Error("logs succeeded without a log file")
	}
}

const inspectStatus = `{
  "state": "playing", "time": 120, "length": 5400,
  "information": {"category": {
    "meta": {"filename": "Movie.Name.2021.1080p.BluRay.x264-GROUP[olamovies.com].mkv"},
    "Stream 0": {"Type": "Video", "Video_resolution": "1920x1080"},
    "Stream 1": {"Type": "Audio", "Language": "English", "Decoded_channels": "Stereo"}
  }}
}`

func writeVLCConfig(t *testing.T, srvURL string) string {
	t.Helper()
	u, err := url.Parse(srvURL)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	body := fmt.Sprintf("[vlc]\nhost = %q\nport = %s\npassword = \"secret\"\n", u.Hostname(), u.Port())
	if err := os.WriteFile(filepath.Join(dir, paths.ConfigFile), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestInspectCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pw, _ := r.BasicAuth(); pw != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(inspectStatus))
	}))
	defer srv.Close()

	out, err := execute(t, "inspect", "--data-dir", writeVLCConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	for _, want := range []string{
		"state:      playing",
		"activity:   watching",
		"quality:    1080p",
		"languages:  en",
		`"details": "Movie Name 2021 ● 1080p"`,
		`"state": "Video ● en (Playing)"`,
		`"large_image": "vlc_icon"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommandUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srvURL := srv.URL
	srv.Close()

	_, err := execute(t, "inspect", "--data-dir", writeVLCConfig(t, srvURL))
	if !errors.Is(err, vlc.ErrUnreachable) {
		t.Errorf("error = %v, want ErrUnreachable", err)
	}
}
