package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tools.zach/dev/vlccord/internal/artwork"
	"tools.zach/dev/vlccord/internal/classify"
	"tools.zach/dev/vlccord/internal/config"
	"tools.zach/dev/vlccord/internal/discord"
	"tools.zach/dev/vlccord/internal/logger"
	"tools.zach/dev/vlccord/internal/vlc"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks tools.zach/dev/vlccord/internal/presence Publisher,Source,Resolver

// ///////////////////////////////////////////////
// Collaborators
// ///////////////////////////////////////////////

// Publisher sends activities to Discord.
type Publisher interface {
	SetActivity(activity *discord.Activity) error
	ClearActivity() error
}

// Source produces status snapshots.
type Source interface {
	Fetch(ctx context.Context) (*vlc.Snapshot, error)
}

// Resolver finds a large image for the media, returning fallback when
// nothing better exists.
type Resolver interface {
	Resolve(ctx context.Context, req artwork.Request, fallback string) string
}

// ///////////////////////////////////////////////
// Engine
// ///////////////////////////////////////////////

// Options configures an [Engine].
type Options struct {
	Builder BuilderOptions
	// ShowCoverArt enables the artwork resolver.
	ShowCoverArt bool
	// DriftThreshold is how far the segment start may move before a seek
	// is assumed.
	DriftThreshold time.Duration
	// HeartbeatTicks is the number of unchanged ticks before a republish.
	HeartbeatTicks int
	// Ignored reports whether media with this filename must not be shown.
	Ignored func(filename string) bool
	// ProcessRunning, when set, is consulted on going offline to tell a
	// closed VLC from one without its web interface.
	ProcessRunning func(ctx context.Context) (bool, error)
}

// OptionsFromConfig extracts the engine settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Builder:        BuilderOptionsFromConfig(cfg),
		ShowCoverArt:   cfg.Display.ShowCoverArt,
		DriftThreshold: time.Duration(cfg.Behavior.DriftThresholdMS) * time.Millisecond,
		HeartbeatTicks: cfg.Behavior.HeartbeatTicks,
		Ignored:        cfg.IsIgnored,
	}
	if cfg.Behavior.HintProcess {
		opts.ProcessRunning = vlc.ProcessRunning
	}
	return opts
}

// published is what was last sent to Discord for the active state.
type published struct {
	ok       bool
	details  string
	state    string
	playing  bool
	activity classify.Activity
	image    string
	// anchor is the segment start of the last publish, in Unix ms.
	anchor int64
	// heartbeat counts ticks since the last publish.
	heartbeat int
}

// Engine runs one poll tick at a time and publishes presence changes.
type Engine struct {
	source  Source
	pub     Publisher
	art     Resolver
	builder *Builder
	opts    Options
	now     func() time.Time
	running sync.Mutex
	current State
	last    published
}

// NewEngine returns an Engine reading from source and publishing to pub.
// art may be nil when cover art is disabled.
func NewEngine(source Source, pub Publisher, art Resolver, opts Options) *Engine {
	return &Engine{
		source:  source,
		pub:     pub,
		art:     art,
		builder: NewBuilder(opts.Builder),
		opts:    opts,
		now:     time.Now,
	}
}

// State returns the state reached by the last tick.
func (e *Engine) State() State {
	e.running.Lock()
	defer e.running.Unlock()
	return e.current
}

// Invalidate forgets what was published, so the next tick publishes
// whatever it sees. Call it after the publisher reconnects.
func (e *Engine) Invalidate() {
	e.running.Lock()
	defer e.running.Unlock()
	e.current = State{}
	e.last = published{}
}

// Tick fetches one snapshot and updates the presence. It skips the tick
// when the previous one is still running. Failures are logged; none is
// returned.
func (e *Engine) Tick(ctx context.Context) {
	if !e.running.TryLock() {
		logger.Trace(slog.Default(), "previous tick still running, skipping")
		return
	}
	defer e.running.Unlock()

	snap, err := e.source.Fetch(ctx)
	ignored := err == nil && snap != nil && snap.Active() && e.ignored(snap.Meta.Filename)
	o := observe(snap, err, ignored)
	if o == sawTransient {
		slog.Debug("status fetch failed", "error", err)
		return
	}
	next := e.current.next(o)

	switch next.Kind {
	case Offline:
		if e.current.Kind != Offline {
			e.goOffline(ctx, err)
		}
	case Idle:
		if e.current.Kind != Idle {
			e.goIdle(ignored)
		}
	case Active:
		e.current = next
		e.active(ctx, snap)
	}
}

func (e *Engine) ignored(filename string) bool {
	return e.opts.Ignored != nil && e.opts.Ignored(filename)
}

// goOffline clears the presence once when VLC becomes unreachable.
func (e *Engine) goOffline(ctx context.Context, cause error) {
	if err := e.pub.ClearActivity(); err != nil {
		slog.Warn("failed to clear presence", "error", err)
		return
	}
	slog.Info("VLC unreachable, presence cleared", "from", e.current, "error", cause)
	e.current = State{Kind: Offline}
	e.last = published{}
	e.hintProcess(ctx)
}

// goIdle publishes the idle presence once when VLC stops.
func (e *Engine) goIdle(ignored bool) {
	if err := e.pub.SetActivity(e.builder.Idle()); err != nil {
		slog.Warn("failed to publish idle presence", "error", err)
		return
	}
	slog.Info("VLC idle", "from", e.current, "ignored_media", ignored)
	e.current = State{Kind: Idle}
	e.last = published{}
}

// active recomputes the presence and publishes it when it changed.
func (e *Engine) active(ctx context.Context, snap *vlc.Snapshot) {
	d := e.builder.Describe(snap)
	image := e.builder.DefaultImage()
	if e.opts.ShowCoverArt && e.art != nil {
		image = e.art.Resolve(ctx, d.Artwork, image)
	}

	playing := snap.State == vlc.StatePlaying
	start := e.now().UnixMilli() - snap.Time*1000
	end := start + snap.Length*1000

	reason := e.publishReason(d, image, playing, start)
	if reason == "" {
		e.last.heartbeat++
		logger.Trace(slog.Default(), "presence unchanged", "heartbeat", e.last.heartbeat)
		return
	}

	if err := e.pub.SetActivity(e.builder.Activity(d, image, playing, start, end)); err != nil {
		slog.Warn("failed to publish presence", "reason", reason, "error", err)
		return
	}
	slog.Debug("presence published", "reason", reason, "details", d.Details, "state", d.State, "activity", d.Class.Activity)
	e.last = published{
		ok:       true,
		details:  d.Details,
		state:    d.State,
		playing:  playing,
		activity: d.Class.Activity,
		image:    image,
		anchor:   start,
	}
}

// publishReason returns why the presence must be republished, or "" when
// it is unchanged. Drift is ignored while paused since the computed start
// moves with the wall clock and no timestamps are shown. A seek made while
// paused is picked up on resume, which republishes with a fresh anchor.
func (e *Engine) publishReason(d Description, image string, playing bool, start int64) string {
	l := &e.last
	switch {
	case !l.ok:
		return "new"
	case d.Details != l.details || d.State != l.state:
		return "text"
	case playing != l.playing:
		return "playback"
	case d.Class.Activity != l.activity:
		return "activity"
	case image != l.image:
		return "artwork"
	case playing && abs(start-l.anchor) > e.opts.DriftThreshold.Milliseconds():
		return "drift"
	case l.heartbeat >= e.opts.HeartbeatTicks:
		return "heartbeat"
	default:
		return ""
	}
}

// hintProcess logs whether VLC is running without its web interface.
func (e *Engine) hintProcess(ctx context.Context) {
	if e.opts.ProcessRunning == nil {
		return
	}
	ok, err := e.opts.ProcessRunning(ctx)
	switch {
	case err != nil:
		slog.Debug("process check failed", "error", err)
	case ok:
		slog.Warn("VLC is running but its web interface is not reachable; enable Lua HTTP under Preferences > Interface > Main interfaces")
	default:
		slog.Info("waiting for VLC to start")
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
