// Package logger provides the vlccord slog handler and log file helpers.
//
// Log output format:
//
//	2006-01-02T15:04:05.000Z [LEVEL] message | key=value, title="Two Words"
//
// Custom levels beyond the standard slog set:
//   - LevelTrace (-8): per-tick tracing
//   - LevelFail  (12): errors that stop the daemon
package logger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ///////////////////////////////////////////////
// Custom Levels
// ///////////////////////////////////////////////

const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelFail  slog.Level = 12
)

func levelName(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "TRACE"
	case l <= LevelDebug:
		return "DEBUG"
	case l <= LevelInfo:
		return "INFO"
	case l <= LevelWarn:
		return "WARN"
	case l <= LevelError:
		return "ERROR"
	default:
		return "FAIL"
	}
}

// ParseLevel converts a config level string to a slog.Level,
// case-insensitively. Unknown strings map to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "fail":
		return LevelFail
	default:
		return LevelInfo
	}
}

// ///////////////////////////////////////////////
// Handler
// ///////////////////////////////////////////////

var lineEnding = "\n"

func init() {
	if runtime.GOOS == "windows" {
		lineEnding = "\r\n"
	}
}

// Handler is a slog.Handler writing one line per record.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Level
	// attrs are already rendered as key=value with their group prefix.
	attrs []string
	// group is the dot-separated prefix for attributes added later.
	group string
}

// NewHandler creates a Handler that writes to w, filtering records below level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder
	buf.WriteString(r.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	buf.WriteString(" [")
	buf.WriteString(levelName(r.Level))
	buf.WriteString("] ")
	buf.WriteString(r.Message)

	fields := make([]string, 0, len(h.attrs)+r.NumAttrs())
	fields = append(fields, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.group, a)
		return true
	})
	if len(fields) > 0 {
		buf.WriteString(" | ")
		buf.WriteString(strings.Join(fields, ", "))
	}
	buf.WriteString(lineEnding)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

// WithAttrs returns a Handler with attrs rendered under the current group.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rendered := make([]string, len(h.attrs), len(h.attrs)+len(attrs))
	copy(rendered, h.attrs)
	for _, a := range attrs {
		rendered = appendAttr(rendered, h.group, a)
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, attrs: rendered, group: h.group}
}

// WithGroup returns a Handler that prefixes later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, attrs: h.attrs, group: group}
}

// appendAttr renders a as key=value, flattening group values.
func appendAttr(dst []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, key, ga)
		}
		return dst
	}
	return append(dst, key+"="+formatValue(a.Value))
}

// formatValue quotes strings that would otherwise be ambiguous in the
// comma-separated attribute list.
func formatValue(v slog.Value) string {
	s := v.String()
	if v.Kind() != slog.KindString && v.Kind() != slog.KindAny {
		return s
	}
	if s == "" || strings.ContainsAny(s, " ,=\"\n\t") {
		return strconv.Quote(s)
	}
	return s
}

// ///////////////////////////////////////////////
// Logger Constructor
// ///////////////////////////////////////////////

// Options configures [NewLogger].
type Options struct {
	// Path is the log file; it is rotated by size.
	Path string
	// Level is the minimum level written.
	Level slog.Level
	// MaxSizeMB is the size at which the file rotates.
	MaxSizeMB int
	// Console, when non-nil, receives a copy of every line.
	Console io.Writer
}

// NewLogger creates a slog.Logger writing to a rotating log file.
// The returned io.Closer must be closed to flush pending writes.
func NewLogger(opts Options) (*slog.Logger, io.Closer, error) {
	if opts.Path == "" {
		return nil, nil, fmt.Errorf("log path is empty")
	}
	lj := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}

	var w io.Writer = lj
	if opts.Console != nil {
		w = io.MultiWriter(lj, opts.Console)
	}
	return slog.New(NewHandler(w, opts.Level)), lj, nil
}

// ///////////////////////////////////////////////
// Helper Functions
// ///////////////////////////////////////////////

// Trace logs a message at LevelTrace.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Fail logs a message at LevelFail.
func Fail(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelFail, msg, args...)
}

// ///////////////////////////////////////////////
// ReadTail
// ///////////////////////////////////////////////

// ReadTail returns the last n lines of the file at path, oldest first.
func ReadTail(path string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ring := make([]string, 0, n)
	total := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(ring) < n {
			ring = append(ring, line)
		} else {
			ring[total%n] = line
		}
		total++
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading log file: %w", err)
	}

	if total <= n {
		return strings.Join(ring, "\n"), nil
	}
	start := total % n
	ordered := append(append(make([]string, 0, n), ring[start:]...), ring[:start]...)
	return strings.Join(ordered, "\n"), nil
}
