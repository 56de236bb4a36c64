package logutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	LogFileName  = "region_shot_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

type Options struct {
	Level             string
	Verbose           bool
	EnableFileLogging bool
	// Dir holds the log file. Empty means DefaultDir().
	Dir string
	// Stderr receives verbose output. Defaults to os.Stderr.
	Stderr io.Writer
}

// Setup installs the default slog logger and returns it together with a
// closer for the log file. Without Verbose or file logging, records are
// discarded so nothing reaches the terminal.
func Setup(opts Options) (*slog.Logger, io.Closer) {
	level := ParseLevel(opts.Level)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if opts.Verbose {
		writers = append(writers, stderr)
		level = slog.LevelDebug
	}

	if opts.EnableFileLogging {
		dir := opts.Dir
		if dir == "" {
			dir = DefaultDir()
		}
		w, err := OpenRotating(filepath.Join(dir, LogFileName))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log file: %v\n", err)
		} else {
			writers = append(writers, w)
			closer = w
		}
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("run_id", uuid.NewString())
	slog.SetDefault(logger)
	return logger, closer
}

// ParseLevel maps "debug", "info", "warn" and "error"; anything else is info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultDir is $XDG_CACHE_HOME/region-shot, falling back to the temp dir.
func DefaultDir() string {
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "region-shot")
	}
	return filepath.Join(os.TempDir(), "region-shot")
}

// RotatingWriter appends to a file and rotates it once it would grow past
// 10 MB, keeping .1 to .3 archives.
type RotatingWriter struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func OpenRotating(path string) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	rotateIfNeeded(path, 0)
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	return &RotatingWriter{path: path, f: f}, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		rotateIfNeeded(w.path, int64(len(p)))
		// The old handle stays usable until the new file is open; on
		// failure writes keep going to it and rotation is retried next time.
		if nf, err := openFile(w.path); err == nil {
			_ = w.f.Close()
			w.f = nf
		}
	}
	return w.f.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

func rotateIfNeeded(path string, incoming int64) {
	st, err := os.Stat(path)
	if err != nil || st.Size()+incoming <= maxSizeBytes {
		return
	}
	// .3 is dropped, the rest shift up, the live file becomes .1
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }

// swapped in tests
var openFile = func(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
