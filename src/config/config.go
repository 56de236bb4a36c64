package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	EnvPathEnvVar = "REGION_SHOT_ENV"

	CaptureBackendGrim   = "grim"
	CaptureBackendNative = "native"
	NotifyBackendExec    = "exec"
	NotifyBackendDBus    = "dbus"
)

// LoadOptions carries command-line overrides. Non-empty values win over the
// environment and the .env file.
type LoadOptions struct {
	DirOverride            string
	CaptureBackendOverride string
	NotifyBackendOverride  string
	ClipboardOverride      *bool
	Verbose                bool
}

type Config struct {
	ScreenshotDir     string        `env:"SCREENSHOT_DIR"`
	SelectorCmd       string        `env:"SELECTOR_CMD" default:"slurp"`
	CaptureCmd        string        `env:"CAPTURE_CMD" default:"grim"`
	NotifyCmd         string        `env:"NOTIFY_CMD" default:"notify-send"`
	CaptureBackend    string        `env:"CAPTURE_BACKEND" default:"grim"`
	NotifyBackend     string        `env:"NOTIFY_BACKEND" default:"exec"`
	CaptureTimeout    time.Duration `env:"CAPTURE_TIMEOUT" default:"30s"`
	NotifyTimeout     time.Duration `env:"NOTIFY_TIMEOUT" default:"5s"`
	CopyToClipboard   bool          `env:"COPY_TO_CLIPBOARD" default:"false"`
	ClipboardHold     time.Duration `env:"CLIPBOARD_HOLD" default:"30s"`
	EnableFileLogging bool          `env:"ENABLE_FILE_LOGGING" default:"false"`
	LogLevel          string        `env:"LOG_LEVEL" default:"info"`

	// Verbose is set from the command line only.
	Verbose bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) command-line overrides
	// 2) process environment
	// 3) .env in the executable directory, or the file named by REGION_SHOT_ENV
	if envPath := resolveEnvPath(); envPath != "" {
		// godotenv.Load never overrides variables already set.
		_ = godotenv.Load(envPath)
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	applyOverrides(&cfg, opts)

	dir, err := resolveScreenshotDir(cfg.ScreenshotDir)
	if err != nil {
		return nil, err
	}
	cfg.ScreenshotDir = dir
	cfg.CaptureBackend = strings.ToLower(strings.TrimSpace(cfg.CaptureBackend))
	cfg.NotifyBackend = strings.ToLower(strings.TrimSpace(cfg.NotifyBackend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyOverrides(cfg *Config, opts LoadOptions) {
	if v := strings.TrimSpace(opts.DirOverride); v != "" {
		cfg.ScreenshotDir = v
	}
	if v := strings.TrimSpace(opts.CaptureBackendOverride); v != "" {
		cfg.CaptureBackend = v
	}
	if v := strings.TrimSpace(opts.NotifyBackendOverride); v != "" {
		cfg.NotifyBackend = v
	}
	if opts.ClipboardOverride != nil {
		cfg.CopyToClipboard = *opts.ClipboardOverride
	}
	cfg.Verbose = opts.Verbose
}

func validate(cfg *Config) error {
	switch cfg.CaptureBackend {
	case CaptureBackendGrim, CaptureBackendNative:
	default:
		return fmt.Errorf("CAPTURE_BACKEND must be %q or %q, got %q", CaptureBackendGrim, CaptureBackendNative, cfg.CaptureBackend)
	}

	switch cfg.NotifyBackend {
	case NotifyBackendExec, NotifyBackendDBus:
	default:
		return fmt.Errorf("NOTIFY_BACKEND must be %q or %q, got %q", NotifyBackendExec, NotifyBackendDBus, cfg.NotifyBackend)
	}

	required := []struct{ name, value string }{
		{"SELECTOR_CMD", cfg.SelectorCmd},
		{"CAPTURE_CMD", cfg.CaptureCmd},
		{"NOTIFY_CMD", cfg.NotifyCmd},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s must not be empty", r.name)
		}
	}

	if cfg.CaptureTimeout <= 0 {
		return fmt.Errorf("CAPTURE_TIMEOUT must be positive, got %s", cfg.CaptureTimeout)
	}
	if cfg.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive, got %s", cfg.NotifyTimeout)
	}
	if cfg.CopyToClipboard && cfg.ClipboardHold <= 0 {
		return fmt.Errorf("CLIPBOARD_HOLD must be positive, got %s", cfg.ClipboardHold)
	}

	return nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolveScreenshotDir falls back to ~/Pictures/Screenshots and expands a
// leading "~".
func resolveScreenshotDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir != "" && dir != "~" && !strings.HasPrefix(dir, "~/") {
		return filepath.Clean(dir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	switch {
	case dir == "":
		return DefaultScreenshotDir(home), nil
	case dir == "~":
		return home, nil
	default:
		return filepath.Join(home, dir[2:]), nil
	}
}

// DefaultScreenshotDir returns ~/Pictures/Screenshots for the given home.
func DefaultScreenshotDir(home string) string {
	return filepath.Join(home, "Pictures", "Screenshots")
}
