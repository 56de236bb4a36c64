package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key the loader reads so host settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SCREENSHOT_DIR", "SELECTOR_CMD", "CAPTURE_CMD", "NOTIFY_CMD",
		"CAPTURE_BACKEND", "NOTIFY_BACKEND", "CAPTURE_TIMEOUT", "NOTIFY_TIMEOUT",
		"COPY_TO_CLIPBOARD", "CLIPBOARD_HOLD", "ENABLE_FILE_LOGGING", "LOG_LEVEL", EnvPathEnvVar,
	}
	for _, k := range keys {
		t.Setenv(k, "x") // registers restore on cleanup
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Pictures", "Screenshots"), cfg.ScreenshotDir)
	assert.Equal(t, "slurp", cfg.SelectorCmd)
	assert.Equal(t, "grim", cfg.CaptureCmd)
	assert.Equal(t, "notify-send", cfg.NotifyCmd)
	assert.Equal(t, CaptureBackendGrim, cfg.CaptureBackend)
	assert.Equal(t, NotifyBackendExec, cfg.NotifyBackend)
	assert.Equal(t, 30*time.Second, cfg.CaptureTimeout)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.False(t, cfg.CopyToClipboard)
	assert.Equal(t, 30*time.Second, cfg.ClipboardHold)
	assert.False(t, cfg.EnableFileLogging)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Verbose)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCREENSHOT_DIR", "/tmp/shots")
	t.Setenv("SELECTOR_CMD", "my-slurp")
	t.Setenv("CAPTURE_BACKEND", "Native")
	t.Setenv("NOTIFY_BACKEND", "dbus")
	t.Setenv("CAPTURE_TIMEOUT", "2m")
	t.Setenv("COPY_TO_CLIPBOARD", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shots", cfg.ScreenshotDir)
	assert.Equal(t, "my-slurp", cfg.SelectorCmd)
	assert.Equal(t, CaptureBackendNative, cfg.CaptureBackend)
	assert.Equal(t, NotifyBackendDBus, cfg.NotifyBackend)
	assert.Equal(t, 2*time.Minute, cfg.CaptureTimeout)
	assert.True(t, cfg.CopyToClipboard)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadOptionsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCREENSHOT_DIR", "/tmp/from-env")
	t.Setenv("CAPTURE_BACKEND", "grim")
	t.Setenv("COPY_TO_CLIPBOARD", "true")

	off := false
	cfg, err := LoadWithOptions(LoadOptions{
		DirOverride:            "/tmp/from-flag",
		CaptureBackendOverride: "native",
		NotifyBackendOverride:  "dbus",
		ClipboardOverride:      &off,
		Verbose:                true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-flag", cfg.ScreenshotDir)
	assert.Equal(t, CaptureBackendNative, cfg.CaptureBackend)
	assert.Equal(t, NotifyBackendDBus, cfg.NotifyBackend)
	assert.False(t, cfg.CopyToClipboard)
	assert.True(t, cfg.Verbose)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "region-shot.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SCREENSHOT_DIR=/tmp/from-file\nNOTIFY_CMD=my-notify\n"), 0o600))
	t.Setenv(EnvPathEnvVar, envFile)
	// godotenv.Load sets process variables; make sure they are restored.
	t.Setenv("SCREENSHOT_DIR", "x")
	t.Setenv("NOTIFY_CMD", "x")
	require.NoError(t, os.Unsetenv("SCREENSHOT_DIR"))
	require.NoError(t, os.Unsetenv("NOTIFY_CMD"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-file", cfg.ScreenshotDir)
	assert.Equal(t, "my-notify", cfg.NotifyCmd)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "UnknownCaptureBackend", key: "CAPTURE_BACKEND", value: "scrot"},
		{name: "UnknownNotifyBackend", key: "NOTIFY_BACKEND", value: "toast"},
		{name: "NonPositiveTimeout", key: "CAPTURE_TIMEOUT", value: "0s"},
		{name: "BlankSelector", key: "SELECTOR_CMD", value: "   "},
		{name: "MalformedDuration", key: "NOTIFY_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SCREENSHOT_DIR", "/tmp/shots")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsNonPositiveClipboardHold(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCREENSHOT_DIR", "/tmp/shots")
	t.Setenv("COPY_TO_CLIPBOARD", "true")
	t.Setenv("CLIPBOARD_HOLD", "0s")

	_, err := Load()
	assert.ErrorContains(t, err, "CLIPBOARD_HOLD")
}

func TestValidateReportsFirstEmptyCommandInOrder(t *testing.T) {
	cfg := &Config{
		SelectorCmd:    " ",
		CaptureCmd:     "",
		NotifyCmd:      "",
		CaptureBackend: CaptureBackendGrim,
		NotifyBackend:  NotifyBackendExec,
		CaptureTimeout: time.Second,
		NotifyTimeout:  time.Second,
	}

	for i := 0; i < 20; i++ {
		err := validate(cfg)
		require.Error(t, err)
		assert.Equal(t, "SELECTOR_CMD must not be empty", err.Error())
	}

	cfg.SelectorCmd = "slurp"
	assert.EqualError(t, validate(cfg), "CAPTURE_CMD must not be empty")
}

func TestResolveScreenshotDirExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: filepath.Join(home, "Pictures", "Screenshots")},
		{in: "~", want: home},
		{in: "~/shots", want: filepath.Join(home, "shots")},
		{in: "/var/tmp/shots/", want: "/var/tmp/shots"},
	}

	for _, tt := range tests {
		got, err := resolveScreenshotDir(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
