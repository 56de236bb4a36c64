package runtimeinit

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"region-shot/src/clipboard"
	"region-shot/src/config"
	"region-shot/src/gui"
	"region-shot/src/logutil"
	"region-shot/src/notification"
	"region-shot/src/process"
	"region-shot/src/screenshot"
	"region-shot/src/session"
)

type Options struct {
	LoadOptions config.LoadOptions
	// Stderr receives verbose logs. Defaults to os.Stderr.
	Stderr io.Writer
	// Runner overrides the process runner, mainly for tests.
	Runner process.Runner
	Clock  clockwork.Clock
}

// App is a fully wired invocation.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Session session.Options
	// Clipboard is set when the saved image is copied to the clipboard.
	Clipboard *clipboard.Owner
	closer    io.Closer
}

// Finish keeps the process alive while it still serves the clipboard.
func (a *App) Finish(ctx context.Context) {
	if a.Clipboard == nil {
		return
	}
	a.Logger.Debug("holding clipboard", "hold", a.Config.ClipboardHold)
	a.Clipboard.Wait(ctx)
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func Bootstrap(opts Options) (*App, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer := logutil.Setup(logutil.Options{
		Level:             cfg.LogLevel,
		Verbose:           cfg.Verbose,
		EnableFileLogging: cfg.EnableFileLogging,
		Stderr:            opts.Stderr,
	})
	logger.Debug("configuration loaded",
		"dir", cfg.ScreenshotDir,
		"capture_backend", cfg.CaptureBackend,
		"notify_backend", cfg.NotifyBackend,
		"clipboard", cfg.CopyToClipboard)

	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner(logger)
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sess := session.Options{
		Dir:      cfg.ScreenshotDir,
		Clock:    clock,
		Selector: gui.CommandSelector{Runner: runner, Command: cfg.SelectorCmd, Logger: logger},
		Capturer: newCapturer(cfg, runner),
		Notifier: newNotifier(cfg, runner),
		Logger:   logger,
	}
	var owner *clipboard.Owner
	if cfg.CopyToClipboard {
		owner = &clipboard.Owner{Hold: cfg.ClipboardHold}
		sess.AfterSave = owner.CopyImage
	}

	return &App{Config: cfg, Logger: logger, Session: sess, Clipboard: owner, closer: closer}, nil
}

func newCapturer(cfg *config.Config, runner process.Runner) screenshot.Capturer {
	if cfg.CaptureBackend == config.CaptureBackendNative {
		return screenshot.NativeCapturer{}
	}
	return screenshot.CommandCapturer{Runner: runner, Command: cfg.CaptureCmd, Timeout: cfg.CaptureTimeout}
}

func newNotifier(cfg *config.Config, runner process.Runner) notification.Notifier {
	if cfg.NotifyBackend == config.NotifyBackendDBus {
		return notification.DBusNotifier{Timeout: cfg.NotifyTimeout}
	}
	return notification.CommandNotifier{Runner: runner, Command: cfg.NotifyCmd, Timeout: cfg.NotifyTimeout}
}
