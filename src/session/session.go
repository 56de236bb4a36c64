package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"region-shot/src/gui"
	"region-shot/src/notification"
	"region-shot/src/screenshot"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrCaptureFailed      = errors.New("capture failed")
)

// State is a step of one invocation.
type State int

const (
	StateStart State = iota
	StateDirReady
	StateSelecting
	StateCapturing
	StateCanceled
	StateSaved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateDirReady:
		return "dir_ready"
	case StateSelecting:
		return "selecting"
	case StateCapturing:
		return "capturing"
	case StateCanceled:
		return "canceled"
	case StateSaved:
		return "saved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of an invocation.
type Outcome int

const (
	OutcomeSaved Outcome = iota
	OutcomeCanceled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "failed"
	}
}

// ExitCode is 0 for a saved or canceled capture and 1 for a failure.
func (o Outcome) ExitCode() int {
	if o == OutcomeFailed {
		return 1
	}
	return 0
}

type Options struct {
	Dir      string
	Clock    clockwork.Clock
	Selector gui.Selector
	Capturer screenshot.Capturer
	Notifier notification.Notifier
	// AfterSave runs once the file exists, before the success notification.
	// Its error is logged only.
	AfterSave func(path string) error
	// EnsureDir defaults to screenshot.EnsureDir.
	EnsureDir func(dir string) error
	Logger    *slog.Logger
	// OnState observes every state transition.
	OnState func(State)
}

type Result struct {
	Outcome  Outcome
	Path     string
	Geometry string
}

// Execute runs one capture: build the path, ensure the directory, select,
// capture, notify.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Selector == nil {
		return Result{Outcome: OutcomeFailed}, errors.New("Selector is required")
	}
	if opts.Capturer == nil {
		return Result{Outcome: OutcomeFailed}, errors.New("Capturer is required")
	}
	if opts.Notifier == nil {
		return Result{Outcome: OutcomeFailed}, errors.New("Notifier is required")
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ensureDir := opts.EnsureDir
	if ensureDir == nil {
		ensureDir = screenshot.EnsureDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	enter := func(s State) {
		logger.Debug("state", "state", s.String())
		if opts.OnState != nil {
			opts.OnState(s)
		}
	}
	notify := func(body string) {
		// Fire-and-forget; an interrupted run still gets its message.
		if err := opts.Notifier.Notify(context.WithoutCancel(ctx), notification.Title, body); err != nil {
			logger.Warn("notification failed", "error", err)
		}
	}

	enter(StateStart)
	path := screenshot.BuildPath(clock.Now(), opts.Dir)
	result := Result{Path: path}

	// Best-effort: a failure here surfaces as a capture failure later.
	if err := ensureDir(opts.Dir); err != nil {
		logger.Warn("could not create screenshot directory", "dir", opts.Dir, "error", err)
	}
	enter(StateDirReady)

	enter(StateSelecting)
	geometry, cancelled, err := opts.Selector.Select(ctx)
	if err != nil {
		enter(StateFailed)
		notify(notification.FailedMessage)
		result.Outcome = OutcomeFailed
		return result, fmt.Errorf("region selection failed: %w", err)
	}
	if cancelled {
		enter(StateCanceled)
		logger.Info("selection cancelled")
		notify(notification.CancelledMessage)
		result.Outcome = OutcomeCanceled
		return result, ErrSelectionCancelled
	}
	result.Geometry = geometry

	if region, err := screenshot.ParseGeometry(geometry); err == nil {
		logger.Debug("capturing region", "region", region.String(), "path", path)
	} else {
		logger.Debug("capturing unparsed geometry", "geometry", geometry, "path", path)
	}

	enter(StateCapturing)
	if err := opts.Capturer.Capture(ctx, geometry, path); err != nil {
		enter(StateFailed)
		logger.Error("capture failed", "path", path, "error", err)
		notify(notification.FailedMessage)
		result.Outcome = OutcomeFailed
		return result, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	if opts.AfterSave != nil {
		if err := opts.AfterSave(path); err != nil {
			logger.Warn("post-save step failed", "path", path, "error", err)
		}
	}

	enter(StateSaved)
	logger.Info("screenshot saved", "path", path)
	notify(notification.SavedMessage(path))
	result.Outcome = OutcomeSaved
	return result, nil
}
