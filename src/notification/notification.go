package notification

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"region-shot/src/process"
)

const Title = "Screenshot"

// Notifier shows a transient desktop message.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

func SavedMessage(path string) string { return "Saved " + filepath.Base(path) }

const (
	CancelledMessage = "Selection cancelled"
	FailedMessage    = "Capture failed"
)

// CommandNotifier runs `<Command> <title> <body>`, notify-send style.
type CommandNotifier struct {
	Runner  process.Runner
	Command string
	Timeout time.Duration
}

func (n CommandNotifier) Notify(ctx context.Context, title, body string) error {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	if _, err := n.Runner.Run(ctx, n.Command, title, body); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}
