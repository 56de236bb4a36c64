package gui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"region-shot/src/process"
)

// Selector lets the user draw a rectangle and reports its geometry.
// cancelled is true when no geometry was produced.
type Selector interface {
	Select(ctx context.Context) (geometry string, cancelled bool, err error)
}

// CommandSelector runs an interactive selection tool such as slurp with no
// arguments and reads the geometry from its stdout.
type CommandSelector struct {
	Runner  process.Runner
	Command string
	Logger  *slog.Logger
}

func (s CommandSelector) Select(ctx context.Context) (string, bool, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("starting interactive region selection", "command", s.Command)
	res, err := s.Runner.Run(ctx, s.Command)
	geometry := strings.TrimSpace(string(res.Stdout))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", false, ctxErr
	}

	// slurp exits non-zero on Escape; only the output decides.
	if geometry == "" {
		switch {
		case errors.Is(err, process.ErrNotFound):
			logger.Warn("region selector not available", "command", s.Command, "error", err)
		case err != nil:
			logger.Debug("region selector exited without a selection", "error", err)
		}
		return "", true, nil
	}

	if err != nil {
		logger.Warn("region selector reported an error but produced a geometry", "error", err)
	}
	logger.Debug("region selected", "geometry", geometry)
	return geometry, false, nil
}
