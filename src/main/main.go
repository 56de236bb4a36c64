package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"region-shot/src/config"
	"region-shot/src/runtimeinit"
	"region-shot/src/session"
)

type mainOptions struct {
	dir            string
	captureBackend string
	notifyBackend  string
	clipboard      bool
	verbose        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runWithArgs(ctx, os.Args[1:], runtimeinit.Options{Stderr: os.Stderr}, os.Stderr)
	stop()
	os.Exit(code)
}

// runWithArgs returns the process exit code: 0 when the screenshot was saved
// or the selection was cancelled, 1 otherwise.
func runWithArgs(ctx context.Context, args []string, base runtimeinit.Options, stderr io.Writer) int {
	opts := &mainOptions{}
	exitCode := 0

	cmd := newRootCmd(opts)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		initOpts := base
		initOpts.LoadOptions = loadOptions(cmd, *opts)

		app, err := runtimeinit.Bootstrap(initOpts)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := session.Execute(cmd.Context(), app.Session)
		exitCode = res.Outcome.ExitCode()
		app.Finish(cmd.Context())
		if err != nil && !errors.Is(err, session.ErrSelectionCancelled) {
			return err
		}
		return nil
	}
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return exitCode
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "region-shot",
		Short:         "Capture a selected screen region to a timestamped PNG",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "Directory for screenshots (default ~/Pictures/Screenshots)")
	cmd.Flags().StringVar(&opts.captureBackend, "capture-backend", "", "Capture backend: grim or native")
	cmd.Flags().StringVar(&opts.notifyBackend, "notify-backend", "", "Notification backend: exec or dbus")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Copy the saved image to the clipboard")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func loadOptions(cmd *cobra.Command, opts mainOptions) config.LoadOptions {
	lo := config.LoadOptions{
		DirOverride:            opts.dir,
		CaptureBackendOverride: opts.captureBackend,
		NotifyBackendOverride:  opts.notifyBackend,
		Verbose:                opts.verbose,
	}
	// only an explicit --clipboard[=false] beats COPY_TO_CLIPBOARD
	if cmd.Flags().Changed("clipboard") {
		v := opts.clipboard
		lo.ClipboardOverride = &v
	}
	return lo
}
