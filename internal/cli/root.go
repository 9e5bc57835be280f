// Package cli implements the ibancheck command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ibancheck/internal/platform/logger"
)

// ExitError carries a process exit code without printing anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Streams are the process I/O handles. Tests substitute buffers.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type rootOptions struct {
	streams Streams
	debug   bool
	noColor bool
}

func (o *rootOptions) logger() *slog.Logger {
	level := "warn"
	if o.debug {
		level = "debug"
	}
	return logger.NewWithWriter(o.streams.Err, logger.Config{Level: level, Format: "text"})
}

// Execute runs the root command against the process streams and exits with
// the command's status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd(Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		reportError(os.Stderr, err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(2)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(streams Streams) *cobra.Command {
	opts := &rootOptions{streams: streams}

	cmd := &cobra.Command{
		Use:           "ibancheck",
		Short:         "Structural IBAN validation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging on stderr")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(validateCmd(opts))
	cmd.AddCommand(countriesCmd(opts))
	cmd.AddCommand(tokenCmd(opts))
	cmd.AddCommand(auditCmd(opts))
	return cmd
}

// reportError prints err unless it is a bare exit status.
func reportError(w io.Writer, err error) {
	var exitErr *ExitError
	if err == nil || errors.As(err, &exitErr) {
		return
	}
	_, _ = fmt.Fprintln(w, "error:", err)
}
