// Package cli implements the moodify command tree.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"moodify/internal/config"
	"moodify/internal/logging"
	"moodify/internal/output"
)

const version = "1.0.0"

// UsageError marks errors caused by invalid invocation.
type UsageError struct{ Msg string }

func (e UsageError) Error() string { return e.Msg }

type globalOptions struct {
	Debug   bool
	NoColor bool
	Quiet   bool
	JSON    bool
}

type app struct {
	opts   globalOptions
	cfg    config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (a *app) output() *output.Output {
	return output.New(output.Options{
		JSON:    a.opts.JSON,
		Quiet:   a.opts.Quiet,
		NoColor: a.opts.NoColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb",
		Stdout:  a.stdout,
		Stderr:  a.stderr,
	})
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string) error {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "moodify",
		Short:         "Mood-based song recommendations with search links",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.stderr})
			if a.opts.Debug {
				enableDebugLogging(cfg.Log.Format, a.stderr)
			}
			return nil
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return UsageError{Msg: err.Error() + "\n(run with --help for usage)"}
	})

	pf := root.PersistentFlags()
	pf.BoolVar(&a.opts.Debug, "debug", false, "Enable debug logging to stderr")
	pf.BoolVar(&a.opts.NoColor, "no-color", false, "Disable colored output")
	pf.BoolVarP(&a.opts.Quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.BoolVar(&a.opts.JSON, "json", false, "Output machine-readable JSON")

	root.AddCommand(newServeCmd(a), newGenerateCmd(a), newMockCmd(a))
	return root
}
