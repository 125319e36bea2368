package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaa/music-convert/internal/adapters/ffmpeg"
	"github.com/jaa/music-convert/internal/adapters/flacdec"
	"github.com/jaa/music-convert/internal/adapters/lame"
	"github.com/jaa/music-convert/internal/adapters/oggdec"
	"github.com/jaa/music-convert/internal/batch"
	"github.com/jaa/music-convert/internal/config"
	"github.com/jaa/music-convert/internal/encode"
	"github.com/jaa/music-convert/internal/exitcode"
	"github.com/jaa/music-convert/internal/output"
)

func newConvertCommand(app *AppContext) *cobra.Command {
	var workers int
	var timeout time.Duration
	var noSummary bool

	cmd := &cobra.Command{
		Use:   "convert <source-dir>",
		Short: "Convert a directory of albums and file them into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if cmd.Flags().Changed("workers") {
				if workers <= 0 {
					return withExitCode(exitcode.InvalidUsage, fmt.Errorf("--workers must be positive"))
				}
				cfg.Defaults.Workers = workers
			}
			if cmd.Flags().Changed("timeout") {
				if timeout <= 0 {
					return withExitCode(exitcode.InvalidUsage, fmt.Errorf("--timeout must be positive"))
				}
				cfg.Defaults.CommandTimeoutSeconds = int(timeout / time.Second)
			}

			sourceDir, err := filepath.Abs(args[0])
			if err != nil {
				return withExitCode(exitcode.InvalidUsage, fmt.Errorf("resolve source dir: %w", err))
			}

			var emitter output.EventEmitter
			if app.Opts.JSON {
				emitter = output.NewJSONEmitter(app.IO.Out)
			} else {
				emitter = output.NewHumanEmitter(app.IO.Out, app.IO.ErrOut, app.Opts.Quiet, app.Opts.Verbose)
			}

			var runnerStdout, runnerStderr io.Writer
			if app.Opts.Verbose && !app.Opts.JSON {
				runnerStdout = app.IO.Out
				runnerStderr = app.IO.ErrOut
			}
			runner := encode.NewSubprocessRunner(runnerStdout, runnerStderr)

			registry := encode.NewRegistry(
				lame.New(),
				oggdec.New(),
				flacdec.New(),
				ffmpeg.New(),
			)
			engine := encode.NewEngine(registry, runner)
			prober := encode.NewFFProbeProber(encode.NewSubprocessRunner(nil, nil))

			orch := batch.New(cfg, engine, prober, emitter)
			orch.DryRun = app.Opts.DryRun

			ctx, stop := signal.NotifyContext(context.Background(), interruptSignals()...)
			defer stop()

			report, runErr := orch.Run(ctx, sourceDir)

			if report != nil && !app.Opts.JSON && !noSummary {
				output.RenderSummary(app.IO.Out, report.SummaryRows(), report.Counts())
			}

			if runErr != nil {
				var encErr *encode.Error
				switch {
				case errors.Is(runErr, context.Canceled):
					return withExitCode(exitcode.Interrupted, errors.New("interrupted"))
				case errors.As(runErr, &encErr) && encErr.BatchFatal():
					return withExitCode(exitcode.MissingTool, runErr)
				case errors.As(runErr, &encErr) && encErr.Reason == encode.ReasonInterrupted:
					return withExitCode(exitcode.Interrupted, runErr)
				case errors.Is(runErr, batch.ErrLibraryLocked):
					return withExitCode(exitcode.RuntimeFailure, runErr)
				default:
					return withExitCode(exitcode.RuntimeFailure, runErr)
				}
			}

			if report.HasFailures() {
				counts := report.Counts()
				return withExitCode(exitcode.PartialFailure,
					fmt.Errorf("batch finished with %d failed track(s)", counts.Failed))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Override worker count for this run")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override per-command timeout (e.g. 10m, 1h)")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Skip the end-of-run summary table")
	return cmd
}
