package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"assetforge/internal/config"
	"assetforge/internal/trace"
)

// Version is reported by "assetforge version".
const Version = "1.0.0"

// app is the state shared by one command tree. Nothing here is global, so
// tests can build many trees side by side.
type app struct {
	opts Options

	workDirFlag string
	verbose     bool

	workDir string
	cfg     config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the assetforge command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "assetforge",
		Short: "Bundle game assets into C source and drive the level compilers",
		Long: `assetforge packs binary assets (bitmaps, compiled levels) into a generated
C header of byte arrays, and runs the qbsp, light and vis level compilers
before copying the resulting .bsp into the asset tree.

Relative paths resolve against --workdir (default: the directory assetforge
was started in). Settings may also come from ASSETFORGE_* environment
variables; flags take precedence.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return invalidInvocationf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})

	root.PersistentFlags().StringVar(&a.workDirFlag, "workdir", "", "Base directory for relative paths")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output (debug logs, streamed tool output)")

	root.AddCommand(
		newBundleCommand(a),
		newVerifyCommand(a),
		newCompileCommand(a),
		newVersionCommand(),
	)
	return root
}

// prepare canonicalizes the shared inputs before any subcommand runs.
func (a *app) prepare(cmd *cobra.Command, _ []string) error {
	wd, err := resolveWorkDir(a.opts.WorkDir, a.workDirFlag)
	if err != nil {
		return err
	}
	a.workDir = wd
	a.cfg = config.Load()
	a.logger = newLogger(a.opts.Stderr, a.cfg.LogLevel, a.verbose)
	return nil
}

func (a *app) path(p string) (string, error) {
	return resolveUnderWorkDir(a.workDir, p)
}

// withTrace runs fn with a recorder when tracePath is set and writes the
// trace afterwards, including after a failed run.
func (a *app) withTrace(command, tracePath string, fn func(sink trace.Sink) error) error {
	if tracePath == "" {
		return fn(trace.NopSink{})
	}
	resolved, err := a.path(tracePath)
	if err != nil {
		return err
	}

	rec := trace.NewRecorder()
	runErr := fn(rec)
	if err := trace.WriteFile(resolved, rec.Trace(command)); err != nil {
		traceErr := fmt.Errorf("%w: %s: %v", ErrTraceOutput, resolved, err)
		if runErr == nil {
			return traceErr
		}
		a.logger.Error("trace not written", "path", resolved, "error", err)
	}
	return runErr
}

func maxPositional(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return invalidInvocationf("unexpected positional arguments: %q", args[n:])
		}
		return nil
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  maxPositional(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "assetforge %s\n", Version)
			return nil
		},
	}
}
