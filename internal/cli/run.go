package cli

import (
	"context"
	"io"
)

// Options carries the process boundary into the command tree.
type Options struct {
	// WorkDir is the base for relative paths, captured once by main.
	WorkDir string

	Stdout io.Writer
	Stderr io.Writer
}

type CLIResult struct {
	ExitCode int
}

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error.
func Run(ctx context.Context, args []string, opts Options) (CLIResult, error) {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	root := NewRootCommand(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return CLIResult{ExitCode: ExitCode(err)}, err
}
