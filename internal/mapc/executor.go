package mapc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
)

// StepResult is the observed outcome of one tool invocation.
type StepResult struct {
	Tool     string
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// stepRunner executes pipeline steps in a fixed directory.
type stepRunner struct {
	dir string

	// env, when non-nil, is the complete tool environment. Nil inherits the
	// host environment.
	env map[string]string

	// stdout and stderr additionally receive tool output when set.
	stdout io.Writer
	stderr io.Writer
}

// run executes step with a single argument and waits for it to exit.
//
// A non-zero exit is reported through StepResult.ExitCode with a nil error.
// The error is non-nil only when the tool could not be started or the
// context was cancelled.
func (r *stepRunner) run(ctx context.Context, step Step, arg string) (*StepResult, error) {
	cmd := exec.CommandContext(ctx, step.Path, arg)
	cmd.Dir = r.dir
	if r.env != nil {
		cmd.Env = buildEnv(r.env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, r.stdout)
	cmd.Stderr = tee(&stderr, r.stderr)

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("execution cancelled: %w", ctxErr)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		exitCode = exitErr.ExitCode()
	}

	return &StepResult{
		Tool:     step.Name,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// buildEnv returns the declared variables as sorted KEY=value pairs.
// An empty map yields an empty, not inherited, environment.
func buildEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// tail returns at most the last n bytes of b, trimmed of surrounding newlines.
func tail(b []byte, n int) string {
	b = bytes.Trim(b, "\r\n")
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
