package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"assetforge/internal/bundle"
	"assetforge/internal/config"
	"assetforge/internal/mapc"
)

const (
	ExitSuccess           = 0
	ExitRunFailure        = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// ErrTraceOutput marks a failure writing the --trace file.
var ErrTraceOutput = errors.New("trace output failed")

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// resolveWorkDir picks the effective work dir: the --workdir flag when set
// (relative values resolve against base), otherwise base. The result must be
// absolute so later joins never consult the process CWD.
func resolveWorkDir(base, flagValue string) (string, error) {
	wd := strings.TrimSpace(flagValue)
	if wd == "" {
		wd = base
	} else if !filepath.IsAbs(wd) && base != "" {
		wd = filepath.Join(base, wd)
	}
	if wd == "" {
		return "", invalidInvocationf("--workdir is required")
	}
	wd = filepath.Clean(wd)
	if !filepath.IsAbs(wd) {
		return "", invalidInvocationf("--workdir must be an absolute path (got %q)", wd)
	}
	return wd, nil
}

func resolveUnderWorkDir(workDir, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", invalidInvocationf("path must not be empty")
	}
	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) {
		return clean, nil
	}
	// WorkDir is always absolute, so Join does not consult process CWD.
	return filepath.Clean(filepath.Join(workDir, clean)), nil
}

// ExitCode maps an error returned by the command tree to a semantic exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	switch {
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, bundle.ErrUnknownProfile):
		return ExitConfigError
	case errors.Is(err, bundle.ErrDirectoryNotFound),
		errors.Is(err, bundle.ErrIO),
		errors.Is(err, bundle.ErrInvalidIdentifier),
		errors.Is(err, bundle.ErrMalformed),
		errors.Is(err, bundle.ErrStale),
		errors.Is(err, mapc.ErrMapNotFound),
		errors.Is(err, mapc.ErrToolFailed),
		errors.Is(err, mapc.ErrArtifactMissing),
		errors.Is(err, mapc.ErrIO),
		errors.Is(err, ErrTraceOutput),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitRunFailure
	default:
		return ExitInternalError
	}
}
