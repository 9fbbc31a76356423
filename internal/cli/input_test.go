package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"assetforge/internal/bundle"
	"assetforge/internal/config"
	"assetforge/internal/mapc"
)

func TestResolveWorkDir(t *testing.T) {
	base := t.TempDir()

	wd, err := resolveWorkDir(base, "")
	if err != nil || wd != filepath.Clean(base) {
		t.Fatalf("expected base work dir, got %q (%v)", wd, err)
	}

	wd, err = resolveWorkDir(base, "sub/../assets")
	if err != nil || wd != filepath.Join(base, "assets") {
		t.Fatalf("expected relative flag under base, got %q (%v)", wd, err)
	}

	other := t.TempDir()
	wd, err = resolveWorkDir(base, other)
	if err != nil || wd != filepath.Clean(other) {
		t.Fatalf("expected absolute flag as-is, got %q (%v)", wd, err)
	}

	if _, err := resolveWorkDir("", ""); ExitCode(err) != ExitInvalidInvocation {
		t.Fatalf("expected invalid invocation without any work dir, got %v", err)
	}
	if _, err := resolveWorkDir("", "relative"); ExitCode(err) != ExitInvalidInvocation {
		t.Fatalf("expected invalid invocation for relative work dir, got %v", err)
	}
}

func TestResolveUnderWorkDir_NotCwd(t *testing.T) {
	workDir := t.TempDir()
	otherCwd := t.TempDir()

	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })
	if err := os.Chdir(otherCwd); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}

	got, err := resolveUnderWorkDir(workDir, "./assets/../assets/bundled.h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(workDir, "assets", "bundled.h") {
		t.Fatalf("expected path under workdir, got %q", got)
	}
	if _, err := resolveUnderWorkDir(workDir, "  "); ExitCode(err) != ExitInvalidInvocation {
		t.Fatalf("expected invalid invocation for blank path, got %v", err)
	}
}

func TestExitCode_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{invalidInvocationf("bad"), ExitInvalidInvocation},
		{&InvocationError{Message: "no code"}, ExitInvalidInvocation},
		{fmt.Errorf("%w: wrap", config.ErrInvalidConfig), ExitConfigError},
		{&bundle.Error{Kind: bundle.ErrUnknownProfile}, ExitConfigError},
		{&bundle.Error{Kind: bundle.ErrDirectoryNotFound, Path: "assets"}, ExitRunFailure},
		{&bundle.Error{Kind: bundle.ErrInvalidIdentifier}, ExitRunFailure},
		{&bundle.Error{Kind: bundle.ErrStale}, ExitRunFailure},
		{errors.Join(&mapc.Error{Kind: mapc.ErrToolFailed, Map: "m", Tool: "vis", ExitCode: 1}), ExitRunFailure},
		{fmt.Errorf("execution cancelled: %w", context.Canceled), ExitRunFailure},
		{fmt.Errorf("%w: trace.json", ErrTraceOutput), ExitRunFailure},
		{errors.New("unexpected"), ExitInternalError},
	}
	for i, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("case %d (%v): expected %d, got %d", i, tc.err, tc.want, got)
		}
	}
}
