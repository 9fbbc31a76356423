package mapc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"assetforge/internal/fsutil"
	"assetforge/internal/trace"
)

const (
	mapExt = ".map"
	bspExt = ".bsp"

	stderrTail = 2048
)

// MapStatus is the terminal state of one map compilation.
type MapStatus string

const (
	MapCompiled MapStatus = "COMPILED"
	MapFailed   MapStatus = "FAILED"
)

// MapResult records what happened to one map.
type MapResult struct {
	Name   string
	Status MapStatus

	// Steps holds the results of the tools that ran, in order.
	Steps []StepResult

	// Artifact is the path of the copied .bsp, empty on failure.
	Artifact string

	Err error
}

// BatchResult summarizes CompileAll.
type BatchResult struct {
	Maps []MapResult
}

// Failed returns the names of maps that did not compile, in batch order.
func (b *BatchResult) Failed() []string {
	var out []string
	for _, m := range b.Maps {
		if m.Status == MapFailed {
			out = append(out, m.Name)
		}
	}
	return out
}

// Compiler runs the level-compiler pipeline. All paths are explicit; the
// process working directory is neither read nor changed.
type Compiler struct {
	// MapDir holds the .map sources and is the tools' working directory.
	MapDir string

	// AssetDir receives compiled .bsp files.
	AssetDir string

	// Steps is the tool pipeline, normally from ResolveSteps.
	Steps []Step

	// Env, when non-nil, is the complete environment given to the tools.
	Env map[string]string

	// Stdout and Stderr, when set, also receive the tools' output.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
	Trace  trace.Sink
}

func (c *Compiler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// DiscoverMaps returns the names (without extension) of every .map file in
// dir, sorted.
func DiscoverMaps(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Map: dir, Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != mapExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), mapExt))
	}
	sort.Strings(names)
	return names, nil
}

// normalizeMapName accepts "testmap" or "testmap.map".
func normalizeMapName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), mapExt)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid map name %q", name)
	}
	return name, nil
}

// CompileMap runs the pipeline for one map and copies the result.
//
// The returned MapResult is always non-nil, even when err is set.
func (c *Compiler) CompileMap(ctx context.Context, name string) (*MapResult, error) {
	res := &MapResult{Name: name, Status: MapFailed}

	mapName, err := normalizeMapName(name)
	if err != nil {
		res.Err = &Error{Kind: ErrMapNotFound, Map: name, Err: err}
		return res, res.Err
	}
	res.Name = mapName

	err = c.compile(ctx, res)
	if err != nil {
		res.Err = err
		c.logger().Error("map failed", "map", mapName, "error", err)
		trace.SafeRecord(c.Trace, trace.Event{Kind: trace.EventMapFailed, Subject: mapName})
		return res, err
	}

	res.Status = MapCompiled
	c.logger().Info("map compiled", "map", mapName, "artifact", res.Artifact)
	trace.SafeRecord(c.Trace, trace.Event{
		Kind:      trace.EventMapCompiled,
		Subject:   mapName,
		Artifacts: []string{filepath.Base(res.Artifact)},
	})
	return res, nil
}

func (c *Compiler) compile(ctx context.Context, res *MapResult) error {
	input := res.Name + mapExt
	if _, err := os.Stat(filepath.Join(c.MapDir, input)); err != nil {
		return &Error{Kind: ErrMapNotFound, Map: res.Name, Err: err}
	}

	runner := &stepRunner{dir: c.MapDir, env: c.Env, stdout: c.Stdout, stderr: c.Stderr}
	for seq, step := range c.Steps {
		c.logger().Debug("running tool", "map", res.Name, "tool", step.Name, "path", step.Path)

		sr, err := runner.run(ctx, step, input)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			trace.SafeRecord(c.Trace, trace.Event{Kind: trace.EventStepFailed, Subject: res.Name, Seq: seq, Step: step.Name, ExitCode: -1})
			return &Error{Kind: ErrToolFailed, Map: res.Name, Tool: step.Name, ExitCode: -1, Err: err}
		}
		res.Steps = append(res.Steps, *sr)

		if sr.ExitCode != 0 {
			trace.SafeRecord(c.Trace, trace.Event{Kind: trace.EventStepFailed, Subject: res.Name, Seq: seq, Step: step.Name, ExitCode: sr.ExitCode})
			return &Error{
				Kind:     ErrToolFailed,
				Map:      res.Name,
				Tool:     step.Name,
				ExitCode: sr.ExitCode,
				Stderr:   tail(sr.Stderr, stderrTail),
			}
		}
		trace.SafeRecord(c.Trace, trace.Event{Kind: trace.EventStepExecuted, Subject: res.Name, Seq: seq, Step: step.Name})
	}

	artifact, err := c.copyArtifact(res.Name)
	if err != nil {
		return err
	}
	res.Artifact = artifact
	return nil
}

// copyArtifact copies <name>.bsp from MapDir into AssetDir.
func (c *Compiler) copyArtifact(name string) (string, error) {
	src := filepath.Join(c.MapDir, name+bspExt)
	dst := filepath.Join(c.AssetDir, name+bspExt)

	n, err := fsutil.CopyFile(src, dst, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, statErr := os.Stat(src); statErr != nil {
				return "", &Error{Kind: ErrArtifactMissing, Map: name, Err: statErr}
			}
		}
		return "", &Error{Kind: ErrIO, Map: name, Err: err}
	}
	c.logger().Debug("copied artifact", "map", name, "destination", dst, "bytes", n)
	return dst, nil
}

// CompileAll compiles every map in the given order, continuing past failures.
//
// Maps that compiled keep their copied artifacts regardless of later
// failures. The error joins every per-map failure. Cancellation stops the
// batch before the next map.
func (c *Compiler) CompileAll(ctx context.Context, names []string) (*BatchResult, error) {
	batch := &BatchResult{}
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("execution cancelled: %w", err))
			break
		}
		res, err := c.CompileMap(ctx, name)
		batch.Maps = append(batch.Maps, *res)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if failed := batch.Failed(); len(failed) > 0 {
		c.logger().Warn("batch finished with failures", "failed", strings.Join(failed, ","), "total", len(names))
	}
	return batch, errors.Join(errs...)
}
