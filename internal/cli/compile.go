package cli

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"assetforge/internal/bundle"
	"assetforge/internal/mapc"
	"assetforge/internal/trace"
)

type compileFlags struct {
	mapDir   string
	assetDir string
	toolsDir string
	all      bool
	bundle   bool
	trace    string
}

func newCompileCommand(a *app) *cobra.Command {
	f := &compileFlags{}
	cmd := &cobra.Command{
		Use:   "compile [mapname]",
		Short: "Run qbsp, light and vis on a map and copy the .bsp into the asset tree",
		Long: `Compile one map (or every .map in --map-dir with --all) by running the
qbsp, light and vis tools in order inside the map directory. A failing tool
aborts that map; other maps in a batch still compile and keep their copied
output. Tools are looked up in --tools-dir (default: the map directory) and
may be overridden with ASSETFORGE_QBSP, ASSETFORGE_LIGHT and ASSETFORGE_VIS.`,
		Args: maxPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case f.all && len(args) > 0:
				return invalidInvocationf("a map name and --all are mutually exclusive")
			case !f.all && len(args) == 0:
				return invalidInvocationf("a map name or --all is required")
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			compiler, err := a.newCompiler(cmd, f)
			if err != nil {
				return err
			}
			return a.withTrace("compile", f.trace, func(sink trace.Sink) error {
				compiler.Trace = sink
				if err := a.runCompile(cmd.Context(), compiler, f, args); err != nil {
					return err
				}
				if !f.bundle {
					return nil
				}
				opts, err := a.cfg.BundleOptions()
				if err != nil {
					return err
				}
				dest := filepath.Join(compiler.AssetDir, bundle.DefaultDestination)
				_, err = bundle.New(opts, a.logger, sink).Bundle(compiler.AssetDir, dest)
				return err
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.mapDir, "map-dir", ".", "Directory holding the .map sources")
	fs.StringVar(&f.assetDir, "asset-dir", "", "Asset directory receiving .bsp files (default: <map-dir>/../assets)")
	fs.StringVar(&f.toolsDir, "tools-dir", "", "Directory holding qbsp, light and vis (default: the map directory)")
	fs.BoolVar(&f.all, "all", false, "Compile every .map in --map-dir")
	fs.BoolVar(&f.bundle, "bundle", false, "Re-bundle the asset directory after a successful compile")
	fs.StringVar(&f.trace, "trace", "", "Write a canonical JSON trace to this path")
	return cmd
}

func (a *app) newCompiler(cmd *cobra.Command, f *compileFlags) (*mapc.Compiler, error) {
	mapDir, err := a.path(f.mapDir)
	if err != nil {
		return nil, err
	}

	assetDir := filepath.Join(mapDir, "..", "assets")
	if f.assetDir != "" {
		if assetDir, err = a.path(f.assetDir); err != nil {
			return nil, err
		}
	}
	assetDir = filepath.Clean(assetDir)

	toolsDir := mapDir
	switch {
	case f.toolsDir != "":
		toolsDir, err = a.path(f.toolsDir)
	case a.cfg.ToolsDir != "":
		toolsDir, err = a.path(a.cfg.ToolsDir)
	}
	if err != nil {
		return nil, err
	}

	c := &mapc.Compiler{
		MapDir:   mapDir,
		AssetDir: assetDir,
		Steps:    mapc.ResolveSteps(toolsDir, a.cfg.ToolOverrides, runtime.GOOS),
		Logger:   a.logger,
	}
	if a.verbose {
		c.Stdout = cmd.OutOrStdout()
		c.Stderr = cmd.ErrOrStderr()
	}
	return c, nil
}

func (a *app) runCompile(ctx context.Context, c *mapc.Compiler, f *compileFlags, args []string) error {
	if !f.all {
		_, err := c.CompileMap(ctx, args[0])
		return err
	}

	names, err := mapc.DiscoverMaps(c.MapDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.logger.Warn("no maps found", "dir", c.MapDir)
		return nil
	}
	batch, err := c.CompileAll(ctx, names)
	if err != nil {
		a.logger.Error("compile batch failed", "failed", len(batch.Failed()), "total", len(names))
		return err
	}
	return nil
}
