package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"assetforge/internal/bundle"
	"assetforge/internal/config"
	"assetforge/internal/trace"
)

// bundleFlags are shared by bundle and verify.
type bundleFlags struct {
	source     string
	profile    string
	extensions []string
	prefix     string
	wrap       int
	trace      string
}

func (f *bundleFlags) register(cmd *cobra.Command, withTrace bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.source, "source", ".", "Asset source directory")
	fs.StringVar(&f.profile, "profile", bundle.ProfileArray, "Output profile: array|string")
	fs.StringSliceVar(&f.extensions, "ext", bundle.DefaultExtensions, "Comma separated file extensions to bundle")
	fs.StringVar(&f.prefix, "prefix", bundle.DefaultPrefix, "Identifier prefix")
	fs.IntVar(&f.wrap, "wrap", bundle.DefaultWrap, "Column width of generated literals")
	if withTrace {
		fs.StringVar(&f.trace, "trace", "", "Write a canonical JSON trace to this path")
	}
}

// apply overlays explicitly set flags on cfg.
func (f *bundleFlags) apply(cmd *cobra.Command, cfg config.Config) config.Config {
	fs := cmd.Flags()
	if fs.Changed("profile") {
		cfg.Profile = f.profile
	}
	if fs.Changed("ext") {
		cfg.Extensions = config.ParseExtensions(strings.Join(f.extensions, ","))
	}
	if fs.Changed("prefix") {
		cfg.Prefix = f.prefix
	}
	if fs.Changed("wrap") {
		cfg.Wrap = f.wrap
	}
	return cfg
}

// bundleTarget is a canonical bundle or verify invocation.
type bundleTarget struct {
	sourceDir string
	destPath  string
	opts      bundle.Options
}

func (a *app) bundleTarget(cmd *cobra.Command, f *bundleFlags, args []string) (bundleTarget, error) {
	cfg := f.apply(cmd, a.cfg)
	if err := cfg.Validate(); err != nil {
		return bundleTarget{}, err
	}
	opts, err := cfg.BundleOptions()
	if err != nil {
		return bundleTarget{}, err
	}

	src, err := a.path(f.source)
	if err != nil {
		return bundleTarget{}, err
	}
	dest := filepath.Join(src, bundle.DefaultDestination)
	if len(args) == 1 {
		if dest, err = a.path(args[0]); err != nil {
			return bundleTarget{}, err
		}
	}
	return bundleTarget{sourceDir: src, destPath: dest, opts: opts}, nil
}

func newBundleCommand(a *app) *cobra.Command {
	f := &bundleFlags{}
	cmd := &cobra.Command{
		Use:   "bundle [destination]",
		Short: "Pack asset files into a generated C source file",
		Long: `Pack every allow-listed file of the source directory into one generated C
file. Files are processed in lexicographic order; output is reproducible
byte-for-byte. The destination defaults to bundled.h inside the source
directory and is replaced atomically.`,
		Args: maxPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.bundleTarget(cmd, f, args)
			if err != nil {
				return err
			}
			return a.withTrace("bundle", f.trace, func(sink trace.Sink) error {
				_, err := bundle.New(target.opts, a.logger, sink).Bundle(target.sourceDir, target.destPath)
				return err
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newVerifyCommand(a *app) *cobra.Command {
	f := &bundleFlags{}
	cmd := &cobra.Command{
		Use:   "verify [destination]",
		Short: "Check that a generated file matches its asset directory",
		Args:  maxPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.bundleTarget(cmd, f, args)
			if err != nil {
				return err
			}
			_, err = bundle.New(target.opts, a.logger, nil).Verify(target.sourceDir, target.destPath)
			return err
		},
	}
	f.register(cmd, false)
	return cmd
}
