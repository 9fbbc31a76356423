// Package config resolves assetforge settings from defaults and the
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xyproto/env/v2"

	"assetforge/internal/bundle"
)

// Environment variable names.
const (
	EnvProfile    = "ASSETFORGE_PROFILE"
	EnvExtensions = "ASSETFORGE_EXTENSIONS"
	EnvPrefix     = "ASSETFORGE_PREFIX"
	EnvWrap       = "ASSETFORGE_WRAP"
	EnvToolsDir   = "ASSETFORGE_TOOLS_DIR"
	EnvLogLevel   = "ASSETFORGE_LOG_LEVEL"

	// Per-tool overrides take an executable path.
	EnvQBSP  = "ASSETFORGE_QBSP"
	EnvLight = "ASSETFORGE_LIGHT"
	EnvVis   = "ASSETFORGE_VIS"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Profile    string
	Extensions []string
	Prefix     string
	Wrap       int

	// ToolsDir holds the level compilers. Empty means the map directory.
	ToolsDir string

	// ToolOverrides maps a tool name (qbsp, light, vis) to an explicit path.
	ToolOverrides map[string]string

	LogLevel string
}

// Default returns the settings that reproduce the legacy scripts.
func Default() Config {
	return Config{
		Profile:       bundle.ProfileArray,
		Extensions:    append([]string(nil), bundle.DefaultExtensions...),
		Prefix:        bundle.DefaultPrefix,
		Wrap:          bundle.DefaultWrap,
		ToolOverrides: map[string]string{},
		LogLevel:      "info",
	}
}

// Load returns Default overridden by any ASSETFORGE_* environment variables.
func Load() Config {
	c := Default()
	c.Profile = env.Str(EnvProfile, c.Profile)
	if env.Has(EnvExtensions) {
		c.Extensions = ParseExtensions(env.Str(EnvExtensions))
	}
	if env.Has(EnvPrefix) {
		c.Prefix = env.Str(EnvPrefix)
	}
	c.Wrap = env.Int(EnvWrap, c.Wrap)
	c.ToolsDir = env.Str(EnvToolsDir, c.ToolsDir)
	c.LogLevel = env.Str(EnvLogLevel, c.LogLevel)

	for tool, name := range map[string]string{"qbsp": EnvQBSP, "light": EnvLight, "vis": EnvVis} {
		if p := strings.TrimSpace(env.Str(name)); p != "" {
			c.ToolOverrides[tool] = p
		}
	}
	return c
}

// ParseExtensions splits a comma separated list, trimming blanks.
// Entries without a leading dot get one.
func ParseExtensions(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	return out
}

// Validate reports the first setting that cannot drive a run.
func (c Config) Validate() error {
	if _, err := bundle.ProfileByName(c.Profile); err != nil {
		return invalidf("profile: %v", err)
	}
	if err := bundle.ValidateExtensions(c.Extensions); err != nil {
		return invalidf("extensions: %v", err)
	}
	if c.Prefix != "" && !bundle.IsIdentifier(c.Prefix) {
		return invalidf("prefix %q is not a valid symbol name", c.Prefix)
	}
	if c.Wrap <= 0 {
		return invalidf("wrap width must be positive (got %d)", c.Wrap)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return invalidf("log level %q (expected debug|info|warn|error)", c.LogLevel)
	}
	return nil
}

// BundleOptions converts the settings for the bundler. Call Validate first.
func (c Config) BundleOptions() (bundle.Options, error) {
	p, err := bundle.ProfileByName(c.Profile)
	if err != nil {
		return bundle.Options{}, invalidf("profile: %v", err)
	}
	return bundle.Options{
		Profile:    p,
		Extensions: append([]string(nil), c.Extensions...),
		Prefix:     c.Prefix,
		Wrap:       c.Wrap,
	}, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
