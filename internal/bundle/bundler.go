package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"assetforge/internal/fsutil"
	"assetforge/internal/trace"
)

// DefaultDestination is the file name written inside the source directory
// when no destination is given.
const DefaultDestination = "bundled.h"

// Options configures a Bundler.
type Options struct {
	// Profile selects the generated dialect. Nil means ArrayProfile.
	Profile Profile

	// Extensions is the allow-list of file name suffixes. Empty means
	// DefaultExtensions.
	Extensions []string

	// Prefix is prepended to every identifier.
	Prefix string

	// Wrap is the column width of generated literals. Non-positive means
	// DefaultWrap.
	Wrap int
}

// DefaultOptions reproduces the legacy bundler output.
func DefaultOptions() Options {
	return Options{
		Profile:    ArrayProfile{},
		Extensions: append([]string(nil), DefaultExtensions...),
		Prefix:     DefaultPrefix,
		Wrap:       DefaultWrap,
	}
}

// Entry summarizes one bundled asset.
type Entry struct {
	Name       string
	Identifier string
	Size       int
	Digest     string
}

// Result describes a completed bundling run.
type Result struct {
	Destination string
	Entries     []Entry

	// Digest is the hex sha256 of the full generated output.
	Digest string
}

// Bundler renders asset directories into generated source.
type Bundler struct {
	opts   Options
	logger *slog.Logger
	sink   trace.Sink
}

// New returns a Bundler. Zero-valued option fields fall back to defaults.
// A nil logger discards log output; a nil sink records nothing.
func New(opts Options, logger *slog.Logger, sink trace.Sink) *Bundler {
	def := DefaultOptions()
	if opts.Profile == nil {
		opts.Profile = def.Profile
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = def.Extensions
	}
	if opts.Wrap <= 0 {
		opts.Wrap = def.Wrap
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sink == nil {
		sink = trace.NopSink{}
	}
	return &Bundler{opts: opts, logger: logger, sink: sink}
}

// Render produces the complete generated output for sourceDir in memory.
//
// Declarations appear in sorted file name order, each followed by a single
// newline. A directory with no matching files renders to empty output.
func (b *Bundler) Render(sourceDir string) ([]byte, []Entry, error) {
	assets, err := loadAssets(sourceDir, b.opts.Extensions, b.opts.Prefix)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	entries := make([]Entry, 0, len(assets))
	for _, a := range assets {
		buf.WriteString(b.opts.Profile.Declare(a.Identifier, a.Data, b.opts.Wrap))
		buf.WriteByte('\n')
		entries = append(entries, Entry{
			Name:       a.Name,
			Identifier: a.Identifier,
			Size:       len(a.Data),
			Digest:     trace.Digest(a.Data),
		})
	}
	return buf.Bytes(), entries, nil
}

// Bundle renders sourceDir and replaces destPath with the result.
//
// The destination is written only after every asset rendered successfully,
// and the write is atomic: a failed run leaves any previous destination
// untouched.
func (b *Bundler) Bundle(sourceDir, destPath string) (*Result, error) {
	out, entries, err := b.Render(sourceDir)
	if err != nil {
		return nil, err
	}
	if err := fsutil.WriteFileAtomic(destPath, out, 0o644); err != nil {
		return nil, ioError(destPath, err)
	}

	for _, e := range entries {
		b.logger.Debug("bundled asset", "asset", e.Identifier, "file", e.Name, "bytes", e.Size)
		trace.SafeRecord(b.sink, trace.Event{Kind: trace.EventAssetBundled, Subject: e.Identifier, Digest: e.Digest})
	}
	res := &Result{Destination: destPath, Entries: entries, Digest: trace.Digest(out)}
	b.logger.Info("bundle written",
		"destination", destPath,
		"assets", len(entries),
		"profile", b.opts.Profile.Name(),
		"digest", res.Digest,
	)
	return res, nil
}

// Verify renders sourceDir and compares it byte-for-byte with destPath.
// A missing or different destination is reported as ErrStale.
func (b *Bundler) Verify(sourceDir, destPath string) (*Result, error) {
	want, entries, err := b.Render(sourceDir)
	if err != nil {
		return nil, err
	}
	got, err := os.ReadFile(destPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: ErrStale, Path: destPath, Err: errors.New("destination does not exist")}
		}
		return nil, ioError(destPath, err)
	}
	if !bytes.Equal(want, got) {
		return nil, &Error{Kind: ErrStale, Path: destPath, Err: fmt.Errorf("content differs from %s", filepath.Clean(sourceDir))}
	}
	b.logger.Info("bundle up to date", "destination", destPath, "assets", len(entries))
	return &Result{Destination: destPath, Entries: entries, Digest: trace.Digest(got)}, nil
}

// Decode parses generated output of the given profile.
func Decode(p Profile, text []byte) ([]Declaration, error) {
	if p == nil {
		p = ArrayProfile{}
	}
	return p.Decode(string(text))
}
