package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPrefix is the namespace token prepended to every identifier.
const DefaultPrefix = "ASSET_"

// DefaultExtensions is the allow-list used when none is configured.
var DefaultExtensions = []string{".bmp", ".bsp"}

// AssetFile is one selected input file. It is read once and never mutated.
type AssetFile struct {
	// Name is the base file name (stem + extension).
	Name string

	// Ext is the extension that matched the allow-list.
	Ext string

	// Identifier is the derived symbol name.
	Identifier string

	// Data is the raw file content.
	Data []byte
}

// DeriveIdentifier maps a file name to its symbol name: the final extension
// is stripped, the stem upper-cased and prefixed.
//
//	DeriveIdentifier("ASSET_", "player.bmp")  == "ASSET_PLAYER"
//	DeriveIdentifier("ASSET_", "testmap.bsp") == "ASSET_TESTMAP"
//
// File names must already be safe; anything that does not form a C
// identifier is rejected with ErrInvalidIdentifier.
func DeriveIdentifier(prefix, name string) (string, error) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		return "", invalidIdentifierf(name, "empty file stem")
	}
	ident := prefix + strings.ToUpper(stem)
	if !IsIdentifier(ident) {
		return "", invalidIdentifierf(name, "%q is not a valid symbol name", ident)
	}
	return ident, nil
}

// IsIdentifier reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// matchExtension returns the allow-listed extension name ends with.
// Matching is a case-sensitive suffix test.
func matchExtension(name string, exts []string) (string, bool) {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return ext, true
		}
	}
	return "", false
}

// Discover lists sourceDir and returns the names of regular entries whose
// name ends with one of exts, sorted byte-wise.
//
// Directories are skipped even when their name matches. The returned order
// never depends on filesystem listing order.
func Discover(sourceDir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, &Error{Kind: ErrDirectoryNotFound, Path: sourceDir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := matchExtension(e.Name(), exts); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// loadAssets discovers, names and reads every asset in sourceDir.
//
// Identifiers must be unique within one run: "a.bmp" and "a.bsp" both
// derive ASSET_A and are rejected.
func loadAssets(sourceDir string, exts []string, prefix string) ([]AssetFile, error) {
	names, err := Discover(sourceDir, exts)
	if err != nil {
		return nil, err
	}

	assets := make([]AssetFile, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		ident, err := DeriveIdentifier(prefix, name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[ident]; dup {
			return nil, invalidIdentifierf(name, "identifier %s already derived from %s", ident, prev)
		}
		seen[ident] = name

		path := filepath.Join(sourceDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ioError(path, err)
		}
		ext, _ := matchExtension(name, exts)
		assets = append(assets, AssetFile{
			Name:       name,
			Ext:        ext,
			Identifier: ident,
			Data:       data,
		})
	}
	return assets, nil
}

// ValidateExtensions rejects allow-lists that cannot select anything sensible.
func ValidateExtensions(exts []string) error {
	if len(exts) == 0 {
		return fmt.Errorf("extension set is empty")
	}
	for _, ext := range exts {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("extension %q must start with '.' and be non-empty", ext)
		}
	}
	return nil
}
