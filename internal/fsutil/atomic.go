// Package fsutil holds the small filesystem primitives shared by the bundler
// and the map compiler.
package fsutil

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces path with data.
//
// The bytes are written to a temporary file in the same directory, synced and
// renamed over path. Readers observe either the previous content or the new
// content, never a truncated file. The parent directory is created if needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	syncDir(dir)
	return nil
}

// CopyFile copies src to dst atomically and returns the number of bytes copied.
func CopyFile(src, dst string, perm os.FileMode) (int, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, err
	}
	if err := WriteFileAtomic(dst, data, perm); err != nil {
		return 0, err
	}
	return len(data), nil
}

// syncDir flushes the directory entry for a rename. Some platforms cannot
// open directories for syncing, so failures are ignored.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
