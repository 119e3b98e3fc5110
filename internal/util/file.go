package util

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// JoinKey builds the path of the artifact named key under dir.
func JoinKey(dir, key, ext string) string {
	return filepath.Join(dir, key+ext)
}

// WriteFileAtomic creates the parent directory and replaces path in one
// rename, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, perm)
}
