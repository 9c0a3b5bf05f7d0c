package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// PrivateDirPerm is used for every directory holding vault data.
const PrivateDirPerm = 0o700

// EnsureDir creates dir (and parents) with PrivateDirPerm if missing.
// Relative paths are resolved against the working directory. The absolute
// path is returned.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, PrivateDirPerm); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// EnsureParent makes sure the directory containing path exists.
func EnsureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	_, err := EnsureDir(dir)
	return err
}
