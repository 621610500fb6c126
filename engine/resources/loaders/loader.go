package loaders

import (
	"os"
	"path/filepath"
)

// resolvePath joins relative paths onto root. Absolute paths and an empty root
// leave the path untouched.
func resolvePath(root, path string) string {
	if root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// readFile reads a whole asset file, reporting its resolved path on failure.
func readFile(root, path string) ([]byte, string, error) {
	fullPath := resolvePath(root, path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fullPath, err
	}
	return data, fullPath, nil
}
