package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"steam-publisher/domain/publish"
)

// Checker implements publish.BuildLocator using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the path exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the path exists and is a directory
func (c *Checker) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ResolveBuildDir returns the absolute build root for an exported build path.
// A directory is used as is; a regular file resolves to its parent directory.
func (c *Checker) ResolveBuildDir(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", publish.ErrBuildPathNotFound)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", publish.ErrBuildPathNotFound, path)
	}

	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", publish.ErrBuildPathNotFound, dir, err)
	}
	if !c.IsDir(abs) {
		return "", fmt.Errorf("%w: %s", publish.ErrBuildPathNotFound, abs)
	}

	return abs, nil
}

// Ensure Checker implements publish.BuildLocator
var _ publish.BuildLocator = (*Checker)(nil)
