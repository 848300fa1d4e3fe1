package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"steam-publisher/domain/manifest"
	"steam-publisher/domain/publish"
)

// DefaultScratchDirName is the directory under the OS temp dir that holds manifests and build logs
const DefaultScratchDirName = "ucb_steam_build"

// DefaultScratchDir returns the default scratch directory
func DefaultScratchDir() string {
	return filepath.Join(os.TempDir(), DefaultScratchDirName)
}

// ManifestWriter implements publish.ManifestWriter by writing app_build_<appid>.vdf
// into a scratch directory
type ManifestWriter struct {
	scratchDir string
	now        func() time.Time
}

// ManifestWriterOption is a functional option for configuring ManifestWriter
type ManifestWriterOption func(*ManifestWriter)

// WithClock sets the time source for the build description (for testing)
func WithClock(now func() time.Time) ManifestWriterOption {
	return func(w *ManifestWriter) {
		w.now = now
	}
}

// NewManifestWriter creates a writer targeting scratchDir (DefaultScratchDir when empty)
func NewManifestWriter(scratchDir string, opts ...ManifestWriterOption) *ManifestWriter {
	if scratchDir == "" {
		scratchDir = DefaultScratchDir()
	}
	w := &ManifestWriter{
		scratchDir: scratchDir,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// ScratchDir returns the directory manifests are written to
func (w *ManifestWriter) ScratchDir() string {
	return w.scratchDir
}

// Write renders the manifest for target and writes it, returning the file path
func (w *ManifestWriter) Write(target publish.UploadTarget, contentRoot string) (string, error) {
	scratch, err := filepath.Abs(w.scratchDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", publish.ErrManifestWriteFailed, err)
	}
	root, err := filepath.Abs(contentRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", publish.ErrManifestWriteFailed, err)
	}

	if err := os.MkdirAll(scratch, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", publish.ErrManifestWriteFailed, err)
	}

	path := filepath.Join(scratch, manifest.FileName(target.AppID))
	content := manifest.Render(target, root, scratch, w.now())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("%w: %v", publish.ErrManifestWriteFailed, err)
	}

	return path, nil
}

// Ensure ManifestWriter implements publish.ManifestWriter
var _ publish.ManifestWriter = (*ManifestWriter)(nil)
