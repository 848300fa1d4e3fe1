package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"steam-publisher/domain/publish"

	"github.com/rs/zerolog"
)

// DefaultMarkers are the directory name fragments that keep content out of a shipped build
var DefaultMarkers = []string{"DoNotShip", "DontShip"}

// Sanitizer deletes do-not-ship directories from a build tree in place
type Sanitizer struct {
	markers []string
	remove  func(path string) error
	log     zerolog.Logger
}

// SanitizerOption is a functional option for configuring Sanitizer
type SanitizerOption func(*Sanitizer)

// WithMarkers replaces the directory name markers
func WithMarkers(markers ...string) SanitizerOption {
	return func(s *Sanitizer) {
		s.markers = markers
	}
}

// WithSanitizerLogger sets the logger for removal reports
func WithSanitizerLogger(log zerolog.Logger) SanitizerOption {
	return func(s *Sanitizer) {
		s.log = log
	}
}

// WithRemoveFunc sets the function used to delete a directory (for testing)
func WithRemoveFunc(remove func(path string) error) SanitizerOption {
	return func(s *Sanitizer) {
		s.remove = remove
	}
}

// NewSanitizer creates a sanitizer using DefaultMarkers
func NewSanitizer(opts ...SanitizerOption) *Sanitizer {
	s := &Sanitizer{
		markers: DefaultMarkers,
		remove:  os.RemoveAll,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	lowered := make([]string, 0, len(s.markers))
	for _, m := range s.markers {
		if m = strings.TrimSpace(m); m != "" {
			lowered = append(lowered, strings.ToLower(m))
		}
	}
	s.markers = lowered

	return s
}

// Matches reports whether a directory name contains a marker (case-insensitive)
func (s *Sanitizer) Matches(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range s.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Clean removes every directory under root whose name matches a marker and
// returns how many were removed. A failed removal is logged and does not stop
// the walk; all failures are returned joined.
func (s *Sanitizer) Clean(root string) (int, error) {
	var (
		removed int
		errs    []error
	)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.log.Error().Err(err).Str("path", path).Msg("Failed to read directory while sanitizing")
			errs = append(errs, fmt.Errorf("%w: %s: %v", publish.ErrSanitizeFailed, path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() || path == root || !s.Matches(d.Name()) {
			return nil
		}

		if err := s.remove(path); err != nil {
			s.log.Error().Err(err).Str("path", path).Msg("Failed to delete DoNotShip directory")
			errs = append(errs, fmt.Errorf("%w: %s: %v", publish.ErrSanitizeFailed, path, err))
		} else {
			removed++
			s.log.Info().Str("path", path).Msg("Deleted DoNotShip directory")
		}
		return fs.SkipDir
	})
	if walkErr != nil {
		return removed, fmt.Errorf("%w: %v", publish.ErrBuildPathNotFound, walkErr)
	}

	return removed, errors.Join(errs...)
}

// Ensure Sanitizer implements publish.BuildSanitizer
var _ publish.BuildSanitizer = (*Sanitizer)(nil)
