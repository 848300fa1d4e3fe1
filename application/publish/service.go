package publish

import (
	"context"
	"errors"
	"fmt"

	"steam-publisher/domain/publish"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConfigSource supplies the per-invocation configuration, typically from the environment
type ConfigSource interface {
	UploadConfig(buildPath string) publish.UploadConfig
}

// ValidationError contains details about a skipped publish with a suggested fix
type ValidationError struct {
	Err        error
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nTo fix this, run:\n  %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Service is the post-export publish step: it uploads one build to Steam and
// reports the outcome. It never fails the caller.
type Service struct {
	source    ConfigSource
	registry  publish.Registry
	locator   publish.BuildLocator
	sanitizer publish.BuildSanitizer
	manifests publish.ManifestWriter
	uploader  publish.Uploader
	notifier  publish.ResultNotifier
	log       zerolog.Logger
	newRunID  func() string
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// WithRunID sets the run id generator (for testing)
func WithRunID(newRunID func() string) ServiceOption {
	return func(s *Service) {
		s.newRunID = newRunID
	}
}

// NewService creates a new publish service
func NewService(
	source ConfigSource,
	registry publish.Registry,
	locator publish.BuildLocator,
	sanitizer publish.BuildSanitizer,
	manifests publish.ManifestWriter,
	uploader publish.Uploader,
	notifier publish.ResultNotifier,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		source:    source,
		registry:  registry,
		locator:   locator,
		sanitizer: sanitizer,
		manifests: manifests,
		uploader:  uploader,
		notifier:  notifier,
		log:       zerolog.Nop(),
		newRunID:  func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Publish uploads the build exported at buildOutputPath. Every failure is
// logged; upload outcomes are additionally sent as a chat notification.
func (s *Service) Publish(ctx context.Context, buildOutputPath string) {
	log := s.log.With().Str("run_id", s.newRunID()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Unexpected failure during Steam upload. Skipping Steam upload.")
		}
	}()

	cfg, result, err := s.upload(ctx, log, buildOutputPath)
	if err != nil {
		event := log.Error()
		if errors.Is(err, publish.ErrConfigMissing) || errors.Is(err, publish.ErrUnknownTarget) {
			event = log.Warn()
		}
		event.Err(err).Msg("Skipping Steam upload.")
		return
	}

	log = log.With().Str("target", cfg.BuildTargetKey).Logger()
	seconds := fmt.Sprintf("%.2f", result.DurationSeconds())
	if result.Succeeded() {
		log.Info().Msgf("Steam upload completed successfully in %s seconds.", seconds)
	} else {
		log.Error().Err(result.Err).Msgf("Steam upload failed with exit code %d. Duration: %s seconds.", result.ExitCode, seconds)
	}

	s.notifier.NotifyResult(ctx, cfg.WebhookURL, result)
}

// upload runs every step up to and including the SteamCMD invocation.
// An error means the tool was never launched.
func (s *Service) upload(ctx context.Context, log zerolog.Logger, buildOutputPath string) (publish.UploadConfig, publish.InvocationResult, error) {
	var result publish.InvocationResult

	// Step 1: Read configuration
	cfg := s.source.UploadConfig(buildOutputPath)
	cfg.BuildTargetKey = publish.NormalizeKey(cfg.BuildTargetKey)
	if err := cfg.Validate(); err != nil {
		return cfg, result, err
	}

	// Step 2: Resolve target
	target, err := s.registry.Lookup(cfg.BuildTargetKey)
	if err != nil {
		return cfg, result, &ValidationError{
			Err:        err,
			Suggestion: fmt.Sprintf("steam-publisher targets add %s --app <app-id> --depot <depot-id>", cfg.BuildTargetKey),
		}
	}
	log = log.With().Str("target", cfg.BuildTargetKey).Int("app_id", target.AppID).Int("depot_id", target.DepotID).Logger()

	// Step 3: Validate tool
	toolPath, err := s.uploader.ToolPath()
	if err != nil {
		return cfg, result, err
	}
	log.Debug().Str("tool", toolPath).Msg("Found SteamCMD")

	// Step 4: Validate build path
	buildDir, err := s.locator.ResolveBuildDir(cfg.BuildPath)
	if err != nil {
		return cfg, result, err
	}
	log.Debug().Str("build_dir", buildDir).Msg("Resolved build directory")

	// Step 5: Remove do-not-ship content before the manifest maps the tree
	removed, err := s.sanitizer.Clean(buildDir)
	if err != nil {
		log.Error().Err(err).Int("removed", removed).Msg("Some DoNotShip directories could not be removed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("Removed DoNotShip directories")
	}

	// Step 6: Write manifest
	manifestPath, err := s.manifests.Write(target, buildDir)
	if err != nil {
		return cfg, result, err
	}
	log.Debug().Str("manifest", manifestPath).Msg("Wrote app build manifest")

	// Step 7: Stage credentials and upload
	result, err = s.uploader.Run(ctx, manifestPath, cfg, target)
	if err != nil {
		return cfg, result, err
	}

	return cfg, result, nil
}
