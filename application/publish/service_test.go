package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"steam-publisher/domain/publish"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations for testing ---

// recorder collects the order in which collaborators are called
type recorder struct {
	steps []string
}

func (r *recorder) add(step string) {
	r.steps = append(r.steps, step)
}

type staticSource struct {
	cfg publish.UploadConfig
}

func (s staticSource) UploadConfig(buildPath string) publish.UploadConfig {
	cfg := s.cfg
	cfg.BuildPath = buildPath
	return cfg
}

type mockLocator struct {
	rec *recorder
	err error
}

func (m *mockLocator) ResolveBuildDir(path string) (string, error) {
	m.rec.add("locate:" + path)
	if m.err != nil {
		return "", m.err
	}
	return path, nil
}

type mockSanitizer struct {
	rec      *recorder
	removed  int
	err      error
	panicked bool
}

func (m *mockSanitizer) Clean(root string) (int, error) {
	m.rec.add("sanitize:" + root)
	if m.panicked {
		panic("walk exploded")
	}
	return m.removed, m.err
}

type mockManifests struct {
	rec *recorder
	err error
}

func (m *mockManifests) Write(target publish.UploadTarget, contentRoot string) (string, error) {
	m.rec.add(fmt.Sprintf("manifest:%d:%s", target.AppID, contentRoot))
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("/scratch/app_build_%d.vdf", target.AppID), nil
}

type mockUploader struct {
	rec      *recorder
	toolErr  error
	runErr   error
	exitCode int
	launch   error
	lastCfg  publish.UploadConfig
}

func (m *mockUploader) ToolPath() (string, error) {
	m.rec.add("tool")
	if m.toolErr != nil {
		return "", m.toolErr
	}
	return "/tools/steamcmd", nil
}

func (m *mockUploader) Run(ctx context.Context, manifestPath string, cfg publish.UploadConfig, target publish.UploadTarget) (publish.InvocationResult, error) {
	m.rec.add("run:" + manifestPath)
	m.lastCfg = cfg
	if m.runErr != nil {
		return publish.InvocationResult{ExitCode: -1}, m.runErr
	}
	return publish.InvocationResult{
		ExitCode:       m.exitCode,
		Duration:       2 * time.Second,
		Target:         target,
		BuildTargetKey: cfg.BuildTargetKey,
		Err:            m.launch,
	}, nil
}

type mockNotifier struct {
	rec     *recorder
	results []publish.InvocationResult
	urls    []string
}

func (m *mockNotifier) NotifyResult(ctx context.Context, webhookURL string, result publish.InvocationResult) {
	m.rec.add("notify")
	m.urls = append(m.urls, webhookURL)
	m.results = append(m.results, result)
}

type fixture struct {
	rec       *recorder
	cfg       publish.UploadConfig
	locator   *mockLocator
	sanitizer *mockSanitizer
	manifests *mockManifests
	uploader  *mockUploader
	notifier  *mockNotifier
	logs      *bytes.Buffer
}

func newFixture() *fixture {
	rec := &recorder{}
	return &fixture{
		rec: rec,
		cfg: publish.UploadConfig{
			User:           "ci-builder",
			EncodedSecrets: "Y29uZmln",
			BuildTargetKey: "Windows",
			WebhookURL:     "https://discord.example/webhook",
		},
		locator:   &mockLocator{rec: rec},
		sanitizer: &mockSanitizer{rec: rec},
		manifests: &mockManifests{rec: rec},
		uploader:  &mockUploader{rec: rec},
		notifier:  &mockNotifier{rec: rec},
		logs:      &bytes.Buffer{},
	}
}

func (f *fixture) publish(path string) {
	svc := NewService(
		staticSource{cfg: f.cfg},
		publish.DefaultRegistry(),
		f.locator,
		f.sanitizer,
		f.manifests,
		f.uploader,
		f.notifier,
		WithLogger(zerolog.New(f.logs)),
		WithRunID(func() string { return "run-1" }),
	)
	svc.Publish(context.Background(), path)
}

// --- Tests ---

func TestPublish_Success(t *testing.T) {
	f := newFixture()

	f.publish("/builds/windows")

	assert.Equal(t, []string{
		"tool",
		"locate:/builds/windows",
		"sanitize:/builds/windows",
		"manifest:1541370:/builds/windows",
		"run:/scratch/app_build_1541370.vdf",
		"notify",
	}, f.rec.steps)

	require.Len(t, f.notifier.results, 1)
	result := f.notifier.results[0]
	assert.True(t, result.Succeeded())
	assert.Equal(t, "windows", result.BuildTargetKey)
	assert.Equal(t, 1541370, result.Target.AppID)
	assert.Equal(t, "https://discord.example/webhook", f.notifier.urls[0])
	assert.Equal(t, "windows", f.uploader.lastCfg.BuildTargetKey)
	assert.Contains(t, f.logs.String(), "Steam upload completed successfully in 2.00 seconds.")
	assert.Contains(t, f.logs.String(), `"run_id":"run-1"`)
}

func TestPublish_UploadFailureNotifies(t *testing.T) {
	f := newFixture()
	f.uploader.exitCode = 1

	f.publish("/builds/windows")

	require.Len(t, f.notifier.results, 1)
	assert.False(t, f.notifier.results[0].Succeeded())
	assert.Equal(t, 1, f.notifier.results[0].ExitCode)
	assert.Contains(t, f.logs.String(), "Steam upload failed with exit code 1. Duration: 2.00 seconds.")
}

func TestPublish_LaunchFailureNotifies(t *testing.T) {
	f := newFixture()
	f.uploader.exitCode = -1
	f.uploader.launch = publish.ErrUploadProcessFailure

	f.publish("/builds/windows")

	require.Len(t, f.notifier.results, 1)
	assert.Equal(t, -1, f.notifier.results[0].ExitCode)
}

func TestPublish_ShortCircuits(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture)
		wantSteps []string
		wantLevel string
		wantErr   string
	}{
		{
			name:      "missing user",
			setup:     func(f *fixture) { f.cfg.User = "" },
			wantSteps: nil,
			wantLevel: "warn",
			wantErr:   "STEAM_USER",
		},
		{
			name:      "missing everything but webhook",
			setup:     func(f *fixture) { f.cfg = publish.UploadConfig{WebhookURL: "https://x"} },
			wantSteps: nil,
			wantLevel: "warn",
			wantErr:   "BUILD_TARGET",
		},
		{
			name:      "unknown target",
			setup:     func(f *fixture) { f.cfg.BuildTargetKey = "switch" },
			wantSteps: nil,
			wantLevel: "warn",
			wantErr:   "targets add switch",
		},
		{
			name:      "tool missing",
			setup:     func(f *fixture) { f.uploader.toolErr = publish.ErrToolNotFound },
			wantSteps: []string{"tool"},
			wantLevel: "error",
			wantErr:   "steamcmd not found",
		},
		{
			name:      "build path missing",
			setup:     func(f *fixture) { f.locator.err = publish.ErrBuildPathNotFound },
			wantSteps: []string{"tool", "locate:/builds/windows"},
			wantLevel: "error",
			wantErr:   "build directory not found",
		},
		{
			name:  "manifest write failure",
			setup: func(f *fixture) { f.manifests.err = publish.ErrManifestWriteFailed },
			wantSteps: []string{
				"tool",
				"locate:/builds/windows",
				"sanitize:/builds/windows",
				"manifest:1541370:/builds/windows",
			},
			wantLevel: "error",
			wantErr:   "failed to write app build manifest",
		},
		{
			name:  "config decode failure",
			setup: func(f *fixture) { f.uploader.runErr = publish.ErrConfigDecode },
			wantSteps: []string{
				"tool",
				"locate:/builds/windows",
				"sanitize:/builds/windows",
				"manifest:1541370:/builds/windows",
				"run:/scratch/app_build_1541370.vdf",
			},
			wantLevel: "error",
			wantErr:   "failed to decode steam config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			assert.NotPanics(t, func() { f.publish("/builds/windows") })

			assert.Equal(t, tt.wantSteps, f.rec.steps)
			assert.Empty(t, f.notifier.results)
			assert.Contains(t, f.logs.String(), `"level":"`+tt.wantLevel+`"`)
			assert.Contains(t, f.logs.String(), tt.wantErr)
			assert.Contains(t, f.logs.String(), "Skipping Steam upload.")
		})
	}
}

func TestPublish_SanitizeFailureContinues(t *testing.T) {
	f := newFixture()
	f.sanitizer.removed = 2
	f.sanitizer.err = fmt.Errorf("%w: /builds/windows/a_DoNotShip: busy", publish.ErrSanitizeFailed)

	f.publish("/builds/windows")

	assert.Contains(t, f.rec.steps, "run:/scratch/app_build_1541370.vdf")
	require.Len(t, f.notifier.results, 1)
	assert.Contains(t, f.logs.String(), "Some DoNotShip directories could not be removed")
}

func TestPublish_RecoversPanic(t *testing.T) {
	f := newFixture()
	f.sanitizer.panicked = true

	assert.NotPanics(t, func() { f.publish("/builds/windows") })
	assert.Empty(t, f.notifier.results)
	assert.Contains(t, f.logs.String(), "walk exploded")
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Err: publish.ErrUnknownTarget, Suggestion: "steam-publisher targets add x"}
	assert.True(t, errors.Is(err, publish.ErrUnknownTarget))
	assert.Contains(t, err.Error(), "To fix this, run:\n  steam-publisher targets add x")

	bare := &ValidationError{Err: publish.ErrUnknownTarget}
	assert.Equal(t, publish.ErrUnknownTarget.Error(), bare.Error())
}
