package steamcmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"steam-publisher/domain/publish"

	"github.com/rs/zerolog"
)

const (
	// ConfigDirName is the SteamCMD directory holding cached login state
	ConfigDirName = "config"
	// ConfigFileName is the file the decoded STEAM_CONFIG is written to
	ConfigFileName = "config.vdf"
)

// ExecutableName returns the SteamCMD binary name for the host OS
func ExecutableName() string {
	if runtime.GOOS == "windows" {
		return "steamcmd.exe"
	}
	return "steamcmd"
}

// BuildArgs returns the SteamCMD arguments that log in, run the app build and quit
func BuildArgs(user, manifestPath string) []string {
	return []string{
		"+login", user,
		"+run_app_build", manifestPath,
		"+quit",
	}
}

// Invoker implements publish.Uploader by running SteamCMD from a tool directory
type Invoker struct {
	toolDir string
	exeName string
	runner  CommandRunner
	log     zerolog.Logger
}

// InvokerOption is a functional option for configuring Invoker
type InvokerOption func(*Invoker)

// WithExecutableName overrides the SteamCMD binary name
func WithExecutableName(name string) InvokerOption {
	return func(i *Invoker) {
		i.exeName = name
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) InvokerOption {
	return func(i *Invoker) {
		i.runner = runner
	}
}

// WithLogger sets the logger tool output is forwarded to
func WithLogger(log zerolog.Logger) InvokerOption {
	return func(i *Invoker) {
		i.log = log
	}
}

// NewInvoker creates an invoker for the SteamCMD installation in toolDir
func NewInvoker(toolDir string, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		toolDir: toolDir,
		exeName: ExecutableName(),
		runner:  &ExecCommandRunner{},
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// ToolPath returns the absolute path of the SteamCMD executable
func (i *Invoker) ToolPath() (string, error) {
	path, err := filepath.Abs(filepath.Join(i.toolDir, i.exeName))
	if err != nil {
		return "", fmt.Errorf("%w: %v", publish.ErrToolNotFound, err)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w at path: %s", publish.ErrToolNotFound, path)
	}
	return path, nil
}

// ConfigPath returns where staged credentials are written
func (i *Invoker) ConfigPath() string {
	return filepath.Join(i.toolDir, ConfigDirName, ConfigFileName)
}

// DecodeSecrets decodes the base64 STEAM_CONFIG blob. Surrounding and
// embedded whitespace (line-wrapped secrets) is ignored.
func DecodeSecrets(encoded string) ([]byte, error) {
	compact := strings.Join(strings.Fields(encoded), "")
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", publish.ErrConfigDecode, err)
	}
	return data, nil
}

// Stage decodes the secrets and overwrites the tool's config.vdf with them
func (i *Invoker) Stage(encodedSecrets string) error {
	data, err := DecodeSecrets(encodedSecrets)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(i.ConfigPath())
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", publish.ErrConfigStageFailed, err)
	}
	if err := os.WriteFile(i.ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("%w: %v", publish.ErrConfigStageFailed, err)
	}

	return nil
}

// Run stages credentials and runs the app build. The returned error is set
// only when SteamCMD was never launched.
func (i *Invoker) Run(ctx context.Context, manifestPath string, cfg publish.UploadConfig, target publish.UploadTarget) (publish.InvocationResult, error) {
	result := publish.InvocationResult{
		ExitCode:       -1,
		Target:         target,
		BuildTargetKey: cfg.BuildTargetKey,
	}

	toolPath, err := i.ToolPath()
	if err != nil {
		return result, err
	}
	if err := i.Stage(cfg.EncodedSecrets); err != nil {
		return result, err
	}

	cmd := Command{
		Path:   toolPath,
		Args:   BuildArgs(cfg.User, manifestPath),
		Dir:    filepath.Dir(toolPath),
		Stdout: func(line string) { i.log.Info().Str("stream", "stdout").Msg(line) },
		Stderr: func(line string) { i.log.Error().Str("stream", "stderr").Msg(line) },
	}

	i.log.Info().
		Str("target", cfg.BuildTargetKey).
		Int("app_id", target.AppID).
		Int("depot_id", target.DepotID).
		Msg("Starting Steam upload")

	start := time.Now()
	exitCode, runErr := i.runFailSafe(ctx, cmd)
	result.Duration = time.Since(start)
	result.ExitCode = exitCode

	if runErr != nil {
		result.Err = fmt.Errorf("%w: %v", publish.ErrUploadProcessFailure, runErr)
		i.log.Error().Err(runErr).Msg("Exception during Steam upload")
	}

	return result, nil
}

// runFailSafe converts a panicking runner into a launch failure
func (i *Invoker) runFailSafe(ctx context.Context, cmd Command) (code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			code, err = -1, fmt.Errorf("runner panic: %v", r)
		}
	}()
	return i.runner.Run(ctx, cmd)
}

// Ensure Invoker implements publish.Uploader
var _ publish.Uploader = (*Invoker)(nil)
