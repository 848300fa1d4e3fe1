package cmd

import (
	"context"
	"time"

	appnotify "steam-publisher/application/notification"
	apppublish "steam-publisher/application/publish"
	"steam-publisher/domain/notification"
	"steam-publisher/infrastructure/config"
	"steam-publisher/infrastructure/discord"
	"steam-publisher/infrastructure/filesystem"
	"steam-publisher/infrastructure/steamcmd"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <build-output-path>",
	Short: "Upload an exported build to Steam",
	Long: `Upload the exported build at <build-output-path> to the Steam depot
registered for BUILD_TARGET and report the result to DISCORD_WEBHOOK.

Environment:
  STEAM_USER        Steam login used by SteamCMD (required)
  STEAM_CONFIG      base64 encoded SteamCMD config.vdf (required)
  BUILD_TARGET      build target key, e.g. windows (required)
  DISCORD_WEBHOOK   webhook URL for the result message (optional)
  STEAMCMD_DIR      directory holding the SteamCMD executable (optional)
  STEAM_SCRATCH_DIR directory for the manifest and build logs (optional)

Problems are logged and never fail the command, so the surrounding
pipeline always continues.

Example:
  steam-publisher publish ./Builds/Windows`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	RunPublishWithDependencies(cmd.Context(), GetConfig(), PublishDependencies{
		Source: env,
		Logger: GetLogger(),
	}, args[0])
	return nil
}

// PublishDependencies holds the replaceable edges of the publish step.
// Nil fields use the production implementations.
type PublishDependencies struct {
	Source apppublish.ConfigSource
	Runner steamcmd.CommandRunner
	Sender notification.Sender
	Now    func() time.Time
	Logger zerolog.Logger
}

// NewPublishService wires the publish service from configuration
func NewPublishService(cfg *config.Config, deps PublishDependencies) *apppublish.Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Source == nil {
		deps.Source = config.NewEnv()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sender == nil {
		timeout := cfg.Notification.Timeout
		if timeout <= 0 {
			timeout = discord.DefaultTimeout
		}
		deps.Sender = discord.NewClient(discord.WithTimeout(timeout))
	}

	var sanitizerOpts []filesystem.SanitizerOption
	if len(cfg.Sanitize.Markers) > 0 {
		sanitizerOpts = append(sanitizerOpts, filesystem.WithMarkers(cfg.Sanitize.Markers...))
	}
	sanitizerOpts = append(sanitizerOpts, filesystem.WithSanitizerLogger(deps.Logger))

	invokerOpts := []steamcmd.InvokerOption{steamcmd.WithLogger(deps.Logger)}
	if deps.Runner != nil {
		invokerOpts = append(invokerOpts, steamcmd.WithCommandRunner(deps.Runner))
	}

	notifyOpts := []appnotify.ServiceOption{
		appnotify.WithClock(deps.Now),
		appnotify.WithLogger(deps.Logger),
	}
	if cfg.Notification.Author != "" {
		notifyOpts = append(notifyOpts, appnotify.WithAuthor(cfg.Notification.Author))
	}

	return apppublish.NewService(
		deps.Source,
		cfg.Registry(),
		filesystem.NewChecker(),
		filesystem.NewSanitizer(sanitizerOpts...),
		filesystem.NewManifestWriter(cfg.SteamCmd.ScratchDir, filesystem.WithClock(deps.Now)),
		steamcmd.NewInvoker(cfg.ToolDir(), invokerOpts...),
		appnotify.NewService(deps.Sender, notifyOpts...),
		apppublish.WithLogger(deps.Logger),
	)
}

// RunPublishWithDependencies runs one publish step. It has no error result:
// every failure is logged and the caller always continues.
func RunPublishWithDependencies(ctx context.Context, cfg *config.Config, deps PublishDependencies, buildOutputPath string) {
	if ctx == nil {
		ctx = context.Background()
	}
	NewPublishService(cfg, deps).Publish(ctx, buildOutputPath)
}
