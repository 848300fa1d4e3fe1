package config

import (
	"steam-publisher/domain/publish"

	"github.com/spf13/viper"
)

// Environment overrides for file-based settings
const (
	EnvToolDir    = "STEAMCMD_DIR"
	EnvScratchDir = "STEAM_SCRATCH_DIR"
)

// Env reads per-invocation settings from the process environment.
// It implements the publish service's ConfigSource.
type Env struct {
	*viper.Viper
}

// NewEnv creates an environment reader bound to the publish variables
func NewEnv() *Env {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range []string{
		publish.EnvUser,
		publish.EnvConfig,
		publish.EnvBuildTarget,
		publish.EnvWebhook,
		EnvToolDir,
		EnvScratchDir,
	} {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(key)
	}
	return &Env{v}
}

// UploadConfig builds the configuration for one publish of buildPath
func (e *Env) UploadConfig(buildPath string) publish.UploadConfig {
	return publish.UploadConfig{
		User:           e.GetString(publish.EnvUser),
		EncodedSecrets: e.GetString(publish.EnvConfig),
		BuildTargetKey: publish.NormalizeKey(e.GetString(publish.EnvBuildTarget)),
		BuildPath:      buildPath,
		WebhookURL:     e.GetString(publish.EnvWebhook),
	}
}

// Apply overlays environment overrides onto cfg
func (e *Env) Apply(cfg *Config) {
	if dir := e.GetString(EnvToolDir); dir != "" {
		cfg.SteamCmd.Dir = dir
	}
	if dir := e.GetString(EnvScratchDir); dir != "" {
		cfg.SteamCmd.ScratchDir = dir
	}
}
