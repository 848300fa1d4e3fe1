package publish

import (
	"fmt"
	"strings"
)

// Environment variable names read by the publish step
const (
	EnvUser        = "STEAM_USER"
	EnvConfig      = "STEAM_CONFIG"
	EnvBuildTarget = "BUILD_TARGET"
	EnvWebhook     = "DISCORD_WEBHOOK"
)

// UploadConfig is the per-invocation configuration for a publish run
type UploadConfig struct {
	User           string // Steam login
	EncodedSecrets string // Base64 encoded config.vdf contents
	BuildTargetKey string // Normalized build target key
	BuildPath      string // Exported build file or directory
	WebhookURL     string // Optional chat webhook
}

// Validate checks that every required value is present.
// The webhook URL is optional and not checked.
func (c UploadConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, EnvUser)
	}
	if strings.TrimSpace(c.EncodedSecrets) == "" {
		missing = append(missing, EnvConfig)
	}
	if strings.TrimSpace(c.BuildTargetKey) == "" {
		missing = append(missing, EnvBuildTarget)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}
