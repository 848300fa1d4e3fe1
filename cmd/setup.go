package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"steam-publisher/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates ` + config.DefaultFileName + `.

This command guides you through setting up the SteamCMD location, the
notification author and the build targets uploaded by publish.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultFileName
	}
	return RunSetupWithPrompter(DefaultPrompter, path, DefaultOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(filepath.Base(configPath)+" already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to steam-publisher setup!")
	fmt.Fprintln(out)

	cfg := &config.Config{}

	// SteamCMD section
	if err := promptSteamCmd(prompter, cfg); err != nil {
		return err
	}

	// Notification section
	if err := promptNotification(prompter, cfg); err != nil {
		return err
	}

	// Targets section
	if err := promptTargets(prompter, cfg); err != nil {
		return err
	}

	// Ensure config directory exists
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptSteamCmd(prompter Prompter, cfg *config.Config) error {
	dir, err := prompter.Input("Directory containing the SteamCMD executable?", config.DefaultToolDir)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if dir == "" {
		dir = config.DefaultToolDir
	}
	cfg.SteamCmd.Dir = dir

	scratch, err := prompter.Input("Scratch directory for manifests and build logs? (empty for system temp)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.SteamCmd.ScratchDir = scratch

	return nil
}

func promptNotification(prompter Prompter, cfg *config.Config) error {
	author, err := prompter.Input("Author name for Discord messages?", "Steam Builder")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Notification.Author = author
	return nil
}

func promptTargets(prompter Prompter, cfg *config.Config) error {
	cfg.Targets = make(map[string]config.TargetConfig)

	useDefaults, err := prompter.Confirm("Include the built-in windows and windows-demo targets?", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if useDefaults {
		cfg.Targets = config.Default().Targets
	}

	for {
		addTarget, err := prompter.Confirm("Add a build target?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !addTarget {
			break
		}

		key, err := prompter.Input("  BUILD_TARGET key:", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return fmt.Errorf("target key is required")
		}

		target, err := promptTargetWithPrompter(prompter)
		if err != nil {
			return err
		}
		cfg.Targets[key] = target
	}

	if len(cfg.Targets) == 0 {
		return fmt.Errorf("at least one build target is required")
	}
	return nil
}

func promptTargetWithPrompter(prompter Prompter) (config.TargetConfig, error) {
	appID, err := promptID(prompter, "  App ID:")
	if err != nil {
		return config.TargetConfig{}, err
	}

	depotID, err := promptID(prompter, "  Depot ID:")
	if err != nil {
		return config.TargetConfig{}, err
	}

	branch, err := prompter.Input("  Branch:", "default")
	if err != nil {
		return config.TargetConfig{}, fmt.Errorf("prompt cancelled")
	}

	setLive, err := prompter.Confirm("  Set the build live on this branch?", false)
	if err != nil {
		return config.TargetConfig{}, fmt.Errorf("prompt cancelled")
	}

	return config.TargetConfig{
		AppID:   appID,
		DepotID: depotID,
		Branch:  branch,
		SetLive: setLive,
	}, nil
}

func promptID(prompter Prompter, message string) (int, error) {
	raw, err := prompter.Input(message, "")
	if err != nil {
		return 0, fmt.Errorf("prompt cancelled")
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", strings.TrimSpace(strings.TrimSuffix(message, ":")), raw)
	}
	return id, nil
}
