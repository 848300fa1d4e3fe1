//go:build integration

package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"steam-publisher/cmd"

	"github.com/cucumber/godog"
)

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedCLIContext

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have steamcmd dir "([^"]*)"$`, testCtx.theConfigShouldHaveSteamcmdDir)
	ctx.Step(`^the setup should fail with "([^"]*)"$`, testCtx.theSetupShouldFailWith)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (c *cliContext) noConfigFileExistsForSetup() error {
	// Just ensure the config path directory exists but no config file
	return os.MkdirAll(filepath.Dir(c.configPath), 0755)
}

func (c *cliContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}

	content := `steamcmd:
  dir: "/original/steamcmd"
targets:
  windows:
    app_id: 1541370
    depot_id: 1541373
`
	c.originalContent = content
	return os.WriteFile(c.configPath, []byte(content), 0644)
}

func (c *cliContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs, confirms := parseInputTable(table)
	prompter := NewMockPrompter(inputs, confirms)

	c.err = cmd.RunSetupWithPrompter(prompter, c.configPath, c.output)
	return nil
}

func (c *cliContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter([]string{}, []bool{confirm})

	c.err = cmd.RunSetupWithPrompter(prompter, c.configPath, c.output)
	if !confirm {
		c.setupCancelled = true
	}
	return nil
}

// parseInputTable splits prompt answers: y/n answers go to Confirm, the rest to Input
func parseInputTable(table *godog.Table) ([]string, []bool) {
	var inputs []string
	var confirms []bool

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		value := row.Cells[1].Value

		switch strings.ToLower(value) {
		case "y", "n":
			confirms = append(confirms, strings.ToLower(value) == "y")
		default:
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms
}

func (c *cliContext) aConfigFileShouldExist() error {
	if c.err != nil {
		return fmt.Errorf("setup command failed: %w", c.err)
	}
	if _, err := os.Stat(c.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", c.configPath)
	}
	return nil
}

func (c *cliContext) theConfigShouldHaveSteamcmdDir(expected string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.SteamCmd.Dir != expected {
		return fmt.Errorf("expected steamcmd dir %q, got %q", expected, cfg.SteamCmd.Dir)
	}
	return nil
}

func (c *cliContext) theSetupShouldFailWith(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected setup to fail with %q, but it succeeded", expected)
	}
	if !strings.Contains(c.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, c.err)
	}
	if _, err := os.Stat(c.configPath); !os.IsNotExist(err) {
		return fmt.Errorf("expected no config file after failed setup")
	}
	return nil
}

func (c *cliContext) theSetupShouldBeCancelled() error {
	if !c.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	if !strings.Contains(c.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected cancellation message, got %q", c.output.String())
	}
	return nil
}

func (c *cliContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != c.originalContent {
		return fmt.Errorf("config was modified.\nExpected:\n%s\nGot:\n%s", c.originalContent, string(content))
	}
	return nil
}
