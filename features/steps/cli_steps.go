//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"steam-publisher/infrastructure/config"

	"github.com/cucumber/godog"
)

// cliContext is shared by the targets, setup and manifest scenarios
type cliContext struct {
	tempDir         string
	configPath      string
	buildDir        string
	output          *bytes.Buffer
	err             error
	setupCancelled  bool
	originalContent string
}

var SharedCLIContext = &cliContext{}

func InitializeCLIScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedCLIContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "cli-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", config.DefaultFileName)
		testCtx.buildDir = filepath.Join(tempDir, "Builds", "Windows")
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	// Common assertions
	ctx.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, testCtx.theCommandShouldFailWith)
	ctx.Step(`^the output should contain "((?:[^"\\]|\\.)*)"$`, testCtx.theOutputShouldContain)
	ctx.Step(`^the config should contain target "([^"]*)" with app "(\d+)" and depot "(\d+)"$`, testCtx.theConfigShouldContainTarget)
	ctx.Step(`^the config should not contain target "([^"]*)"$`, testCtx.theConfigShouldNotContainTarget)
	ctx.Step(`^target "([^"]*)" should be set live on "([^"]*)"$`, testCtx.targetShouldBeSetLiveOn)
}

func (c *cliContext) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (c *cliContext) theCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected command to succeed, got error: %v", c.err)
	}
	return nil
}

func (c *cliContext) theCommandShouldFailWith(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected command to fail with %q, but it succeeded", expected)
	}
	if !strings.Contains(c.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, c.err)
	}
	return nil
}

func (c *cliContext) theOutputShouldContain(expected string) error {
	expected = strings.ReplaceAll(expected, `\"`, `"`)
	if !strings.Contains(c.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, c.output.String())
	}
	return nil
}

func (c *cliContext) theConfigShouldContainTarget(key string, appID, depotID int) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	target, ok := cfg.Targets[key]
	if !ok {
		return fmt.Errorf("target %q not found in config", key)
	}
	if target.AppID != appID || target.DepotID != depotID {
		return fmt.Errorf("expected target %q app %d depot %d, got app %d depot %d", key, appID, depotID, target.AppID, target.DepotID)
	}
	return nil
}

func (c *cliContext) theConfigShouldNotContainTarget(key string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Targets[key]; ok {
		return fmt.Errorf("expected target %q to be absent", key)
	}
	return nil
}

func (c *cliContext) targetShouldBeSetLiveOn(key, branch string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	target, ok := cfg.Targets[key]
	if !ok {
		return fmt.Errorf("target %q not found in config", key)
	}
	if !target.SetLive || target.Branch != branch {
		return fmt.Errorf("expected target %q live on %q, got set_live=%v branch=%q", key, branch, target.SetLive, target.Branch)
	}
	return nil
}
