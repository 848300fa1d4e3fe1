//go:build integration

package steps

import (
	"os"
	"path/filepath"

	"steam-publisher/cmd"
	"steam-publisher/infrastructure/config"

	"github.com/cucumber/godog"
)

func InitializeTargetsScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedCLIContext

	ctx.Step(`^a config file with the built-in targets$`, testCtx.aConfigFileWithTheBuiltInTargets)
	ctx.Step(`^I run targets list$`, testCtx.iRunTargetsList)
	ctx.Step(`^I run targets add "([^"]*)" with app "(\d+)" and depot "(\d+)"$`, testCtx.iRunTargetsAdd)
	ctx.Step(`^I run targets update "([^"]*)" with branch "([^"]*)" and set live$`, testCtx.iRunTargetsUpdateWithBranchAndSetLive)
	ctx.Step(`^I run targets remove "([^"]*)"$`, testCtx.iRunTargetsRemove)
}

func (c *cliContext) aConfigFileWithTheBuiltInTargets() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	return config.Save(config.Default(), c.configPath)
}

func (c *cliContext) iRunTargetsList() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.err = cmd.RunTargetsListWithDependencies(cfg, c.configPath, c.output)
	return nil
}

func (c *cliContext) iRunTargetsAdd(key string, appID, depotID int) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.err = cmd.RunTargetsAddWithDependencies(cfg, c.configPath, key, config.TargetConfig{
		AppID:   appID,
		DepotID: depotID,
	}, c.output)
	return nil
}

func (c *cliContext) iRunTargetsUpdateWithBranchAndSetLive(key, branch string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	live := true
	c.err = cmd.RunTargetsUpdateWithDependencies(cfg, c.configPath, key, config.TargetUpdate{
		Branch:  &branch,
		SetLive: &live,
	}, c.output)
	return nil
}

func (c *cliContext) iRunTargetsRemove(key string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.err = cmd.RunTargetsRemoveWithDependencies(cfg, c.configPath, key, c.output)
	return nil
}
