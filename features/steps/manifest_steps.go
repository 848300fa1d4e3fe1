//go:build integration

package steps

import (
	"fmt"
	"os"
	"path/filepath"

	"steam-publisher/cmd"
	"steam-publisher/domain/publish"
	"steam-publisher/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

func InitializeManifestScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedCLIContext

	ctx.Step(`^an exported build directory$`, testCtx.anExportedBuildDirectory)
	ctx.Step(`^the exported build contains a directory "([^"]*)"$`, testCtx.theExportedBuildContainsADirectory)
	ctx.Step(`^I run manifest for target "([^"]*)" with check$`, testCtx.iRunManifestForTargetWithCheck)
	ctx.Step(`^I run sanitize on the build$`, testCtx.iRunSanitizeOnTheBuild)
	ctx.Step(`^the exported build should not contain "([^"]*)"$`, testCtx.theExportedBuildShouldNotContain)
}

func (c *cliContext) anExportedBuildDirectory() error {
	if err := os.MkdirAll(filepath.Join(c.buildDir, "Data"), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.buildDir, "Game.exe"), []byte("binary"), 0644)
}

func (c *cliContext) theExportedBuildContainsADirectory(rel string) error {
	return os.MkdirAll(filepath.Join(c.buildDir, filepath.FromSlash(rel)), 0755)
}

func (c *cliContext) iRunManifestForTargetWithCheck(key string) error {
	writer := filesystem.NewManifestWriter(filepath.Join(c.tempDir, "scratch"))
	c.err = cmd.RunManifestWithDependencies(
		publish.DefaultRegistry(),
		filesystem.NewChecker(),
		writer,
		key, c.buildDir, true,
		c.output,
	)
	return nil
}

func (c *cliContext) iRunSanitizeOnTheBuild() error {
	c.err = cmd.RunSanitizeWithDependencies(filesystem.NewChecker(), filesystem.NewSanitizer(), c.buildDir, c.output)
	return nil
}

func (c *cliContext) theExportedBuildShouldNotContain(rel string) error {
	if _, err := os.Stat(filepath.Join(c.buildDir, filepath.FromSlash(rel))); !os.IsNotExist(err) {
		return fmt.Errorf("expected %s to be removed", rel)
	}
	return nil
}
