//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"steam-publisher/cmd"
	"steam-publisher/domain/manifest"
	"steam-publisher/domain/notification"
	"steam-publisher/domain/publish"
	"steam-publisher/infrastructure/config"
	"steam-publisher/infrastructure/steamcmd"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
)

var publishEnvVars = []string{
	publish.EnvUser,
	publish.EnvConfig,
	publish.EnvBuildTarget,
	publish.EnvWebhook,
}

// FakeRunner implements steamcmd.CommandRunner without starting a process
type FakeRunner struct {
	ExitCode int
	Output   []string
	Commands []steamcmd.Command
}

func (r *FakeRunner) Run(ctx context.Context, c steamcmd.Command) (int, error) {
	r.Commands = append(r.Commands, c)
	for _, line := range r.Output {
		c.Stdout(line)
	}
	return r.ExitCode, nil
}

// FakeSender implements notification.Sender by recording messages
type FakeSender struct {
	URLs     []string
	Messages []*notification.Message
}

func (s *FakeSender) Send(ctx context.Context, webhookURL string, msg *notification.Message) error {
	s.URLs = append(s.URLs, webhookURL)
	s.Messages = append(s.Messages, msg)
	return nil
}

type publishContext struct {
	tempDir    string
	toolDir    string
	scratchDir string
	buildDir   string
	runner     *FakeRunner
	sender     *FakeSender
	logs       *bytes.Buffer
}

var SharedPublishContext = &publishContext{}

func InitializePublishScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedPublishContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "publish-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.toolDir = filepath.Join(tempDir, "steamcmd")
		testCtx.scratchDir = filepath.Join(tempDir, "scratch")
		testCtx.buildDir = filepath.Join(tempDir, "Builds", "Windows")
		testCtx.runner = &FakeRunner{Output: []string{"Logging in user 'ci-builder' to Steam Public...OK", "Success!"}}
		testCtx.sender = &FakeSender{}
		testCtx.logs = &bytes.Buffer{}
		unsetPublishEnv()
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		unsetPublishEnv()
		return c, nil
	})

	ctx.Step(`^a SteamCMD installation$`, testCtx.aSteamCMDInstallation)
	ctx.Step(`^an exported build$`, testCtx.anExportedBuild)
	ctx.Step(`^the publish environment:$`, testCtx.thePublishEnvironment)
	ctx.Step(`^SteamCMD exits with code (-?\d+)$`, testCtx.steamCMDExitsWithCode)
	ctx.Step(`^the build contains a directory "([^"]*)"$`, testCtx.theBuildContainsADirectory)
	ctx.Step(`^I publish the build$`, testCtx.iPublishTheBuild)
	ctx.Step(`^SteamCMD should have been run with "([^"]*)"$`, testCtx.steamCMDShouldHaveBeenRunWith)
	ctx.Step(`^SteamCMD should not have been run$`, testCtx.steamCMDShouldNotHaveBeenRun)
	ctx.Step(`^the staged Steam config should be "([^"]*)"$`, testCtx.theStagedSteamConfigShouldBe)
	ctx.Step(`^the manifest should have app id "(\d+)" and depot "(\d+)"$`, testCtx.theManifestShouldHaveAppIDAndDepot)
	ctx.Step(`^the manifest should not set a branch live$`, testCtx.theManifestShouldNotSetABranchLive)
	ctx.Step(`^no manifest should be written$`, testCtx.noManifestShouldBeWritten)
	ctx.Step(`^a notification titled "([^"]*)" should be sent$`, testCtx.aNotificationTitledShouldBeSent)
	ctx.Step(`^no notification should be sent$`, testCtx.noNotificationShouldBeSent)
	ctx.Step(`^the notification should link to "([^"]*)"$`, testCtx.theNotificationShouldLinkTo)
	ctx.Step(`^the notification should have no link$`, testCtx.theNotificationShouldHaveNoLink)
	ctx.Step(`^the notification field "([^"]*)" should be "([^"]*)"$`, testCtx.theNotificationFieldShouldBe)
	ctx.Step(`^the build should contain "([^"]*)"$`, testCtx.theBuildShouldContain)
	ctx.Step(`^the build should not contain "([^"]*)"$`, testCtx.theBuildShouldNotContain)
	ctx.Step(`^the log should contain "([^"]*)"$`, testCtx.theLogShouldContain)
}

func unsetPublishEnv() {
	for _, name := range publishEnvVars {
		os.Unsetenv(name)
	}
}

// --- Given ---

func (p *publishContext) aSteamCMDInstallation() error {
	if err := os.MkdirAll(p.toolDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.toolDir, steamcmd.ExecutableName()), []byte("#!/bin/sh\n"), 0755)
}

func (p *publishContext) anExportedBuild() error {
	if err := os.MkdirAll(filepath.Join(p.buildDir, "Game_Data"), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(p.buildDir, "Game.exe"), []byte("binary"), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.buildDir, "Game_Data", "level0"), []byte("level"), 0644)
}

func (p *publishContext) thePublishEnvironment(table *godog.Table) error {
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected name and value columns, got %d", len(row.Cells))
		}
		if err := os.Setenv(row.Cells[0].Value, row.Cells[1].Value); err != nil {
			return err
		}
	}
	return nil
}

func (p *publishContext) steamCMDExitsWithCode(code int) error {
	p.runner.ExitCode = code
	return nil
}

func (p *publishContext) theBuildContainsADirectory(rel string) error {
	dir := filepath.Join(p.buildDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "payload.bin"), []byte("internal"), 0644)
}

// --- When ---

func (p *publishContext) iPublishTheBuild() error {
	cfg := config.Default()
	cfg.SteamCmd.Dir = p.toolDir
	cfg.SteamCmd.ScratchDir = p.scratchDir

	cmd.RunPublishWithDependencies(context.Background(), cfg, cmd.PublishDependencies{
		Source: config.NewEnv(),
		Runner: p.runner,
		Sender: p.sender,
		Now:    func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) },
		Logger: zerolog.New(p.logs),
	}, p.buildDir)
	return nil
}

// --- Then ---

func (p *publishContext) steamCMDShouldHaveBeenRunWith(expected string) error {
	if len(p.runner.Commands) != 1 {
		return fmt.Errorf("expected SteamCMD to run once, ran %d times", len(p.runner.Commands))
	}
	args := strings.Join(p.runner.Commands[0].Args, " ")
	if !strings.Contains(args, expected) {
		return fmt.Errorf("expected arguments to contain %q, got %q", expected, args)
	}
	return nil
}

func (p *publishContext) steamCMDShouldNotHaveBeenRun() error {
	if len(p.runner.Commands) != 0 {
		return fmt.Errorf("expected SteamCMD not to run, got %v", p.runner.Commands[0].Args)
	}
	return nil
}

func (p *publishContext) theStagedSteamConfigShouldBe(expected string) error {
	data, err := os.ReadFile(filepath.Join(p.toolDir, steamcmd.ConfigDirName, steamcmd.ConfigFileName))
	if err != nil {
		return fmt.Errorf("failed to read staged config: %w", err)
	}
	if string(data) != expected {
		return fmt.Errorf("expected staged config %q, got %q", expected, string(data))
	}
	return nil
}

func (p *publishContext) readManifest(appID int) (*manifest.Node, error) {
	f, err := os.Open(filepath.Join(p.scratchDir, manifest.FileName(appID)))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return manifest.Parse(f)
}

func (p *publishContext) theManifestShouldHaveAppIDAndDepot(appID, depotID string) error {
	id, err := strconv.Atoi(appID)
	if err != nil {
		return err
	}
	root, err := p.readManifest(id)
	if err != nil {
		return err
	}

	if got := root.Find("appbuild", "appid"); got == nil || got.Value != appID {
		return fmt.Errorf("expected appid %s in manifest", appID)
	}
	contentRoot := root.Find("appbuild", "depots", depotID, "contentroot")
	if contentRoot == nil {
		return fmt.Errorf("expected depot %s in manifest", depotID)
	}
	if contentRoot.Value != p.buildDir {
		return fmt.Errorf("expected contentroot %q, got %q", p.buildDir, contentRoot.Value)
	}
	return nil
}

func (p *publishContext) theManifestShouldNotSetABranchLive() error {
	root, err := p.readManifest(1541370)
	if err != nil {
		return err
	}
	if node := root.Find("appbuild", "setlive"); node != nil {
		return fmt.Errorf("expected no setlive, got %q", node.Value)
	}
	return nil
}

func (p *publishContext) noManifestShouldBeWritten() error {
	entries, err := os.ReadDir(p.scratchDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		return fmt.Errorf("expected empty scratch directory, found %s", entries[0].Name())
	}
	return nil
}

func (p *publishContext) lastMessage() (*notification.Message, error) {
	if len(p.sender.Messages) == 0 {
		return nil, fmt.Errorf("no notification was sent")
	}
	return p.sender.Messages[len(p.sender.Messages)-1], nil
}

func (p *publishContext) aNotificationTitledShouldBeSent(title string) error {
	msg, err := p.lastMessage()
	if err != nil {
		return err
	}
	if msg.Title != title {
		return fmt.Errorf("expected title %q, got %q", title, msg.Title)
	}
	if p.sender.URLs[len(p.sender.URLs)-1] != os.Getenv(publish.EnvWebhook) {
		return fmt.Errorf("notification sent to %q", p.sender.URLs[len(p.sender.URLs)-1])
	}
	return nil
}

func (p *publishContext) noNotificationShouldBeSent() error {
	if len(p.sender.Messages) != 0 {
		return fmt.Errorf("expected no notification, got %q", p.sender.Messages[0].Title)
	}
	return nil
}

func (p *publishContext) theNotificationShouldLinkTo(url string) error {
	msg, err := p.lastMessage()
	if err != nil {
		return err
	}
	if msg.URL != url {
		return fmt.Errorf("expected link %q, got %q", url, msg.URL)
	}
	return nil
}

func (p *publishContext) theNotificationShouldHaveNoLink() error {
	msg, err := p.lastMessage()
	if err != nil {
		return err
	}
	if msg.URL != "" {
		return fmt.Errorf("expected no link, got %q", msg.URL)
	}
	return nil
}

func (p *publishContext) theNotificationFieldShouldBe(label, expected string) error {
	msg, err := p.lastMessage()
	if err != nil {
		return err
	}
	got, ok := msg.Field(label)
	if !ok {
		return fmt.Errorf("notification has no %q field", label)
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", label, expected, got)
	}
	return nil
}

func (p *publishContext) theBuildShouldContain(rel string) error {
	if _, err := os.Stat(filepath.Join(p.buildDir, filepath.FromSlash(rel))); err != nil {
		return fmt.Errorf("expected %s in build: %w", rel, err)
	}
	return nil
}

func (p *publishContext) theBuildShouldNotContain(rel string) error {
	if _, err := os.Stat(filepath.Join(p.buildDir, filepath.FromSlash(rel))); !os.IsNotExist(err) {
		return fmt.Errorf("expected %s to be removed from build", rel)
	}
	return nil
}

func (p *publishContext) theLogShouldContain(expected string) error {
	if !strings.Contains(p.logs.String(), expected) {
		return fmt.Errorf("expected log to contain %q, got:\n%s", expected, p.logs.String())
	}
	return nil
}
