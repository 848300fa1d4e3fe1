package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"steam-publisher/domain/publish"
	"steam-publisher/infrastructure/config"
	"steam-publisher/infrastructure/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter answers prompts in order
type scriptedPrompter struct {
	inputs   []string
	confirms []bool
}

func (p *scriptedPrompter) Input(message string, defaultValue string) (string, error) {
	if len(p.inputs) == 0 {
		return "", errors.New("unexpected input prompt: " + message)
	}
	answer := p.inputs[0]
	p.inputs = p.inputs[1:]
	return answer, nil
}

func (p *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if len(p.confirms) == 0 {
		return false, errors.New("unexpected confirm prompt: " + message)
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func TestRunTargetsListWithDependencies(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunTargetsListWithDependencies(config.Default(), filepath.Join(t.TempDir(), "c.yaml"), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "KEY"))
	assert.Contains(t, lines[1], "windows ")
	assert.Contains(t, lines[1], "1541373")
	assert.Contains(t, lines[2], "windows-demo")

	out.Reset()
	require.NoError(t, RunTargetsListWithDependencies(&config.Config{}, "", &out))
	assert.Equal(t, "No targets configured.\n", out.String())
}

func TestRunTargetsAddAndUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultFileName)
	cfg := config.Default()
	var out bytes.Buffer

	require.NoError(t, RunTargetsAddWithDependencies(cfg, path, "Linux", config.TargetConfig{AppID: 5, DepotID: 6}, &out))
	assert.Equal(t, "Added target \"linux\": app 5, depot 6\n", out.String())

	branch := "beta"
	require.NoError(t, RunTargetsUpdateWithDependencies(cfg, path, "linux", config.TargetUpdate{Branch: &branch}, &out))

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "beta", saved.Targets["linux"].Branch)

	err = RunTargetsRemoveWithDependencies(cfg, path, "mac", &out)
	assert.True(t, errors.Is(err, config.ErrTargetNotFound))
}

func TestRunManifestWithDependencies(t *testing.T) {
	buildDir := t.TempDir()
	scratch := filepath.Join(t.TempDir(), "scratch")
	var out bytes.Buffer

	err := RunManifestWithDependencies(
		publish.DefaultRegistry(),
		filesystem.NewChecker(),
		filesystem.NewManifestWriter(scratch),
		"Windows-Demo", buildDir, true,
		&out,
	)
	require.NoError(t, err)
	assert.Contains(t, out.String(), filepath.Join(scratch, "app_build_3810460.vdf"))
	assert.Contains(t, out.String(), "Manifest OK")

	err = RunManifestWithDependencies(
		publish.DefaultRegistry(),
		filesystem.NewChecker(),
		filesystem.NewManifestWriter(scratch),
		"switch", buildDir, false,
		&out,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, publish.ErrUnknownTarget))
	assert.Contains(t, err.Error(), "steam-publisher targets add switch")
}

func TestCheckManifest_Mismatch(t *testing.T) {
	buildDir := t.TempDir()
	writer := filesystem.NewManifestWriter(t.TempDir())

	target := publish.NewUploadTarget(1541370, 1541373)
	path, err := writer.Write(target, buildDir)
	require.NoError(t, err)

	live := target
	live.SetLive = true
	err = CheckManifest(path, live, buildDir)
	assert.ErrorContains(t, err, `setlive is "", want "default"`)

	other := publish.NewUploadTarget(1541370, 999)
	err = CheckManifest(path, other, buildDir)
	assert.ErrorContains(t, err, "contentroot")
}

func TestRunSanitizeWithDependencies(t *testing.T) {
	buildDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(buildDir, "A_DoNotShip", "nested"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(buildDir, "B_DontShip"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(buildDir, "Keep"), 0755))

	var out bytes.Buffer
	require.NoError(t, RunSanitizeWithDependencies(filesystem.NewChecker(), filesystem.NewSanitizer(), buildDir, &out))

	assert.Contains(t, out.String(), "Removed 2 DoNotShip directories")
	assert.NoDirExists(t, filepath.Join(buildDir, "A_DoNotShip"))
	assert.NoDirExists(t, filepath.Join(buildDir, "B_DontShip"))
	assert.DirExists(t, filepath.Join(buildDir, "Keep"))
}

func TestRunSetupWithPrompter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.DefaultFileName)
	prompter := &scriptedPrompter{
		inputs:   []string{"tools/steamcmd", "", "Release Bot", " Mac ", "42", "43", "default"},
		confirms: []bool{false, true, false, false},
	}
	var out bytes.Buffer

	require.NoError(t, RunSetupWithPrompter(prompter, path, &out))
	assert.Contains(t, out.String(), "Configuration saved to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tools/steamcmd", cfg.SteamCmd.Dir)
	assert.Equal(t, "Release Bot", cfg.Notification.Author)
	assert.Equal(t, map[string]config.TargetConfig{
		"mac": {AppID: 42, DepotID: 43, Branch: "default"},
	}, cfg.Targets)
}

func TestRunSetupWithPrompter_InvalidID(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultFileName)
	prompter := &scriptedPrompter{
		inputs:   []string{"steamcmd", "", "Bot", "mac", "abc"},
		confirms: []bool{false, true},
	}

	err := RunSetupWithPrompter(prompter, path, &bytes.Buffer{})
	assert.ErrorContains(t, err, "App ID must be a positive number")
	assert.NoFileExists(t, path)
}
