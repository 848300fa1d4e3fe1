package cmd

import (
	"fmt"
	"os"
	"strconv"

	"steam-publisher/domain/manifest"
	"steam-publisher/domain/publish"
	"steam-publisher/infrastructure/config"
	"steam-publisher/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var manifestCheck bool

var manifestCmd = &cobra.Command{
	Use:   "manifest <target> <build-output-path>",
	Short: "Write the SteamCMD app build manifest without uploading",
	Long: `Write the app build manifest for a build target to the scratch directory
and print its path. Nothing is uploaded and the build is not modified.

With --check the written manifest is parsed back and its app id, depot id
and content root are compared with the target.

Example:
  steam-publisher manifest windows ./Builds/Windows --check`,
	Args: cobra.ExactArgs(2),
	RunE: runManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.Flags().BoolVar(&manifestCheck, "check", false, "parse the written manifest and verify it")
}

func runManifest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	return RunManifestWithDependencies(
		cfg.Registry(),
		filesystem.NewChecker(),
		filesystem.NewManifestWriter(cfg.SteamCmd.ScratchDir),
		args[0], args[1], manifestCheck,
		DefaultOutput,
	)
}

// RunManifestWithDependencies runs the manifest command with injected dependencies
func RunManifestWithDependencies(
	registry publish.Registry,
	locator publish.BuildLocator,
	writer publish.ManifestWriter,
	targetKey, buildOutputPath string,
	check bool,
	out OutputWriter,
) error {
	target, err := registry.Lookup(targetKey)
	if err != nil {
		return fmt.Errorf("%w\n\nTo fix this, run:\n  %s", err, config.SuggestAddTargetCommand(publish.NormalizeKey(targetKey)))
	}

	buildDir, err := locator.ResolveBuildDir(buildOutputPath)
	if err != nil {
		return err
	}

	path, err := writer.Write(target, buildDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Manifest written to %s\n", path)

	if !check {
		return nil
	}

	if err := CheckManifest(path, target, buildDir); err != nil {
		return err
	}
	fmt.Fprintln(out, "Manifest OK")
	return nil
}

// CheckManifest parses the manifest at path and verifies it describes target
func CheckManifest(path string, target publish.UploadTarget, contentRoot string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	root, err := manifest.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	depot := strconv.Itoa(target.DepotID)
	checks := []struct {
		name string
		node *manifest.Node
		want string
	}{
		{"appid", root.Find("appbuild", "appid"), strconv.Itoa(target.AppID)},
		{"setlive", root.Find("appbuild", "setlive"), target.LiveBranch()},
		{"contentroot", root.Find("appbuild", "depots", depot, "contentroot"), contentRoot},
	}

	for _, c := range checks {
		got := ""
		if c.node != nil {
			got = c.node.Value
		}
		if got != c.want {
			return fmt.Errorf("manifest %s: %s is %q, want %q", path, c.name, got, c.want)
		}
	}

	return nil
}
