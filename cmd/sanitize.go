package cmd

import (
	"fmt"

	"steam-publisher/domain/publish"
	"steam-publisher/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <build-output-path>",
	Short: "Remove DoNotShip directories from a build",
	Long: `Delete every directory under the build whose name contains a configured
marker (DoNotShip and DontShip by default, case-insensitive).

This is the same cleanup publish performs before writing the manifest.

Example:
  steam-publisher sanitize ./Builds/Windows`,
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	opts := []filesystem.SanitizerOption{filesystem.WithSanitizerLogger(GetLogger())}
	if markers := GetConfig().Sanitize.Markers; len(markers) > 0 {
		opts = append(opts, filesystem.WithMarkers(markers...))
	}

	return RunSanitizeWithDependencies(filesystem.NewChecker(), filesystem.NewSanitizer(opts...), args[0], DefaultOutput)
}

// RunSanitizeWithDependencies runs the sanitize command with injected dependencies
func RunSanitizeWithDependencies(locator publish.BuildLocator, sanitizer publish.BuildSanitizer, buildOutputPath string, out OutputWriter) error {
	buildDir, err := locator.ResolveBuildDir(buildOutputPath)
	if err != nil {
		return err
	}

	removed, err := sanitizer.Clean(buildDir)
	fmt.Fprintf(out, "Removed %d DoNotShip director%s from %s\n", removed, plural(removed, "y", "ies"), buildDir)
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
