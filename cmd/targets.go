package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"steam-publisher/infrastructure/config"

	"github.com/spf13/cobra"
)

// OutputWriter is where command output is written (allows capturing in tests)
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is the default output writer for commands
var DefaultOutput OutputWriter = os.Stdout

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage build targets",
	Long: `Manage the build targets that map BUILD_TARGET to a Steam app and depot.

Examples:
  steam-publisher targets list
  steam-publisher targets add linux --app 1541370 --depot 1541374
  steam-publisher targets update linux --branch beta --set-live
  steam-publisher targets remove linux`,
}

func init() {
	rootCmd.AddCommand(targetsCmd)

	// Add subcommands
	targetsCmd.AddCommand(targetsAddCmd)
	targetsCmd.AddCommand(targetsListCmd)
	targetsCmd.AddCommand(targetsRemoveCmd)
	targetsCmd.AddCommand(targetsUpdateCmd)
}

// --- ADD command ---

var (
	addAppID   int
	addDepotID int
	addBranch  string
	addSetLive bool
)

var targetsAddCmd = &cobra.Command{
	Use:   "add <key>",
	Short: "Add a new build target",
	Long: `Add a build target to the configuration.

Examples:
  steam-publisher targets add linux --app 1541370 --depot 1541374
  steam-publisher targets add windows-beta --app 1541370 --depot 1541373 --branch beta --set-live`,
	Args: cobra.ExactArgs(1),
	RunE: runTargetsAdd,
}

func init() {
	targetsAddCmd.Flags().IntVar(&addAppID, "app", 0, "Steam app id (required)")
	targetsAddCmd.Flags().IntVar(&addDepotID, "depot", 0, "Steam depot id (required)")
	targetsAddCmd.Flags().StringVar(&addBranch, "branch", "", "branch to set live (default \"default\")")
	targetsAddCmd.Flags().BoolVar(&addSetLive, "set-live", false, "set the uploaded build live on the branch")
	targetsAddCmd.MarkFlagRequired("app")
	targetsAddCmd.MarkFlagRequired("depot")
}

func runTargetsAdd(cmd *cobra.Command, args []string) error {
	return RunTargetsAddWithDependencies(GetConfig(), cfgFile, args[0], config.TargetConfig{
		AppID:   addAppID,
		DepotID: addDepotID,
		Branch:  addBranch,
		SetLive: addSetLive,
	}, DefaultOutput)
}

// RunTargetsAddWithDependencies runs the add command with injected dependencies
func RunTargetsAddWithDependencies(cfg *config.Config, configPath, key string, target config.TargetConfig, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.AddTarget(key, target); err != nil {
		return err
	}

	added, err := mgr.GetTarget(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added target %q: app %d, depot %d\n", added.Key, added.AppID, added.DepotID)
	return nil
}

// --- LIST command ---

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List build targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunTargetsListWithDependencies(GetConfig(), cfgFile, DefaultOutput)
	},
}

// RunTargetsListWithDependencies runs the list command with injected dependencies
func RunTargetsListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	targets := config.NewConfigManager(cfg, configPath).ListTargets()
	if len(targets) == 0 {
		fmt.Fprintln(out, "No targets configured.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tAPP\tDEPOT\tBRANCH\tSET LIVE")
	for _, t := range targets {
		live := ""
		if t.SetLive {
			live = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", t.Key, t.AppID, t.DepotID, t.Branch, live)
	}
	return w.Flush()
}

// --- REMOVE command ---

var targetsRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a build target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunTargetsRemoveWithDependencies(GetConfig(), cfgFile, args[0], DefaultOutput)
	},
}

// RunTargetsRemoveWithDependencies runs the remove command with injected dependencies
func RunTargetsRemoveWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	if err := config.NewConfigManager(cfg, configPath).RemoveTarget(key); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed target %q\n", key)
	return nil
}

// --- UPDATE command ---

var (
	updateAppID   int
	updateDepotID int
	updateBranch  string
	updateSetLive bool
)

var targetsUpdateCmd = &cobra.Command{
	Use:   "update <key>",
	Short: "Update a build target",
	Long: `Update an existing build target. Only the given flags are changed.

Examples:
  steam-publisher targets update windows --depot 1541374
  steam-publisher targets update windows --branch beta --set-live
  steam-publisher targets update windows --set-live=false`,
	Args: cobra.ExactArgs(1),
	RunE: runTargetsUpdate,
}

func init() {
	targetsUpdateCmd.Flags().IntVar(&updateAppID, "app", 0, "new Steam app id")
	targetsUpdateCmd.Flags().IntVar(&updateDepotID, "depot", 0, "new Steam depot id")
	targetsUpdateCmd.Flags().StringVar(&updateBranch, "branch", "", "new branch")
	targetsUpdateCmd.Flags().BoolVar(&updateSetLive, "set-live", false, "set the uploaded build live on the branch")
}

func runTargetsUpdate(cmd *cobra.Command, args []string) error {
	var update config.TargetUpdate
	flags := cmd.Flags()
	if flags.Changed("app") {
		update.AppID = &updateAppID
	}
	if flags.Changed("depot") {
		update.DepotID = &updateDepotID
	}
	if flags.Changed("branch") {
		update.Branch = &updateBranch
	}
	if flags.Changed("set-live") {
		update.SetLive = &updateSetLive
	}

	if update == (config.TargetUpdate{}) {
		return fmt.Errorf("at least one of --app, --depot, --branch or --set-live is required")
	}

	return RunTargetsUpdateWithDependencies(GetConfig(), cfgFile, args[0], update, DefaultOutput)
}

// RunTargetsUpdateWithDependencies runs the update command with injected dependencies
func RunTargetsUpdateWithDependencies(cfg *config.Config, configPath, key string, update config.TargetUpdate, out OutputWriter) error {
	if err := config.NewConfigManager(cfg, configPath).UpdateTarget(key, update); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated target %q\n", key)
	return nil
}
