package cmd

import (
	"fmt"
	"os"

	"steam-publisher/infrastructure/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	env     *config.Env
)

var rootCmd = &cobra.Command{
	Use:   "steam-publisher",
	Short: "Upload exported game builds to Steam",
	Long: `steam-publisher is the post-export step of a cloud build pipeline:

  - Resolve the Steam app and depot for BUILD_TARGET
  - Remove DoNotShip directories from the build
  - Write the SteamCMD app build manifest
  - Run SteamCMD and report the result to a Discord webhook

Example:
  STEAM_USER=builder STEAM_CONFIG=... BUILD_TARGET=windows \
    steam-publisher publish ./Builds/Windows`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogger, initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initLogger() {
	// Tool output is logged from two reader goroutines
	writer := zerolog.SyncWriter(zerolog.ConsoleWriter{Out: os.Stderr})
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultFileName
	}

	var err error
	cfg, err = config.LoadOrDefault(cfgFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfgFile).Msg("Could not load config file, using built-in targets")
		cfg = config.Default()
	}

	env = config.NewEnv()
	env.Apply(cfg)
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// GetLogger returns the process logger
func GetLogger() zerolog.Logger {
	return log.Logger
}
