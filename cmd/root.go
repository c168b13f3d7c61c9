// Package cmd contains the CLI commands for semlook
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile string
	logger  *logrus.Logger
)

// rootCmd represents the base command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "semlook",
	Short: "Semantic model to LookML transpiler",
	Long: `semlook reads semantic model YAML (data models, semantic models and
metrics), validates that every metric's measures can be joined, infers
explores from entity relationships and writes LookML views and explores.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./semlook.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error, fatal, panic); overrides the config file")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = DefaultConfigFile
	}
}

// setupLogger applies the log level from the flag, else from the config file,
// and tags every entry of this invocation with a run id
func setupLogger(cmd *cobra.Command, cfg *CLIConfig) logrus.FieldLogger {
	logLevel := cfg.Logging
	if flagLevel, err := cmd.Flags().GetString("log-level"); err == nil && flagLevel != "" {
		logLevel = flagLevel
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, defaulting to info")

		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	return logger.WithField("run_id", uuid.New().String())
}
