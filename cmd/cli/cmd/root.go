// Package cmd provides the CLI commands for construction-cost.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"construction-cost/internal/bootstrap"
	"construction-cost/internal/config"
	"construction-cost/internal/errors"
	"construction-cost/internal/logging"
)

// Version is stamped at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool

	// cfg is loaded once per invocation by initConfig
	cfg = config.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "construction-cost",
	Short: "Estimate construction project costs",
	Long: `construction-cost produces itemized, reproducible construction cost
estimates from a project description.

Estimates combine regional and seasonal rate tables, a requirement
analysis, and similar completed projects into a breakdown with risks,
recommendations and a confidence score.

Examples:
  construction-cost estimate project.yaml
  construction-cost estimate --format json --save project.yaml
  construction-cost estimates list --project proj-1
  construction-cost comparables import history.yaml`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (json, yaml or toml; default $HOME/.construction-cost/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = defaultConfigPath()
	}

	loaded, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// defaultConfigPath is $HOME/.construction-cost/config.json, or empty when
// there is no home directory
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".construction-cost", "config.json")
}

// openRuntime builds the engine and stores for a command
func openRuntime(opts bootstrap.Options) (*bootstrap.Runtime, error) {
	return bootstrap.Build(cfg, logging.Logger, opts)
}

func logger() *zap.Logger {
	return logging.Component(nil, "cli")
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "construction-cost version %s\n", Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			path = defaultConfigPath()
		}
		if path == "" {
			return errors.Config("no config path and no home directory", nil)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
		shown := *cfg
		if shown.Insight.APIKey != "" {
			shown.Insight.APIKey = "********"
		}
		return writeJSON(cmd.OutOrStdout(), shown)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
