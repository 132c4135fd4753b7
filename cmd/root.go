// =============================================================================
// Auction JSON to DAT Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (auction2dat)
//   ├── processCmd  (auction2dat process)
//   ├── validateCmd (auction2dat validate)
//   └── versionCmd  (auction2dat version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose,
//   --log-format). Every subcommand calls loadSettings to read the config
//   file, apply those flags and build the logger.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/auction-json-to-dat/internal/config"
	"github.com/ginjaninja78/auction-json-to-dat/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is read when present; a missing default is not an error.
const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat overrides the configured log format when set.
var logFormat string

// globalOptions carries the root flags into a command run.
type globalOptions struct {
	// ConfigFile is the configuration path.
	ConfigFile string

	// ConfigExplicit is set when the path came from --config. An explicit
	// file must exist.
	ConfigExplicit bool

	// Verbose forces the debug log level.
	Verbose bool

	// LogFormat overrides log_format when not empty.
	LogFormat string
}

// globalsFrom reads the root flags as seen by cmd.
func globalsFrom(cmd *cobra.Command) globalOptions {
	return globalOptions{
		ConfigFile:     cfgFile,
		ConfigExplicit: cmd.Flags().Changed("config"),
		Verbose:        verbose,
		LogFormat:      logFormat,
	}
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "auction2dat",
	Short: "Auction JSON to DAT Converter - Turn auction listing dumps into bulk-load tables",
	Long: `Auction JSON to DAT Converter reads JSON documents of auction listings
({"Items": [...]}) and writes four pipe-delimited tables per document, ready for
a relational bulk loader:

  <name>-item.dat       one row per listing
  <name>-category.dat   one row per listing category
  <name>-user.dat       one row per seller and bidder
  <name>-bid.dat        one row per bid

Currency amounts are reduced to digits and '.', timestamps are rewritten as
YYYY-MM-DD HH:MM:SS, names and descriptions are quoted, and duplicate rows are
dropped.

Example Usage:
  auction2dat process items-*.json       # Convert the given documents
  auction2dat process --output-dir out   # Convert everything in input_dir into out/
  auction2dat validate ./data            # Report every malformed item, write nothing`,

	// Without a subcommand, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},

	SilenceUsage: true,
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

// loadSettings loads the configuration and builds the logger.
//
// PARAMETERS:
//   - g: The global flag values.
//   - logOut: Where log entries are written.
//
// RETURNS:
//   - The effective configuration.
//   - The logger built from it.
//   - An error if the config file is invalid or an explicit one is missing.
func loadSettings(g globalOptions, logOut io.Writer) (*config.MainConfig, *logrus.Logger, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, nil, err
	}

	if g.Verbose {
		cfg.LogLevel = "debug"
	}
	if g.LogFormat != "" {
		cfg.LogFormat = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, logger, nil
}

func loadConfig(g globalOptions) (*config.MainConfig, error) {
	path := g.ConfigFile
	if path == "" {
		path = defaultConfigFile
	}

	cfg, err := config.LoadMainConfig(path)
	if err == nil {
		return cfg, nil
	}
	if !g.ConfigExplicit && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("failed to load main config: %w", err)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		"Log format: text or json (overrides log_format)",
	)
}
