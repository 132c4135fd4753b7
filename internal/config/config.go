// =============================================================================
// Auction JSON to DAT Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration. The
// configuration is a single YAML file; every key is optional and falls back to
// a default, so running without a config file is the same as running with an
// empty one.
//
// EXAMPLE (config.yaml):
//
//   input_dir: ./input
//   output_dir: ./output
//   input_extension: .json
//   delimiter: "|"
//   null_marker: "NULL"
//   unknown_month: reject
//   workbook: false
//   log_level: info
//   log_format: text
//   log_dir: ./logs
//
// Command-line flags override individual keys after loading.
//
// =============================================================================

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/auction-json-to-dat/internal/logging"
	"github.com/ginjaninja78/auction-json-to-dat/internal/transform"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for documents when no paths are given.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the .dat files. Empty writes them next to each input,
	// named after the input file.
	// Default: ""
	OutputDir string `yaml:"output_dir"`

	// InputExtension selects which files in a directory are documents.
	// Default: ".json"
	InputExtension string `yaml:"input_extension"`

	// Recursive also scans subdirectories of directory arguments.
	// Default: false
	Recursive bool `yaml:"recursive"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// Delimiter separates fields in .dat files. Must be a single byte and
	// must not be a double quote.
	// Default: "|"
	Delimiter string `yaml:"delimiter"`

	// NullMarker is written for absent values.
	// Default: "NULL"
	NullMarker string `yaml:"null_marker"`

	// UnknownMonth is the policy for timestamps with an unknown month name:
	// "reject" fails the document, "passthrough" copies the token verbatim.
	// Default: "reject"
	UnknownMonth string `yaml:"unknown_month"`

	// Workbook also writes an .xlsx workbook per document.
	// Default: false
	Workbook bool `yaml:"workbook"`

	// WorkbookDir overrides where workbooks are written.
	// Default: "" (same place as the .dat files)
	WorkbookDir string `yaml:"workbook_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// LogDir receives the error log and run summary. Empty disables them.
	// Default: ""
	LogDir string `yaml:"log_dir"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ContinueOnError determines whether to continue with the next document
	// when one fails. I/O errors always stop the run.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is given.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or fails validation.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse the YAML. Unknown keys are rejected so typos do not pass silently.
	var config MainConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.InputExtension == "" {
		config.InputExtension = ".json"
	}
	if !strings.HasPrefix(config.InputExtension, ".") {
		config.InputExtension = "." + config.InputExtension
	}
	if config.Delimiter == "" {
		config.Delimiter = "|"
	}
	if config.NullMarker == "" {
		config.NullMarker = "NULL"
	}
	if config.UnknownMonth == "" {
		config.UnknownMonth = transform.MonthReject.String()
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.ContinueOnError == nil {
		continueOnError := true
		config.ContinueOnError = &continueOnError
	}
}

// Validate checks the configuration after defaults have been applied.
func (c *MainConfig) Validate() error {
	if len(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.Delimiter == `"` {
		return fmt.Errorf("delimiter must not be a double quote")
	}
	if strings.HasPrefix(c.NullMarker, `"`) {
		return fmt.Errorf("null_marker %q must not start with a double quote", c.NullMarker)
	}
	if strings.Contains(c.NullMarker, c.Delimiter) {
		return fmt.Errorf("null_marker %q must not contain the delimiter", c.NullMarker)
	}
	if _, err := transform.ParseMonthPolicy(c.UnknownMonth); err != nil {
		return fmt.Errorf("unknown_month: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := logging.Formatter(c.LogFormat); err != nil {
		return fmt.Errorf("log_format: %w", err)
	}
	return nil
}

// MonthPolicy returns the parsed unknown-month policy.
func (c *MainConfig) MonthPolicy() transform.MonthPolicy {
	policy, _ := transform.ParseMonthPolicy(c.UnknownMonth)
	return policy
}

// ShouldContinueOnError reports whether a failed document lets the run go on.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}
