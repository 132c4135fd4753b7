// =============================================================================
// Auction JSON to DAT Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It loads documents and checks
// every item the way 'process' would, without writing anything. Unlike
// 'process', which stops a document at its first malformed item, it reports
// all of them.
//
// COMMAND USAGE:
//   auction2dat validate [paths...] [flags]
//
// OUTPUT:
//   items-0.json: OK (250 items)
//   items-1.json: 2 error(s), 1 warning(s) in 250 items
//     [ERROR] Item #4 (ItemID 1043402767), Field 'Started': unrecognized month "Dez" ...
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/auction-json-to-dat/internal/extractor"
	"github.com/ginjaninja78/auction-json-to-dat/internal/jsonparser"
	"github.com/ginjaninja78/auction-json-to-dat/internal/validation"
	"github.com/ginjaninja78/auction-json-to-dat/pkg/utils"
	"github.com/spf13/cobra"
)

// validateOptions holds the validate flags.
type validateOptions struct {
	UnknownMonth string
	Recursive    bool
	Strict       bool
	FailFast     bool
}

// validateFlags receives the parsed validate flags.
var validateFlags validateOptions

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Check documents for malformed items without writing output",
	Long: `The validate command reads each document and checks every item for the
fields conversion requires. All problems are reported, not only the first one.

Warnings (the document still converts):
  - Number_of_Bids does not match the number of bids listed
  - An ItemID appears more than once in a document

With --strict, warnings fail validation too. With --fail-fast, each document
stops at its first malformed item.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), os.Stderr, globalsFrom(cmd), validateFlags, args)
	},
}

// init registers the validate command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&validateFlags.UnknownMonth,
		"unknown-month",
		"",
		"Unknown month names in timestamps: reject or passthrough",
	)

	validateCmd.Flags().BoolVar(
		&validateFlags.Recursive,
		"recursive",
		false,
		"Descend into subdirectories of directory arguments",
	)

	validateCmd.Flags().BoolVar(
		&validateFlags.Strict,
		"strict",
		false,
		"Treat warnings as errors",
	)

	validateCmd.Flags().BoolVar(
		&validateFlags.FailFast,
		"fail-fast",
		false,
		"Stop checking a document at its first malformed item",
	)
}

// runValidate validates the documents named by args.
//
// RETURNS:
//   - An error if any document is unreadable or invalid.
func runValidate(out, logOut io.Writer, g globalOptions, v validateOptions, args []string) error {
	cfg, logger, err := loadSettings(g, logOut)
	if err != nil {
		return err
	}
	if v.UnknownMonth != "" {
		cfg.UnknownMonth = v.UnknownMonth
	}
	if v.Recursive {
		cfg.Recursive = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputExtension, cfg.Recursive)
	inputFiles, _, err := fm.DiscoverInputFiles(args)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No %s files found.\n", cfg.InputExtension)
		return nil
	}

	validator := validation.NewValidatorWithOptions(validation.ValidationOptions{
		Extract:               extractor.Options{MonthPolicy: cfg.MonthPolicy()},
		StopOnFirstError:      v.FailFast,
		TreatWarningsAsErrors: v.Strict,
	})

	invalid := 0
	for _, file := range inputFiles {
		name := filepath.Base(file)

		doc, err := jsonparser.Parse(file)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "%s: %v\n", name, err)
			continue
		}

		result := validator.ValidateDocument(doc)
		logger.WithField("file", file).WithField("items", result.ItemsValidated).Debug("validated document")

		if !result.IsValid {
			invalid++
		}
		if len(result.Errors) == 0 {
			fmt.Fprintf(out, "%s: OK (%d items)\n", name, result.ItemsValidated)
			continue
		}

		fmt.Fprintf(out, "%s: %d error(s), %d warning(s) in %d items\n",
			name, result.ErrorCount, result.WarningCount, result.ItemsValidated)
		for _, ve := range result.Errors {
			fmt.Fprintf(out, "  %s\n", ve.Error())
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d document(s) invalid", invalid, len(inputFiles))
	}
	return nil
}
