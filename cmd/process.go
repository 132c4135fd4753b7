// =============================================================================
// Auction JSON to DAT Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// converting JSON documents to .dat tables.
//
// COMMAND USAGE:
//   auction2dat process [paths...] [flags]
//
// FLAGS:
//   --dry-run        : Load and extract every document without writing output
//   --output-dir     : Write outputs here instead of next to each input
//   --workbook       : Also write an .xlsx workbook per document
//   --unknown-month  : reject | passthrough
//   --recursive      : Descend into subdirectories of directory arguments
//
// PROCESSING PIPELINE:
//   1. Load configuration and set up logging
//   2. Discover input documents
//   3. Convert each document, one at a time, in order
//   4. Print a summary and write the error log and run summary
//
// FAILURES:
//   A document that cannot be read or holds a malformed item is reported and
//   the run moves on (unless continue_on_error is off). An output error stops
//   the run immediately.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/auction-json-to-dat/internal/config"
	"github.com/ginjaninja78/auction-json-to-dat/internal/converter"
	"github.com/ginjaninja78/auction-json-to-dat/internal/extractor"
	"github.com/ginjaninja78/auction-json-to-dat/internal/jsonparser"
	"github.com/ginjaninja78/auction-json-to-dat/internal/materializer"
	"github.com/ginjaninja78/auction-json-to-dat/internal/transform"
	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
	"github.com/ginjaninja78/auction-json-to-dat/internal/workbook"
	"github.com/ginjaninja78/auction-json-to-dat/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processOptions holds the process flags. Zero values leave the
// configuration untouched.
type processOptions struct {
	DryRun       bool
	OutputDir    string
	Workbook     bool
	UnknownMonth string
	Recursive    bool
}

// processFlags receives the parsed process flags.
var processFlags processOptions

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process [paths...]",
	Short: "Convert auction JSON documents to .dat tables",
	Long: `The process command converts each given JSON document (or every document in
the given directories) into four .dat tables. With no arguments the configured
input directory is scanned.

Documents are converted one at a time, in the order given.

On success:
  - <name>-item.dat, <name>-category.dat, <name>-user.dat and <name>-bid.dat
    are written next to the input, or into --output-dir

On error:
  - A malformed document produces no output at all
  - Processing continues with the next document
  - An error writing output stops the run
  - With log_dir configured, an error log and a run summary are written`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.OutOrStdout(), os.Stderr, globalsFrom(cmd), processFlags, args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&processFlags.DryRun,
		"dry-run",
		false,
		"Load and extract documents without writing output files",
	)

	processCmd.Flags().StringVar(
		&processFlags.OutputDir,
		"output-dir",
		"",
		"Directory for output files (default: next to each input)",
	)

	processCmd.Flags().BoolVar(
		&processFlags.Workbook,
		"workbook",
		false,
		"Also write an .xlsx workbook per document",
	)

	processCmd.Flags().StringVar(
		&processFlags.UnknownMonth,
		"unknown-month",
		"",
		"Unknown month names in timestamps: reject or passthrough",
	)

	processCmd.Flags().BoolVar(
		&processFlags.Recursive,
		"recursive",
		false,
		"Descend into subdirectories of directory arguments",
	)
}

// applyTo overrides configuration keys with the flags that were set.
func (p processOptions) applyTo(cfg *config.MainConfig) error {
	if p.OutputDir != "" {
		cfg.OutputDir = p.OutputDir
	}
	if p.Workbook {
		cfg.Workbook = true
	}
	if p.UnknownMonth != "" {
		cfg.UnknownMonth = p.UnknownMonth
	}
	if p.Recursive {
		cfg.Recursive = true
	}
	return cfg.Validate()
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess converts the documents named by args.
//
// PARAMETERS:
//   - out: Where progress lines and the summary are printed.
//   - logOut: Where log entries are written.
//   - g: Global flag values.
//   - p: Process flag values.
//   - args: Files or directories; empty means the configured input directory.
//
// RETURNS:
//   - An error if the run was aborted or any document failed.
func runProcess(out, logOut io.Writer, g globalOptions, p processOptions, args []string) error {
	summary := utils.ProcessingSummary{
		RunID:     utils.NewRunID(),
		StartTime: time.Now(),
		DryRun:    p.DryRun,
	}

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, base, err := loadSettings(g, logOut)
	if err != nil {
		return err
	}
	if err := p.applyTo(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	logger := base.WithField("run_id", summary.RunID)

	fmt.Fprintln(out, "=== Auction JSON to DAT Converter ===")

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputExtension, cfg.Recursive)
	inputFiles, skipped, err := fm.DiscoverInputFiles(args)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	for _, path := range skipped {
		logger.WithField("file", path).Warnf("skipping file without %s extension", cfg.InputExtension)
	}

	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No %s files found.\n", cfg.InputExtension)
		return nil
	}

	summary.TotalFiles = len(inputFiles)
	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES SEQUENTIALLY
	// =========================================================================

	sinks := []converter.Sink{
		materializer.NewWriter(materializer.Options{
			Delimiter:  cfg.Delimiter,
			NullMarker: cfg.NullMarker,
		}, logger),
	}
	if cfg.Workbook {
		sinks = append(sinks, workbook.NewWriter(workbook.Options{
			Dir:        cfg.WorkbookDir,
			NullMarker: cfg.NullMarker,
		}, logger))
	}

	opts := converter.Options{
		Extract: extractor.Options{MonthPolicy: cfg.MonthPolicy()},
		DryRun:  p.DryRun,
	}

	var errorEntries []utils.ErrorLogEntry
	var abortErr error
	stems := make(map[string]string)

	for _, file := range inputFiles {
		var result converter.Result
		stem := fm.OutputStem(file)
		if owner, ok := stems[filepath.Clean(stem)]; ok {
			result = converter.Result{
				FilePath: file,
				Error:    &outputClashError{Stem: stem, Owner: owner},
			}
			logger.WithField("file", file).WithError(result.Error).Error("document failed")
		} else {
			stems[filepath.Clean(stem)] = file
			result = converter.New(file, stem, opts, logger, sinks...).Run()
		}

		if result.Success {
			summary.AddProcessed(utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFiles: result.OutputFiles,
				Items:       result.Stats.ItemsRead,
				Rows:        result.Stats.Rows,
				ProcessTime: result.Stats.ProcessingTime,
			})
			printSuccess(out, result)
			continue
		}

		summary.AddFailed(utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: result.Error.Error(),
			ErrorType:    errorType(result.Error),
		})
		errorEntries = append(errorEntries, errorEntry(result))
		fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)

		if result.Aborts() {
			abortErr = result.Error
			summary.Aborted = true
			break
		}
		if !cfg.ShouldContinueOnError() {
			summary.Aborted = true
			break
		}
	}

	// =========================================================================
	// STEP 4: SUMMARY AND LOG FILES
	// =========================================================================

	summary.EndTime = time.Now()
	printSummary(out, summary)
	writeRunLogs(out, logger, cfg.LogDir, summary, errorEntries)

	if abortErr != nil {
		return fmt.Errorf("run aborted: %w", abortErr)
	}
	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d document(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func printSuccess(out io.Writer, result converter.Result) {
	name := filepath.Base(result.FilePath)
	if len(result.OutputFiles) == 0 {
		fmt.Fprintf(out, "  ✓ %s (%d items, dry run)\n", name, result.Stats.ItemsRead)
		return
	}
	fmt.Fprintf(out, "  ✓ %s -> %s\n", name, filepath.Dir(result.OutputFiles[0]))
	for _, table := range types.TableNames {
		fmt.Fprintf(out, "      %-9s %d rows\n", table, result.Stats.Rows[table])
	}
}

func printSummary(out io.Writer, summary utils.ProcessingSummary) {
	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Run ID:          %s\n", summary.RunID)
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	if skipped := summary.TotalFiles - summary.SuccessfulFiles - summary.FailedFiles; skipped > 0 {
		fmt.Fprintf(out, "Not processed:   %d\n", skipped)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
}

// writeRunLogs writes the error log and the run summary when logDir is set.
// Failing to write them is logged, not returned.
func writeRunLogs(out io.Writer, logger logrus.FieldLogger, logDir string, summary utils.ProcessingSummary, entries []utils.ErrorLogEntry) {
	if logDir == "" {
		return
	}

	if path, err := utils.WriteErrorLog(summary.RunID, entries, logDir); err != nil {
		logger.WithError(err).Error("failed to write error log")
	} else if path != "" {
		fmt.Fprintf(out, "\nErrors have been logged to %s\n", path)
	}

	if path, err := utils.WriteSummaryLog(summary, logDir, types.TableNames); err != nil {
		logger.WithError(err).Error("failed to write run summary")
	} else {
		logger.WithField("path", path).Debug("wrote run summary")
	}
}

// outputClashError reports a document whose output files would replace
// those of an earlier document in the same run.
type outputClashError struct {
	Stem  string
	Owner string
}

func (e *outputClashError) Error() string {
	return fmt.Sprintf("output %s-*.dat is already used by %s", e.Stem, e.Owner)
}

// errorType names the class of a document failure for the logs.
func errorType(err error) string {
	var ioErr *materializer.IOError
	var malformed *extractor.MalformedRecordError
	var docErr *jsonparser.DocumentError
	var clash *outputClashError
	switch {
	case errors.As(err, &ioErr):
		return "io"
	case errors.As(err, &clash):
		return "output_clash"
	case errors.As(err, &malformed):
		return "malformed_record"
	case errors.As(err, &docErr):
		return "document"
	default:
		return "other"
	}
}

// errorEntry builds the error log entry of a failed result.
func errorEntry(result converter.Result) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     result.FilePath,
		ErrorType:    errorType(result.Error),
		ErrorMessage: result.Error.Error(),
	}

	var malformed *extractor.MalformedRecordError
	if errors.As(result.Error, &malformed) {
		entry.HasItem = true
		entry.ItemIndex = malformed.Index
		entry.ItemID = malformed.ItemID
		entry.FieldName = malformed.Field

		var monthErr *transform.UnrecognizedMonthError
		if errors.As(result.Error, &monthErr) {
			entry.ErrorType = "unrecognized_month"
		}
	}
	return entry
}
