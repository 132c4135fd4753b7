// =============================================================================
// Auction JSON to DAT Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Input discovery (files and directories, extension filter)
//   - Output naming (the stem the .dat and .xlsx names derive from)
//   - Run identifiers
//   - Error log and run summary files
//
// DISCOVERY ORDER:
//   Paths are processed in the order given. Directory entries are sorted by
//   name. A file reached twice is only returned once.
//
// OUTPUT NAMING:
//   items-0.json  ->  items-0-item.dat, items-0-category.dat, ...
//   The stem sits next to the input unless an output directory is set.
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is scanned when no paths are given.
	InputDir string

	// OutputDir receives the outputs. Empty means next to each input.
	OutputDir string

	// Extension selects documents inside directories, e.g. ".json".
	Extension string

	// Recursive descends into subdirectories.
	Recursive bool
}

// NewFileManager creates a new FileManager.
func NewFileManager(inputDir, outputDir, extension string, recursive bool) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: extension,
		Recursive: recursive,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles resolves the given paths to the list of documents.
//
// PARAMETERS:
//   - paths: Files or directories. If empty, InputDir is scanned.
//
// RETURNS:
//   - The documents to process, in order.
//   - The named files that were skipped for not having the extension.
//   - An error if InputDir or a named directory cannot be read.
//
// A named path that cannot be found is returned as a document, so that it
// fails on its own when it is opened.
func (fm *FileManager) DiscoverInputFiles(paths []string) ([]string, []string, error) {
	explicit := len(paths) > 0
	if !explicit {
		paths = []string{fm.InputDir}
	}

	var files, skipped []string
	seen := make(map[string]struct{})
	add := func(path string) {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if explicit && errors.Is(err, fs.ErrNotExist) {
			add(path)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read input path: %w", err)
		}

		if !info.IsDir() {
			if HasExtension(path, fm.Extension) {
				add(path)
			} else {
				skipped = append(skipped, path)
			}
			continue
		}

		found, err := fm.scanDirectory(path)
		if err != nil {
			return nil, nil, err
		}
		for _, file := range found {
			add(file)
		}
	}

	return files, skipped, nil
}

// scanDirectory lists the documents in dir, sorted by path.
func (fm *FileManager) scanDirectory(dir string) ([]string, error) {
	var files []string

	if !fm.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && HasExtension(entry.Name(), fm.Extension) {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && HasExtension(path, fm.Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// HasExtension reports whether path ends in extension, ignoring case. An
// empty extension matches everything.
func HasExtension(path, extension string) bool {
	if extension == "" {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), extension)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputStem returns the stem the output files of inputPath are named after:
// the input path without its extension, moved into OutputDir when set.
//
// EXAMPLE:
//   inputPath: "data/items-0.json", OutputDir: ""     -> "data/items-0"
//   inputPath: "data/items-0.json", OutputDir: "out"  -> "out/items-0"
func (fm *FileManager) OutputStem(inputPath string) string {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	if fm.OutputDir == "" {
		return stem
	}
	return filepath.Join(fm.OutputDir, filepath.Base(stem))
}

// NewRunID returns a fresh identifier for one processing run.
func NewRunID() string {
	return uuid.New().String()
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string

	// HasItem is set when the error points at one item of the document.
	HasItem   bool
	ItemIndex int
	ItemID    string
	FieldName string
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - runID: The run the entries belong to.
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//
// RETURNS:
//   - The path to the error log file, empty when there was nothing to write.
//   - An error if writing fails.
func WriteErrorLog(runID string, entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s_%s.txt", timestamp, runID))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Auction JSON to DAT Converter - Error Log\n"+
		"Run ID: %s\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		runID,
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.HasItem {
			fmt.Fprintf(writer, "  Item:           #%d\n", entry.ItemIndex)
		}
		if entry.ItemID != "" {
			fmt.Fprintf(writer, "  Item ID:        %s\n", entry.ItemID)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	DryRun          bool
	Aborted         bool
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalItems      int
	TotalRows       map[string]int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFiles []string
	Items       int
	Rows        map[string]int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// AddProcessed records a converted document.
func (s *ProcessingSummary) AddProcessed(info ProcessedFileInfo) {
	s.SuccessfulFiles++
	s.TotalItems += info.Items
	if s.TotalRows == nil {
		s.TotalRows = make(map[string]int)
	}
	for table, n := range info.Rows {
		s.TotalRows[table] += n
	}
	s.ProcessedFiles = append(s.ProcessedFiles, info)
}

// AddFailed records a document that could not be converted.
func (s *ProcessingSummary) AddFailed(info FailedFileInfo) {
	s.FailedFiles++
	s.FailedFilesList = append(s.FailedFilesList, info)
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//   - tables: Table names, in the order their row totals are listed.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string, tables []string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s_%s.txt", timestamp, summary.RunID))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Auction JSON to DAT Converter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Dry Run:        %t\n"+
		"  Aborted:        %t\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Total Items:    %d\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.DryRun,
		summary.Aborted,
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalItems)
	for _, table := range tables {
		fmt.Fprintf(writer, "  %-14s %d\n", table+" rows:", summary.TotalRows[table])
	}
	writer.WriteString("\n")

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			for _, out := range pf.OutputFiles {
				fmt.Fprintf(writer, "  Output:       %s\n", out)
			}
			fmt.Fprintf(writer, "  Items:        %d\n", pf.Items)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Type:  %s\n", ff.ErrorType)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

