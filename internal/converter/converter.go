// =============================================================================
// Auction JSON to DAT Converter - Converter Module
// =============================================================================
//
// This module contains the per-document pipeline. It takes one JSON document
// from loading to the written output tables.
//
// CONVERSION PIPELINE:
//   1. Load the document and decode the "Items" envelope
//   2. Extract item, category, user and bid records from every item
//   3. Deduplicate each table
//   4. Hand the tables to every output sink (.dat files, optional workbook)
//
// FAILURE MODEL:
//   A document that cannot be loaded, or that holds a malformed item, fails
//   on its own and no sink is called for it. A sink failure is an I/O error
//   and the caller is expected to stop the run (see Result.Aborts).
//
// CONCURRENCY:
//   Documents are processed one at a time. A Converter handles exactly one
//   document and is not reused.
//
// =============================================================================

//go:generate mockgen -source=converter.go -destination=mock_sink.go -package=converter

package converter

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/auction-json-to-dat/internal/extractor"
	"github.com/ginjaninja78/auction-json-to-dat/internal/jsonparser"
	"github.com/ginjaninja78/auction-json-to-dat/internal/logging"
	"github.com/ginjaninja78/auction-json-to-dat/internal/materializer"
	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single document.
type Result struct {
	// FilePath is the path to the input document.
	FilePath string

	// OutputFiles lists every file written for the document, in sink order.
	// This is empty if processing failed or on a dry run.
	OutputFiles []string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// Aborts reports whether the failure must stop the whole run. Only output
// errors do; a bad document only fails itself.
func (r Result) Aborts() bool {
	var ioErr *materializer.IOError
	return errors.As(r.Error, &ioErr)
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// ItemsRead is the number of elements in the "Items" array.
	ItemsRead int

	// Rows is the number of unique rows per table name.
	Rows map[string]int

	// ProcessingTime is the time taken to process the document.
	ProcessingTime time.Duration
}

// =============================================================================
// OUTPUT SINKS
// =============================================================================

// Sink receives the deduplicated tables of a document. stem is the output
// path without table suffix or extension, e.g. "out/items-0".
type Sink interface {
	Write(stem string, tables *types.Tables) ([]string, error)
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options controls a single conversion.
type Options struct {
	// Extract is passed through to the record extractor.
	Extract extractor.Options

	// DryRun loads and extracts the document but calls no sink.
	DryRun bool
}

// Converter handles the conversion of a single JSON document.
type Converter struct {
	inputPath string
	stem      string
	opts      Options
	sinks     []Sink
	logger    logrus.FieldLogger
	started   time.Time
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the input JSON document.
//   - stem: The output stem the sinks derive their file names from.
//   - opts: Extraction and dry-run options.
//   - logger: Where progress is logged. nil discards it.
//   - sinks: Output writers, called in order.
//
// RETURNS:
//   - A new Converter instance.
func New(inputPath, stem string, opts Options, logger logrus.FieldLogger, sinks ...Sink) *Converter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Converter{
		inputPath: inputPath,
		stem:      stem,
		opts:      opts,
		sinks:     sinks,
		logger:    logger.WithField("file", inputPath),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the document.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() Result {
	c.started = time.Now()
	result := Result{
		FilePath: c.inputPath,
		Success:  false,
	}

	// =========================================================================
	// STEP 1: LOAD DOCUMENT
	// =========================================================================

	c.logger.Info("processing document")

	doc, err := jsonparser.Parse(c.inputPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to load document: %w", err)
		return c.finish(result)
	}

	result.Stats.ItemsRead = doc.ItemCount()
	c.logger.WithField("items", doc.ItemCount()).Debug("loaded document")

	// =========================================================================
	// STEP 2: EXTRACT RECORDS
	// =========================================================================
	// The first malformed item fails the document before anything is written.

	extracted, err := extractor.Extract(doc, c.opts.Extract)
	if err != nil {
		result.Error = fmt.Errorf("failed to extract records: %w", err)
		return c.finish(result)
	}

	// =========================================================================
	// STEP 3: DEDUPLICATE
	// =========================================================================

	tables := extracted.Unique()
	result.Stats.Rows = tables.Counts()
	c.logger.WithFields(logrus.Fields{
		"items":      len(tables.Items),
		"categories": len(tables.Categories),
		"users":      len(tables.Users),
		"bids":       len(tables.Bids),
	}).Debug("extracted records")

	// =========================================================================
	// STEP 4: WRITE OUTPUTS
	// =========================================================================

	if c.opts.DryRun {
		c.logger.Info("dry run, nothing written")
		result.Success = true
		return c.finish(result)
	}

	for _, sink := range c.sinks {
		paths, err := sink.Write(c.stem, tables)
		if err != nil {
			result.Error = fmt.Errorf("failed to write output: %w", err)
			return c.finish(result)
		}
		result.OutputFiles = append(result.OutputFiles, paths...)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	return c.finish(result)
}

// finish records the elapsed time and logs the outcome of a run.
func (c *Converter) finish(result Result) Result {
	result.Stats.ProcessingTime = time.Since(c.started)
	if result.Error != nil {
		c.logger.WithError(result.Error).Error("document failed")
		return result
	}
	c.logger.WithField("outputs", len(result.OutputFiles)).Info("document converted")
	return result
}
