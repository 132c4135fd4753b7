// =============================================================================
// Auction JSON to DAT Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Auction JSON to DAT Converter CLI. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   auction2dat process [paths...]   - Convert JSON documents to .dat tables
//   auction2dat validate [paths...]  - Report malformed items without writing
//   auction2dat version              - Display the application version
//
// ARCHITECTURE:
//   - cmd/                    : CLI command definitions (Cobra)
//   - internal/jsonparser     : Document loading
//   - internal/extractor      : Items -> item/category/user/bid records
//   - internal/transform      : Currency, timestamp and quoting rules
//   - internal/materializer   : .dat rendering and writing
//   - internal/workbook       : Optional .xlsx export
//   - internal/converter      : Per-document pipeline
//   - pkg/utils               : Discovery, naming, run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/auction-json-to-dat/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
