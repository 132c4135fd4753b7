// =============================================================================
// Auction JSON to DAT Converter - Table Materializer
// =============================================================================
//
// This module renders the extracted tables as delimited text and writes one
// .dat file per table.
//
// OUTPUT FORMAT:
//   One row per line, fields in the table's declared order, joined by the
//   delimiter with no trailing delimiter. Absent values are written as the null
//   marker. Example item row:
//
//     1043374545|"Pot ""A"""|30.00|30.00|0|NULL|seller1|2001-12-13 18:10:40|2001-12-03 18:10:40|"Mint."
//
// FILE NAMING:
//   <stem>-item.dat, <stem>-category.dat, <stem>-user.dat, <stem>-bid.dat
//
// WRITE STRATEGY:
//   All four tables are rendered in memory, written to temp files in the
//   destination directory, then renamed into place. A failure while writing
//   removes the temp files and leaves existing outputs untouched.
//
// =============================================================================

package materializer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/auction-json-to-dat/internal/logging"
	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// RENDER OPTIONS
// =============================================================================

// Options controls how fields are rendered.
type Options struct {
	// Delimiter separates fields on a line.
	// Default: "|"
	Delimiter string

	// NullMarker is written in place of an absent value.
	// Default: "NULL"
	NullMarker string
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		Delimiter:  "|",
		NullMarker: "NULL",
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// IOError reports an output file that could not be created or written.
type IOError struct {
	// Op is the failed step: "mkdir", "create", "write", "rename".
	Op string

	// Path is the file or directory involved.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// =============================================================================
// RENDERING
// =============================================================================

// Render deduplicates records and renders each unique record as one line.
// Lines keep the first-occurrence order of the records.
//
// Distinct records can still render to the same line, for example a text
// value equal to the null marker. Only the first such line is kept.
func Render[R comparable](table types.Table[R], records []R, opts Options) []string {
	unique := types.Unique(records)
	lines := make([]string, 0, len(unique))
	seen := make(map[string]struct{}, len(unique))
	fields := make([]string, len(table.Columns))

	for _, record := range unique {
		for j, column := range table.Columns {
			fields[j] = column.Value(record).Render(opts.NullMarker)
		}
		line := strings.Join(fields, opts.Delimiter)
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}

	return lines
}

// RenderedTable is one table ready to be written.
type RenderedTable struct {
	Name  string
	Lines []string
}

// RenderAll renders the four tables in write order.
func RenderAll(tables *types.Tables, opts Options) []RenderedTable {
	return []RenderedTable{
		{Name: types.ItemTable.Name, Lines: Render(types.ItemTable, tables.Items, opts)},
		{Name: types.CategoryTable.Name, Lines: Render(types.CategoryTable, tables.Categories, opts)},
		{Name: types.UserTable.Name, Lines: Render(types.UserTable, tables.Users, opts)},
		{Name: types.BidTable.Name, Lines: Render(types.BidTable, tables.Bids, opts)},
	}
}

// OutputPath returns the .dat path of a table for an output stem.
func OutputPath(stem, table string) string {
	return stem + "-" + table + ".dat"
}

// =============================================================================
// WRITER
// =============================================================================

// Writer writes the four .dat files of a document.
type Writer struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewWriter creates a Writer. A nil logger discards log output.
func NewWriter(opts Options, logger logrus.FieldLogger) *Writer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{opts: opts, logger: logger}
}

// Write renders tables and writes <stem>-<table>.dat for each of them. It
// returns the written paths in table order. Any failure is an *IOError.
func (w *Writer) Write(stem string, tables *types.Tables) ([]string, error) {
	dir := filepath.Dir(stem)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	rendered := RenderAll(tables, w.opts)

	// Stage every table before touching the final paths.
	temps := make([]string, 0, len(rendered))
	cleanup := func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}

	for _, table := range rendered {
		tmp, err := writeTemp(dir, OutputPath(stem, table.Name), table.Lines)
		if tmp != "" {
			temps = append(temps, tmp)
		}
		if err != nil {
			cleanup()
			return nil, err
		}
	}

	paths := make([]string, len(rendered))
	for i, table := range rendered {
		final := OutputPath(stem, table.Name)
		if err := os.Rename(temps[i], final); err != nil {
			temps = temps[i:]
			cleanup()
			return nil, &IOError{Op: "rename", Path: final, Err: err}
		}
		paths[i] = final

		w.logger.WithFields(logrus.Fields{
			"table": table.Name,
			"rows":  len(table.Lines),
			"path":  final,
		}).Debug("wrote table")
	}

	return paths, nil
}

// writeTemp writes lines to a temp file next to final and returns its path.
func writeTemp(dir, final string, lines []string) (string, error) {
	file, err := os.CreateTemp(dir, "."+filepath.Base(final)+".tmp-*")
	if err != nil {
		return "", &IOError{Op: "create", Path: final, Err: err}
	}
	tmp := file.Name()

	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			file.Close()
			return tmp, &IOError{Op: "write", Path: final, Err: err}
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return tmp, &IOError{Op: "write", Path: final, Err: err}
	}
	if err := file.Chmod(0644); err != nil {
		file.Close()
		return tmp, &IOError{Op: "write", Path: final, Err: err}
	}
	if err := file.Close(); err != nil {
		return tmp, &IOError{Op: "write", Path: final, Err: err}
	}

	return tmp, nil
}
