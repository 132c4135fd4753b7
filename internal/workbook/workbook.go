// =============================================================================
// Auction JSON to DAT Converter - Workbook Export
// =============================================================================
//
// This module writes the four tables of a document to one XLSX workbook, as a
// companion to the .dat files for people who want to look at the data.
//
// WORKBOOK STRUCTURE:
//   One sheet per table, in write order: item, category, user, bid.
//   Row 1 holds the column names. Data rows follow, deduplicated and in the
//   same order as the .dat output. Absent values hold the null marker.
//
//   | id         | name        | currently | ... | description |
//   |------------|-------------|-----------|-----|-------------|
//   | 1043374545 | "Pot ""A""" | 30.00     | ... | NULL        |
//
// FILE NAMING:
//   <stem>.xlsx, next to the .dat files unless a directory is configured.
//
// =============================================================================

package workbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/auction-json-to-dat/internal/logging"
	"github.com/ginjaninja78/auction-json-to-dat/internal/materializer"
	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Options controls the workbook output.
type Options struct {
	// Dir overrides the directory the workbook is written to.
	// Default: "" (the directory of the output stem)
	Dir string

	// NullMarker is written in cells whose value is absent.
	// Default: "NULL"
	NullMarker string
}

// Writer exports tables to an XLSX workbook.
type Writer struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewWriter creates a Writer. A nil logger discards log output.
func NewWriter(opts Options, logger logrus.FieldLogger) *Writer {
	if opts.NullMarker == "" {
		opts.NullMarker = materializer.DefaultOptions().NullMarker
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{opts: opts, logger: logger}
}

// Path returns the workbook path for an output stem.
func (w *Writer) Path(stem string) string {
	if w.opts.Dir != "" {
		return filepath.Join(w.opts.Dir, filepath.Base(stem)+".xlsx")
	}
	return stem + ".xlsx"
}

// Write builds the workbook in memory and saves it to Path(stem) through a
// temp file. Failures are reported as *materializer.IOError.
func (w *Writer) Write(stem string, tables *types.Tables) ([]string, error) {
	final := w.Path(stem)

	f := excelize.NewFile()
	defer f.Close()

	if err := w.fill(f, tables.Unique()); err != nil {
		return nil, &materializer.IOError{Op: "build", Path: final, Err: err}
	}

	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &materializer.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(final)+".tmp-*")
	if err != nil {
		return nil, &materializer.IOError{Op: "create", Path: final, Err: err}
	}
	if err := f.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, &materializer.IOError{Op: "write", Path: final, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, &materializer.IOError{Op: "write", Path: final, Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return nil, &materializer.IOError{Op: "write", Path: final, Err: err}
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return nil, &materializer.IOError{Op: "rename", Path: final, Err: err}
	}

	w.logger.WithField("path", final).Debug("wrote workbook")
	return []string{final}, nil
}

// fill adds one sheet per table. The default "Sheet1" becomes the item sheet.
func (w *Writer) fill(f *excelize.File, tables *types.Tables) error {
	if err := f.SetSheetName(f.GetSheetName(0), types.ItemTable.Name); err != nil {
		return fmt.Errorf("failed to rename first sheet: %w", err)
	}
	for _, name := range types.TableNames[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheet(f, types.ItemTable, tables.Items, w.opts.NullMarker, header); err != nil {
		return err
	}
	if err := writeSheet(f, types.CategoryTable, tables.Categories, w.opts.NullMarker, header); err != nil {
		return err
	}
	if err := writeSheet(f, types.UserTable, tables.Users, w.opts.NullMarker, header); err != nil {
		return err
	}
	return writeSheet(f, types.BidTable, tables.Bids, w.opts.NullMarker, header)
}

// writeSheet writes the header row and one row per record.
func writeSheet[R comparable](f *excelize.File, table types.Table[R], records []R, nullMarker string, headerStyle int) error {
	if err := setRow(f, table.Name, 1, table.Header()); err != nil {
		return err
	}
	if err := f.SetRowStyle(table.Name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", table.Name, err)
	}

	for i, record := range records {
		values := table.Fields(record)
		cells := make([]string, len(values))
		for j, v := range values {
			cells[j] = v.Render(nullMarker)
		}
		if err := setRow(f, table.Name, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// =============================================================================
// READING
// =============================================================================

// ReadSheets opens a workbook written by Writer and returns the rows of every
// table sheet, header row included, keyed by table name.
func ReadSheets(path string) (map[string][][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := make(map[string][][]string, len(types.TableNames))
	for _, name := range types.TableNames {
		if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
			return nil, fmt.Errorf("workbook has no %q sheet", name)
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of %s: %w", name, err)
		}
		sheets[name] = rows
	}
	return sheets, nil
}
